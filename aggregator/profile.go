package aggregator

import (
	"slices"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/interfaces"
)

// RegionContribution is one medication acting on an affected region
type RegionContribution struct {
	MedicationID entities.MedicationID `json:"medicationId"`
	Role         entities.TargetRole   `json:"role"`
	Organ        string                `json:"organ"`
	Effect       string                `json:"effect"`
}

// AffectedRegion groups every medication targeting the same region id.
// Organ labels may differ between medications; the region id is the key.
type AffectedRegion struct {
	Region      entities.RegionID    `json:"regionId"`
	Organs      []string             `json:"organs"`
	Medications []RegionContribution `json:"medications"`
}

// PatientProfile is the list-level view of a patient's medications
type PatientProfile struct {
	Medications     []MedicationTarget           `json:"medications"`
	Interactions    []entities.InteractionRecord `json:"interactions"`
	AffectedRegions []AffectedRegion             `json:"affectedRegions"`
	Unmapped        []entities.MedicationID      `json:"unmapped"`
	HighestSeverity entities.Severity            `json:"highestSeverity,omitempty"`
}

// ResolvePatientProfile resolves the list and adds the list-level views
func ResolvePatientProfile(catalog interfaces.ContentCatalog, meds []entities.PatientMedication) (*PatientProfile, error) {
	targets, err := ResolvePatientMedications(catalog, meds)
	if err != nil {
		return nil, err
	}

	ids := make([]entities.MedicationID, len(targets))
	profile := &PatientProfile{
		Medications: targets,
		Unmapped:    []entities.MedicationID{},
	}
	for i, t := range targets {
		ids[i] = t.ID
		if t.Unmapped {
			profile.Unmapped = append(profile.Unmapped, t.ID)
		}
	}

	profile.Interactions = PairwiseInteractions(catalog, ids)
	profile.AffectedRegions = AffectedRegions(targets)
	for _, r := range profile.Interactions {
		if r.Severity > profile.HighestSeverity {
			profile.HighestSeverity = r.Severity
		}
	}

	return profile, nil
}

// PairwiseInteractions returns the interactions of every pair i < j of ids,
// pairs in list order and records in store order. Pairs of identical ids are
// skipped and a record reached through several pairs is listed once.
func PairwiseInteractions(catalog interfaces.ContentCatalog, ids []entities.MedicationID) []entities.InteractionRecord {
	out := []entities.InteractionRecord{}
	seen := make(map[string]bool)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				continue
			}
			for _, r := range catalog.InteractionsBetween(ids[i], ids[j]) {
				if seen[r.ID] {
					continue
				}
				seen[r.ID] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// AffectedRegions merges the targets of every mapped medication by region id,
// in first-seen order. A medication contributes once per region, with its
// first role (primary targets are visited first).
func AffectedRegions(targets []MedicationTarget) []AffectedRegion {
	out := []AffectedRegion{}
	index := make(map[entities.RegionID]int)

	for _, mt := range targets {
		if mt.Unmapped {
			continue
		}
		mapping := entities.TargetMapping{MedicationID: mt.ID, Primary: mt.Primary, Secondary: mt.Secondary}
		for _, t := range mapping.All() {
			i, ok := index[t.Region]
			if !ok {
				i = len(out)
				index[t.Region] = i
				out = append(out, AffectedRegion{Region: t.Region})
			}
			region := &out[i]

			if !slices.Contains(region.Organs, t.Organ) {
				region.Organs = append(region.Organs, t.Organ)
			}
			contributes := func(c RegionContribution) bool { return c.MedicationID == mt.ID }
			if !slices.ContainsFunc(region.Medications, contributes) {
				region.Medications = append(region.Medications, RegionContribution{
					MedicationID: mt.ID,
					Role:         t.Role,
					Organ:        t.Organ,
					Effect:       t.Effect,
				})
			}
		}
	}
	return out
}
