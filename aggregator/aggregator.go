// Package aggregator joins the content stores into per-medication views for
// a patient's medication list. Every function is pure: the same catalog and
// input always produce the same output.
package aggregator

import (
	"errors"
	"fmt"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/interfaces"
)

// ErrInvalidInput reports a malformed medication list entry
var ErrInvalidInput = errors.New("invalid input")

// Interaction is an interaction record seen from one medication of the list
type Interaction struct {
	With entities.MedicationID `json:"with"`
	entities.InteractionRecord
}

// MedicationTarget is everything known about one medication of a patient's list.
// An unmapped medication has no targets but still carries the other joins.
type MedicationTarget struct {
	ID               entities.MedicationID                      `json:"id"`
	Unmapped         bool                                       `json:"unmapped"`
	Primary          []entities.Target                          `json:"primaryTargets"`
	Secondary        []entities.Target                          `json:"secondaryTargets"`
	Identity         Optional[entities.MedicationIdentity]      `json:"identity"`
	Pharmacokinetics Optional[entities.PharmacokineticProfile]  `json:"pharmacokinetics"`
	SideEffects      Optional[[]entities.SideEffectExplanation] `json:"sideEffects"`
	Mechanism        Optional[entities.MechanismExplanation]    `json:"mechanism"`
	Interactions     []Interaction                              `json:"interactions"`
}

// NormalizeMedicationIDs trims and lower-cases every id. The first empty or
// malformed id fails the whole list with ErrInvalidInput.
func NormalizeMedicationIDs(raw []string) ([]entities.MedicationID, error) {
	ids := make([]entities.MedicationID, len(raw))
	for i, r := range raw {
		id := entities.NormalizeMedicationID(r)
		if id == "" {
			return nil, fmt.Errorf("%w: medication %d: empty id", ErrInvalidInput, i)
		}
		if !id.Valid() {
			return nil, fmt.Errorf("%w: medication %d: %q is not a valid medication id", ErrInvalidInput, i, r)
		}
		ids[i] = id
	}
	return ids, nil
}

// ResolvePatientMedications builds one MedicationTarget per entry, in input order.
// Interactions of each entry are listed in the order of the other entries.
func ResolvePatientMedications(catalog interfaces.ContentCatalog, meds []entities.PatientMedication) ([]MedicationTarget, error) {
	raw := make([]string, len(meds))
	for i, m := range meds {
		raw[i] = m.ID
	}

	ids, err := NormalizeMedicationIDs(raw)
	if err != nil {
		return nil, err
	}

	out := make([]MedicationTarget, len(ids))
	for i, id := range ids {
		out[i] = resolveOne(catalog, id)
		out[i].Interactions = interactionsWith(catalog, ids, i)
	}
	return out, nil
}

func resolveOne(catalog interfaces.ContentCatalog, id entities.MedicationID) MedicationTarget {
	mt := MedicationTarget{
		ID:               id,
		Identity:         NotYetAuthored[entities.MedicationIdentity](),
		Pharmacokinetics: NotYetAuthored[entities.PharmacokineticProfile](),
		SideEffects:      NotYetAuthored[[]entities.SideEffectExplanation](),
		Mechanism:        NotApplicable[entities.MechanismExplanation](),
		Primary:          []entities.Target{},
		Secondary:        []entities.Target{},
		Interactions:     []Interaction{},
	}

	// Output never aliases catalog memory
	if mapping, ok := catalog.TargetMapping(id); ok {
		mt.Primary = append(mt.Primary, mapping.Primary...)
		mt.Secondary = append(mt.Secondary, mapping.Secondary...)
	} else {
		mt.Unmapped = true
	}

	var class entities.DrugClassID
	if identity, ok := catalog.Identity(id); ok {
		mt.Identity = Available(identity.Clone())
		class = identity.DrugClass
	}

	if profile, ok := catalog.Pharmacokinetics(id); ok {
		mt.Pharmacokinetics = Available(profile)
	}

	if effects := catalog.SideEffectsFor(id, class); len(effects) > 0 {
		mt.SideEffects = Available(entities.CloneEach(effects))
	}

	if class != "" {
		if mechanism, ok := catalog.MechanismForClass(class); ok {
			mt.Mechanism = Available(mechanism.Clone())
		} else {
			mt.Mechanism = NotYetAuthored[entities.MechanismExplanation]()
		}
	}

	return mt
}

// interactionsWith lists interactions between ids[i] and every other entry.
// Entries with the same id as ids[i] are skipped.
func interactionsWith(catalog interfaces.ContentCatalog, ids []entities.MedicationID, i int) []Interaction {
	out := []Interaction{}
	for j, other := range ids {
		if j == i || other == ids[i] {
			continue
		}
		for _, r := range catalog.InteractionsBetween(ids[i], other) {
			out = append(out, Interaction{With: r.Other(ids[i]), InteractionRecord: r})
		}
	}
	return out
}
