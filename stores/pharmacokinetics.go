package stores

import (
	"fmt"
	"slices"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// Pharmacokinetics holds optional per-medication PK profiles
type Pharmacokinetics struct {
	profiles []entities.PharmacokineticProfile
	byID     map[entities.MedicationID]int
}

// PharmacokineticsQuery filters profiles. Nil flags match everything.
type PharmacokineticsQuery struct {
	RenalAdjustment   *bool
	HepaticAdjustment *bool
	Text              string
}

type PharmacokineticsStats struct {
	Profiles          int `json:"profiles"`
	RenalAdjustment   int `json:"renalAdjustment"`
	HepaticAdjustment int `json:"hepaticAdjustment"`
}

func NewPharmacokinetics(profiles []entities.PharmacokineticProfile) (*Pharmacokinetics, error) {
	p := &Pharmacokinetics{
		profiles: slices.Clone(profiles),
		byID:     make(map[entities.MedicationID]int, len(profiles)),
	}

	for i, profile := range p.profiles {
		if profile.MedicationID == "" {
			return nil, fmt.Errorf("pharmacokinetic profile %d: missing medication id", i)
		}
		if _, dup := p.byID[profile.MedicationID]; dup {
			return nil, fmt.Errorf("pharmacokinetic profile %q: duplicate medication id", profile.MedicationID)
		}
		p.byID[profile.MedicationID] = i
	}

	return p, nil
}

func (p *Pharmacokinetics) GetByID(id entities.MedicationID) (entities.PharmacokineticProfile, bool) {
	i, ok := p.byID[id]
	if !ok {
		return entities.PharmacokineticProfile{}, false
	}
	return p.profiles[i], true
}

func (p *Pharmacokinetics) All() []entities.PharmacokineticProfile {
	return slices.Clone(p.profiles)
}

func (p *Pharmacokinetics) Len() int {
	return len(p.profiles)
}

func (p *Pharmacokinetics) Search(q PharmacokineticsQuery) []entities.PharmacokineticProfile {
	text := newTextMatcher(q.Text)

	var out []entities.PharmacokineticProfile
	for _, profile := range p.profiles {
		if q.RenalAdjustment != nil && profile.RenalAdjustment != *q.RenalAdjustment {
			continue
		}
		if q.HepaticAdjustment != nil && profile.HepaticAdjustment != *q.HepaticAdjustment {
			continue
		}
		if !text.match(string(profile.MedicationID), profile.HalfLife, profile.MetabolicPathway, profile.TherapeuticRange) {
			continue
		}
		out = append(out, profile)
	}
	return out
}

func (p *Pharmacokinetics) StatsSummary() PharmacokineticsStats {
	stats := PharmacokineticsStats{Profiles: len(p.profiles)}
	for _, profile := range p.profiles {
		if profile.RenalAdjustment {
			stats.RenalAdjustment++
		}
		if profile.HepaticAdjustment {
			stats.HepaticAdjustment++
		}
	}
	return stats
}
