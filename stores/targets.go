package stores

import (
	"fmt"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// TargetMap maps medications to the anatomical regions they act on.
// It is the required store: a medication absent here is unmapped.
type TargetMap struct {
	mappings []entities.TargetMapping
	byID     map[entities.MedicationID]int
}

// TargetQuery filters target searches. Empty fields match everything.
// Region matches the region itself and every region beneath it.
type TargetQuery struct {
	Organ  string
	Region entities.RegionID
	Text   string
}

// TargetMatch is one target of one medication returned by a search
type TargetMatch struct {
	MedicationID entities.MedicationID `json:"medicationId"`
	entities.RoledTarget
}

// TargetStats counts targets per organ label and per region
type TargetStats struct {
	Mappings int                       `json:"mappings"`
	Targets  int                       `json:"targets"`
	ByOrgan  map[string]int            `json:"byOrgan"`
	ByRegion map[entities.RegionID]int `json:"byRegion"`
}

// NewTargetMap builds the store. Every mapping needs at least one primary
// target and a medication may only be mapped once.
func NewTargetMap(mappings []entities.TargetMapping) (*TargetMap, error) {
	m := &TargetMap{
		mappings: entities.CloneEach(mappings),
		byID:     make(map[entities.MedicationID]int, len(mappings)),
	}

	for i, mapping := range m.mappings {
		if mapping.MedicationID == "" {
			return nil, fmt.Errorf("target mapping %d: missing medication id", i)
		}
		if len(mapping.Primary) == 0 {
			return nil, fmt.Errorf("target mapping %q: at least one primary target is required", mapping.MedicationID)
		}
		for _, t := range mapping.All() {
			if t.Region == "" {
				return nil, fmt.Errorf("target mapping %q: %s target %q has no region", mapping.MedicationID, t.Role, t.Organ)
			}
		}
		if _, dup := m.byID[mapping.MedicationID]; dup {
			return nil, fmt.Errorf("target mapping %q: duplicate medication id", mapping.MedicationID)
		}
		m.byID[mapping.MedicationID] = i
	}

	return m, nil
}

func (m *TargetMap) GetByID(id entities.MedicationID) (entities.TargetMapping, bool) {
	i, ok := m.byID[id]
	if !ok {
		return entities.TargetMapping{}, false
	}
	return m.mappings[i].Clone(), true
}

func (m *TargetMap) All() []entities.TargetMapping {
	return entities.CloneEach(m.mappings)
}

func (m *TargetMap) Len() int {
	return len(m.mappings)
}

// Search scans every target in mapping order, primary targets first
func (m *TargetMap) Search(q TargetQuery) []TargetMatch {
	organ := foldText(q.Organ)
	text := newTextMatcher(q.Text)

	var out []TargetMatch
	for _, mapping := range m.mappings {
		for _, t := range mapping.All() {
			if organ != "" && foldText(t.Organ) != organ {
				continue
			}
			if q.Region != "" && !q.Region.Contains(t.Region) {
				continue
			}
			if !text.match(string(mapping.MedicationID), t.Organ, string(t.Region), t.Effect) {
				continue
			}
			out = append(out, TargetMatch{MedicationID: mapping.MedicationID, RoledTarget: t})
		}
	}
	return out
}

// MedicationsForRegion lists medications with a target in or beneath region,
// each once, in mapping order.
func (m *TargetMap) MedicationsForRegion(region entities.RegionID) []entities.MedicationID {
	var out []entities.MedicationID
	for _, mapping := range m.mappings {
		for _, t := range mapping.All() {
			if region.Contains(t.Region) {
				out = append(out, mapping.MedicationID)
				break
			}
		}
	}
	return out
}

func (m *TargetMap) StatsSummary() TargetStats {
	stats := TargetStats{
		Mappings: len(m.mappings),
		ByOrgan:  make(map[string]int),
		ByRegion: make(map[entities.RegionID]int),
	}
	for _, mapping := range m.mappings {
		for _, t := range mapping.All() {
			stats.Targets++
			stats.ByOrgan[t.Organ]++
			stats.ByRegion[t.Region]++
		}
	}
	return stats
}
