package stores

import (
	"fmt"
	"slices"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// pairKey is the canonical key of an unordered medication pair
type pairKey struct {
	lo, hi entities.MedicationID
}

func keyFor(a, b entities.MedicationID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Interactions stores drug-drug interaction records. Lookups are symmetric.
type Interactions struct {
	records      []entities.InteractionRecord
	byID         map[string]int
	byPair       map[pairKey][]int
	byMedication map[entities.MedicationID][]int
}

// InteractionQuery filters interaction searches. Zero fields match everything.
type InteractionQuery struct {
	Severity    entities.Severity
	MinSeverity entities.Severity
	Category    entities.InteractionCategory
	Medication  entities.MedicationID
	Text        string
}

type InteractionStats struct {
	Records    int                                  `json:"records"`
	BySeverity map[string]int                       `json:"bySeverity"`
	ByCategory map[entities.InteractionCategory]int `json:"byCategory"`
}

// NewInteractions builds the store. A record pairing a medication with itself is rejected.
func NewInteractions(records []entities.InteractionRecord) (*Interactions, error) {
	s := &Interactions{
		records:      slices.Clone(records),
		byID:         make(map[string]int, len(records)),
		byPair:       make(map[pairKey][]int, len(records)),
		byMedication: make(map[entities.MedicationID][]int),
	}

	for i, r := range s.records {
		if r.ID == "" {
			return nil, fmt.Errorf("interaction %d: missing id", i)
		}
		if r.A == "" || r.B == "" {
			return nil, fmt.Errorf("interaction %q: both medications are required", r.ID)
		}
		if r.A == r.B {
			return nil, fmt.Errorf("interaction %q: medication %q cannot interact with itself", r.ID, r.A)
		}
		if _, dup := s.byID[r.ID]; dup {
			return nil, fmt.Errorf("interaction %q: duplicate id", r.ID)
		}
		s.byID[r.ID] = i
		key := keyFor(r.A, r.B)
		s.byPair[key] = append(s.byPair[key], i)
		s.byMedication[r.A] = append(s.byMedication[r.A], i)
		s.byMedication[r.B] = append(s.byMedication[r.B], i)
	}

	return s, nil
}

func (s *Interactions) GetByID(id string) (entities.InteractionRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entities.InteractionRecord{}, false
	}
	return s.records[i], true
}

// Lookup returns every record for the pair in store order.
// Lookup(a, b) and Lookup(b, a) return the same records.
func (s *Interactions) Lookup(a, b entities.MedicationID) []entities.InteractionRecord {
	if a == b {
		return nil
	}
	return s.collect(s.byPair[keyFor(a, b)])
}

// ForMedication returns every record involving id in store order
func (s *Interactions) ForMedication(id entities.MedicationID) []entities.InteractionRecord {
	return s.collect(s.byMedication[id])
}

func (s *Interactions) collect(idx []int) []entities.InteractionRecord {
	if len(idx) == 0 {
		return nil
	}
	out := make([]entities.InteractionRecord, len(idx))
	for i, j := range idx {
		out[i] = s.records[j]
	}
	return out
}

func (s *Interactions) All() []entities.InteractionRecord {
	return slices.Clone(s.records)
}

func (s *Interactions) Len() int {
	return len(s.records)
}

func (s *Interactions) Search(q InteractionQuery) []entities.InteractionRecord {
	text := newTextMatcher(q.Text)

	candidates := s.records
	if q.Medication != "" {
		candidates = s.ForMedication(q.Medication)
	}

	var out []entities.InteractionRecord
	for _, r := range candidates {
		if q.Severity != entities.SeverityUnknown && r.Severity != q.Severity {
			continue
		}
		if r.Severity < q.MinSeverity {
			continue
		}
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if !text.match(string(r.A), string(r.B), r.Mechanism, r.ClinicalEffect, r.Management) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Interactions) StatsSummary() InteractionStats {
	stats := InteractionStats{
		Records:    len(s.records),
		BySeverity: make(map[string]int),
		ByCategory: make(map[entities.InteractionCategory]int),
	}
	for _, r := range s.records {
		stats.BySeverity[r.Severity.String()]++
		stats.ByCategory[r.Category]++
	}
	return stats
}
