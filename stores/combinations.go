package stores

import (
	"fmt"
	"slices"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// Combinations stores explanations of drug pairs that are prescribed together
// on purpose, or that must not be combined.
type Combinations struct {
	entries []entities.DrugCombination
	byID    map[string]int
}

// CombinationQuery filters combination searches. Empty fields match everything.
// Drug matches the drug labels and the linked medication ids.
type CombinationQuery struct {
	Type     entities.CombinationType
	Category string
	Drug     string
	Text     string
}

type CombinationStats struct {
	Combinations int            `json:"combinations"`
	Safe         int            `json:"safe"`
	Dangerous    int            `json:"dangerous"`
	ByCategory   map[string]int `json:"byCategory"`
}

func NewCombinations(entries []entities.DrugCombination) (*Combinations, error) {
	s := &Combinations{
		entries: entities.CloneEach(entries),
		byID:    make(map[string]int, len(entries)),
	}

	for i, c := range s.entries {
		if c.ID == "" {
			return nil, fmt.Errorf("combination %d: missing id", i)
		}
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("combination %q: duplicate id", c.ID)
		}
		if c.Drug1 == "" || c.Drug2 == "" {
			return nil, fmt.Errorf("combination %q: both drugs are required", c.ID)
		}
		if !c.Type.Known() {
			return nil, fmt.Errorf("combination %q: unknown type %q", c.ID, c.Type)
		}
		tiers := make(entities.Levels, len(c.Levels))
		for j, l := range c.Levels {
			tiers[j].Level = l.Level
		}
		if err := validateLevels(tiers); err != nil {
			return nil, fmt.Errorf("combination %q: %w", c.ID, err)
		}
		s.byID[c.ID] = i
	}

	return s, nil
}

func (s *Combinations) GetByID(id string) (entities.DrugCombination, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entities.DrugCombination{}, false
	}
	return s.entries[i].Clone(), true
}

func (s *Combinations) All() []entities.DrugCombination {
	return entities.CloneEach(s.entries)
}

func (s *Combinations) Len() int {
	return len(s.entries)
}

// Search scans the entries in store order
func (s *Combinations) Search(q CombinationQuery) []entities.DrugCombination {
	category := foldText(q.Category)
	drug := newTextMatcher(q.Drug)
	text := newTextMatcher(q.Text)

	var out []entities.DrugCombination
	for _, c := range s.entries {
		if q.Type != "" && c.Type != q.Type {
			continue
		}
		if category != "" && foldText(c.Category) != category {
			continue
		}
		if !drug.empty() && !drug.match(c.Drug1, c.Drug2) && !slices.ContainsFunc(c.Medications, func(id entities.MedicationID) bool {
			return drug.match(string(id))
		}) {
			continue
		}
		if !text.empty() && !text.match(c.ID, c.Drug1, c.Drug2, c.Category) && !combinationLevelsMatch(text, c.Levels) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

func combinationLevelsMatch(text textMatcher, levels []entities.CombinationLevel) bool {
	for _, l := range levels {
		if text.match(l.WhyCombined, l.WhatCouldHappen, l.WhatToTellDoctor) {
			return true
		}
	}
	return false
}

func (s *Combinations) StatsSummary() CombinationStats {
	stats := CombinationStats{
		Combinations: len(s.entries),
		ByCategory:   make(map[string]int),
	}
	for _, c := range s.entries {
		switch c.Type {
		case entities.CombinationSafe:
			stats.Safe++
		case entities.CombinationDangerous:
			stats.Dangerous++
		}
		stats.ByCategory[c.Category]++
	}
	return stats
}
