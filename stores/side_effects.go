package stores

import (
	"fmt"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// SideEffects stores leveled side-effect explanations, reachable by
// medication id or by drug class.
type SideEffects struct {
	explanations []entities.SideEffectExplanation
	byID         map[string]int
	byMedication map[entities.MedicationID][]int
	byClass      map[entities.DrugClassID][]int
}

type SideEffectStats struct {
	Explanations int                          `json:"explanations"`
	ByClass      map[entities.DrugClassID]int `json:"byClass"`
}

func NewSideEffects(explanations []entities.SideEffectExplanation) (*SideEffects, error) {
	s := &SideEffects{
		explanations: entities.CloneEach(explanations),
		byID:         make(map[string]int, len(explanations)),
		byMedication: make(map[entities.MedicationID][]int),
		byClass:      make(map[entities.DrugClassID][]int),
	}

	for i, e := range s.explanations {
		if e.ID == "" {
			return nil, fmt.Errorf("side effect %d: missing id", i)
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("side effect %q: duplicate id", e.ID)
		}
		if e.DrugClass == "" && len(e.Medications) == 0 {
			return nil, fmt.Errorf("side effect %q: needs a drug class or at least one medication", e.ID)
		}
		if err := validateLevels(e.Levels); err != nil {
			return nil, fmt.Errorf("side effect %q: %w", e.ID, err)
		}

		s.byID[e.ID] = i
		if e.DrugClass != "" {
			s.byClass[e.DrugClass] = append(s.byClass[e.DrugClass], i)
		}
		for _, med := range e.Medications {
			s.byMedication[med] = append(s.byMedication[med], i)
		}
	}

	return s, nil
}

// validateLevels rejects tiers outside 1..5 and repeated tiers
func validateLevels(levels entities.Levels) error {
	seen := make(map[int]bool, len(levels))
	for _, l := range levels {
		if l.Level < entities.MinExplanationLevel || l.Level > entities.MaxExplanationLevel {
			return fmt.Errorf("level %d out of range %d-%d", l.Level, entities.MinExplanationLevel, entities.MaxExplanationLevel)
		}
		if seen[l.Level] {
			return fmt.Errorf("level %d defined twice", l.Level)
		}
		seen[l.Level] = true
	}
	return nil
}

func (s *SideEffects) GetByID(id string) (entities.SideEffectExplanation, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entities.SideEffectExplanation{}, false
	}
	return s.explanations[i].Clone(), true
}

// ForMedication returns explanations listing the medication, then those for
// its class. Each explanation appears once.
func (s *SideEffects) ForMedication(id entities.MedicationID, class entities.DrugClassID) []entities.SideEffectExplanation {
	byMed := s.byMedication[id]
	var byClass []int
	if class != "" {
		byClass = s.byClass[class]
	}
	if len(byMed) == 0 && len(byClass) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(byMed)+len(byClass))
	out := make([]entities.SideEffectExplanation, 0, len(byMed)+len(byClass))
	for _, idx := range [][]int{byMed, byClass} {
		for _, i := range idx {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, s.explanations[i].Clone())
		}
	}
	return out
}

func (s *SideEffects) ForClass(class entities.DrugClassID) []entities.SideEffectExplanation {
	idx := s.byClass[class]
	out := make([]entities.SideEffectExplanation, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.explanations[i].Clone())
	}
	return out
}

func (s *SideEffects) All() []entities.SideEffectExplanation {
	return entities.CloneEach(s.explanations)
}

func (s *SideEffects) Len() int {
	return len(s.explanations)
}

// Search matches the side effect label, tier texts and warning signs
func (s *SideEffects) Search(query string) []entities.SideEffectExplanation {
	text := newTextMatcher(query)

	var out []entities.SideEffectExplanation
	for _, e := range s.explanations {
		if text.empty() || text.match(e.ID, e.SideEffect, string(e.DrugClass)) || text.matchAny(e.WhatToWatch) || levelsMatch(text, e.Levels) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func levelsMatch(text textMatcher, levels entities.Levels) bool {
	for _, l := range levels {
		if text.match(l.Text, l.Analogy) {
			return true
		}
	}
	return false
}

func (s *SideEffects) StatsSummary() SideEffectStats {
	stats := SideEffectStats{
		Explanations: len(s.explanations),
		ByClass:      make(map[entities.DrugClassID]int),
	}
	for _, e := range s.explanations {
		if e.DrugClass != "" {
			stats.ByClass[e.DrugClass]++
		}
	}
	return stats
}
