package stores

import (
	"fmt"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// Mechanisms stores one mechanism-of-action explanation per drug class
type Mechanisms struct {
	explanations []entities.MechanismExplanation
	byID         map[string]int
	byClass      map[entities.DrugClassID]int
}

type MechanismStats struct {
	Explanations int `json:"explanations"`
	WithWarning  int `json:"withSafetyWarning"`
}

func NewMechanisms(explanations []entities.MechanismExplanation) (*Mechanisms, error) {
	s := &Mechanisms{
		explanations: entities.CloneEach(explanations),
		byID:         make(map[string]int, len(explanations)),
		byClass:      make(map[entities.DrugClassID]int, len(explanations)),
	}

	for i, e := range s.explanations {
		if e.ID == "" {
			return nil, fmt.Errorf("mechanism %d: missing id", i)
		}
		if e.DrugClass == "" {
			return nil, fmt.Errorf("mechanism %q: missing drug class", e.ID)
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("mechanism %q: duplicate id", e.ID)
		}
		if other, dup := s.byClass[e.DrugClass]; dup {
			return nil, fmt.Errorf("mechanism %q: drug class %q already explained by %q", e.ID, e.DrugClass, s.explanations[other].ID)
		}
		if err := validateLevels(e.Levels); err != nil {
			return nil, fmt.Errorf("mechanism %q: %w", e.ID, err)
		}
		s.byID[e.ID] = i
		s.byClass[e.DrugClass] = i
	}

	return s, nil
}

func (s *Mechanisms) GetByID(id string) (entities.MechanismExplanation, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entities.MechanismExplanation{}, false
	}
	return s.explanations[i].Clone(), true
}

func (s *Mechanisms) GetByClass(class entities.DrugClassID) (entities.MechanismExplanation, bool) {
	i, ok := s.byClass[class]
	if !ok {
		return entities.MechanismExplanation{}, false
	}
	return s.explanations[i].Clone(), true
}

func (s *Mechanisms) All() []entities.MechanismExplanation {
	return entities.CloneEach(s.explanations)
}

func (s *Mechanisms) Len() int {
	return len(s.explanations)
}

func (s *Mechanisms) Search(query string) []entities.MechanismExplanation {
	text := newTextMatcher(query)

	var out []entities.MechanismExplanation
	for _, e := range s.explanations {
		if text.empty() || text.match(e.ID, e.Name, e.Analogy, string(e.DrugClass)) || levelsMatch(text, e.Levels) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Mechanisms) StatsSummary() MechanismStats {
	stats := MechanismStats{Explanations: len(s.explanations)}
	for _, e := range s.explanations {
		if e.SafetyWarning != "" {
			stats.WithWarning++
		}
	}
	return stats
}
