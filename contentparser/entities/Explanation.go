package entities

// ExplanationLevel is one complexity tier of an explanation.
// Level 1 is plain language, level 5 is professional.
type ExplanationLevel struct {
	Level   int    `json:"level" yaml:"level"`
	Text    string `json:"text" yaml:"text"`
	Analogy string `json:"analogy,omitempty" yaml:"analogy"`
}

const (
	MinExplanationLevel = 1
	MaxExplanationLevel = 5
)

// Levels is an ordered set of explanation tiers.
type Levels []ExplanationLevel

// At returns the tier with the given level.
func (l Levels) At(level int) (ExplanationLevel, bool) {
	for _, lvl := range l {
		if lvl.Level == level {
			return lvl, true
		}
	}
	return ExplanationLevel{}, false
}

// SideEffectExplanation explains why a medication or drug class causes a side effect.
type SideEffectExplanation struct {
	ID               string         `json:"id" yaml:"id"`
	DrugClass        DrugClassID    `json:"drugClass,omitempty" yaml:"drugClass"`
	Medications      []MedicationID `json:"medications,omitempty" yaml:"medications"`
	SideEffect       string         `json:"sideEffect" yaml:"sideEffect"`
	Levels           Levels         `json:"levels" yaml:"levels"`
	WhatToWatch      []string       `json:"whatToWatch" yaml:"whatToWatch"`
	WhenToCallDoctor []string       `json:"whenToCallDoctor" yaml:"whenToCallDoctor"`
	ClinicalPearl    string         `json:"clinicalPearl,omitempty" yaml:"clinicalPearl"`
}

// MechanismExplanation explains how every medication of a drug class works.
type MechanismExplanation struct {
	ID                string      `json:"id" yaml:"id"`
	DrugClass         DrugClassID `json:"drugClass" yaml:"drugClass"`
	Name              string      `json:"name" yaml:"name"`
	Analogy           string      `json:"analogy" yaml:"analogy"`
	Levels            Levels      `json:"levels" yaml:"levels"`
	CommonSideEffects []string    `json:"commonSideEffects" yaml:"commonSideEffects"`
	WhenNotToTake     []string    `json:"whenNotToTake" yaml:"whenNotToTake"`
	SafetyWarning     string      `json:"safetyWarning,omitempty" yaml:"safetyWarning"`
}
