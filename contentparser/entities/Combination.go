package entities

import "slices"

// CombinationType tells whether a combination is prescribed on purpose or to be avoided.
type CombinationType string

const (
	CombinationSafe      CombinationType = "safe"
	CombinationDangerous CombinationType = "dangerous"
)

func (t CombinationType) Known() bool {
	return t == CombinationSafe || t == CombinationDangerous
}

// CombinationLevel is one complexity tier of a combination explanation.
type CombinationLevel struct {
	Level            int    `json:"level" yaml:"level"`
	WhyCombined      string `json:"whyCombined" yaml:"whyCombined"`
	WhatCouldHappen  string `json:"whatCouldHappen" yaml:"whatCouldHappen"`
	WhatToTellDoctor string `json:"whatToTellDoctor" yaml:"whatToTellDoctor"`
}

// DrugCombination explains why two drugs or drug groups are given together,
// or why they must not be. Drug1 and Drug2 are display labels that may name
// a whole class; Medications links the entry to catalog medications.
type DrugCombination struct {
	ID          string             `json:"id" yaml:"id"`
	Drug1       string             `json:"drug1" yaml:"drug1"`
	Drug2       string             `json:"drug2" yaml:"drug2"`
	Type        CombinationType    `json:"type" yaml:"type"`
	Category    string             `json:"category" yaml:"category"`
	Medications []MedicationID     `json:"medications,omitempty" yaml:"medications"`
	Levels      []CombinationLevel `json:"levels" yaml:"levels"`
}

func (c DrugCombination) Clone() DrugCombination {
	c.Medications = slices.Clone(c.Medications)
	c.Levels = slices.Clone(c.Levels)
	return c
}
