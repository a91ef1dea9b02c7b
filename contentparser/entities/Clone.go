package entities

import "slices"

// Clone methods return deep copies: the copy shares no backing array with
// the receiver, so callers may edit it freely.

func (m MedicationIdentity) Clone() MedicationIdentity {
	m.BrandNames = slices.Clone(m.BrandNames)
	m.Indications = slices.Clone(m.Indications)
	m.CommonSideEffects = slices.Clone(m.CommonSideEffects)
	m.Warnings = slices.Clone(m.Warnings)
	return m
}

func (m TargetMapping) Clone() TargetMapping {
	m.Primary = slices.Clone(m.Primary)
	m.Secondary = slices.Clone(m.Secondary)
	return m
}

func (e SideEffectExplanation) Clone() SideEffectExplanation {
	e.Medications = slices.Clone(e.Medications)
	e.Levels = slices.Clone(e.Levels)
	e.WhatToWatch = slices.Clone(e.WhatToWatch)
	e.WhenToCallDoctor = slices.Clone(e.WhenToCallDoctor)
	return e
}

func (e MechanismExplanation) Clone() MechanismExplanation {
	e.Levels = slices.Clone(e.Levels)
	e.CommonSideEffects = slices.Clone(e.CommonSideEffects)
	e.WhenNotToTake = slices.Clone(e.WhenNotToTake)
	return e
}

// CloneEach deep-copies every element of items
func CloneEach[T interface{ Clone() T }](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
