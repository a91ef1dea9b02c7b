// Package stores holds the immutable, in-memory content stores and the
// Catalog that bundles them. Stores never change after construction and are
// safe for concurrent readers.
package stores

import (
	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// Catalog is one complete, consistent set of content stores
type Catalog struct {
	targets          *TargetMap
	medications      *MedicationDatabase
	pharmacokinetics *Pharmacokinetics
	interactions     *Interactions
	sideEffects      *SideEffects
	mechanisms       *Mechanisms
	combinations     *Combinations
}

// CatalogStats bundles the stats summary of every store
type CatalogStats struct {
	Medications      MedicationStats       `json:"medications"`
	Targets          TargetStats           `json:"targets"`
	Pharmacokinetics PharmacokineticsStats `json:"pharmacokinetics"`
	Interactions     InteractionStats      `json:"interactions"`
	SideEffects      SideEffectStats       `json:"sideEffects"`
	Mechanisms       MechanismStats        `json:"mechanisms"`
	Combinations     CombinationStats      `json:"combinations"`
}

// NewCatalog bundles the stores. Nil stores are replaced by empty ones.
func NewCatalog(targets *TargetMap, medications *MedicationDatabase, pk *Pharmacokinetics,
	interactions *Interactions, sideEffects *SideEffects, mechanisms *Mechanisms, combinations *Combinations) *Catalog {
	c := &Catalog{
		targets:          targets,
		medications:      medications,
		pharmacokinetics: pk,
		interactions:     interactions,
		sideEffects:      sideEffects,
		mechanisms:       mechanisms,
		combinations:     combinations,
	}

	// Empty inputs never fail, so the errors are ignored
	if c.targets == nil {
		c.targets, _ = NewTargetMap(nil)
	}
	if c.medications == nil {
		c.medications, _ = NewMedicationDatabase(nil, nil)
	}
	if c.pharmacokinetics == nil {
		c.pharmacokinetics, _ = NewPharmacokinetics(nil)
	}
	if c.interactions == nil {
		c.interactions, _ = NewInteractions(nil)
	}
	if c.sideEffects == nil {
		c.sideEffects, _ = NewSideEffects(nil)
	}
	if c.mechanisms == nil {
		c.mechanisms, _ = NewMechanisms(nil)
	}
	if c.combinations == nil {
		c.combinations, _ = NewCombinations(nil)
	}
	return c
}

// EmptyCatalog returns a catalog with no content
func EmptyCatalog() *Catalog {
	return NewCatalog(nil, nil, nil, nil, nil, nil, nil)
}

func (c *Catalog) Targets() *TargetMap                      { return c.targets }
func (c *Catalog) Medications() *MedicationDatabase         { return c.medications }
func (c *Catalog) PharmacokineticsStore() *Pharmacokinetics { return c.pharmacokinetics }
func (c *Catalog) Interactions() *Interactions              { return c.interactions }
func (c *Catalog) SideEffects() *SideEffects                { return c.sideEffects }
func (c *Catalog) Mechanisms() *Mechanisms                  { return c.mechanisms }
func (c *Catalog) Combinations() *Combinations              { return c.combinations }

// Readers used by the aggregator

func (c *Catalog) TargetMapping(id entities.MedicationID) (entities.TargetMapping, bool) {
	return c.targets.GetByID(id)
}

func (c *Catalog) Identity(id entities.MedicationID) (entities.MedicationIdentity, bool) {
	return c.medications.GetByID(id)
}

func (c *Catalog) Pharmacokinetics(id entities.MedicationID) (entities.PharmacokineticProfile, bool) {
	return c.pharmacokinetics.GetByID(id)
}

func (c *Catalog) InteractionsBetween(a, b entities.MedicationID) []entities.InteractionRecord {
	return c.interactions.Lookup(a, b)
}

func (c *Catalog) SideEffectsFor(id entities.MedicationID, class entities.DrugClassID) []entities.SideEffectExplanation {
	return c.sideEffects.ForMedication(id, class)
}

func (c *Catalog) MechanismForClass(class entities.DrugClassID) (entities.MechanismExplanation, bool) {
	return c.mechanisms.GetByClass(class)
}

// Stats scans every store once
func (c *Catalog) Stats() CatalogStats {
	return CatalogStats{
		Medications:      c.medications.StatsSummary(),
		Targets:          c.targets.StatsSummary(),
		Pharmacokinetics: c.pharmacokinetics.StatsSummary(),
		Interactions:     c.interactions.StatsSummary(),
		SideEffects:      c.sideEffects.StatsSummary(),
		Mechanisms:       c.mechanisms.StatsSummary(),
		Combinations:     c.combinations.StatsSummary(),
	}
}
