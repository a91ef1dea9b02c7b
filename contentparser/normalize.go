package contentparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// normalizer trims and lower-cases every id in place and collects
// malformed ids so one load reports all of them.
type normalizer struct {
	errs []error
}

func (n *normalizer) err() error {
	return errors.Join(n.errs...)
}

func (n *normalizer) fail(file, record, format string, args ...any) {
	n.errs = append(n.errs, fmt.Errorf("%s: %s: %s", file, record, fmt.Sprintf(format, args...)))
}

func (n *normalizer) medicationID(file, record string, id *entities.MedicationID) {
	*id = entities.NormalizeMedicationID(string(*id))
	if !id.Valid() {
		n.fail(file, record, "invalid medication id %q", *id)
	}
}

// classID accepts an empty class when optional is set
func (n *normalizer) classID(file, record string, id *entities.DrugClassID, optional bool) {
	*id = entities.NormalizeDrugClassID(string(*id))
	if *id == "" && optional {
		return
	}
	if !id.Valid() {
		n.fail(file, record, "invalid drug class id %q", *id)
	}
}

func (n *normalizer) regionID(file, record string, id *entities.RegionID) {
	*id = entities.NormalizeRegionID(string(*id))
	if !id.Valid() {
		n.fail(file, record, "invalid region id %q", *id)
	}
}

func (n *normalizer) medications(doc *medicationsDoc) {
	for i := range doc.DrugClasses {
		c := &doc.DrugClasses[i]
		record := fmt.Sprintf("drug class %d", i)
		n.classID(MedicationsFile, record, &c.ID, false)
		if c.PrototypeDrug != "" {
			n.medicationID(MedicationsFile, record, &c.PrototypeDrug)
		}
	}
	for i := range doc.Medications {
		m := &doc.Medications[i]
		record := fmt.Sprintf("medication %d", i)
		n.medicationID(MedicationsFile, record, &m.ID)
		n.classID(MedicationsFile, record, &m.DrugClass, true)
		if m.DisplayName == "" {
			n.fail(MedicationsFile, record, "missing display name")
		}
	}
}

func (n *normalizer) targets(mappings []entities.TargetMapping) {
	for i := range mappings {
		m := &mappings[i]
		record := fmt.Sprintf("target mapping %d", i)
		n.medicationID(TargetsFile, record, &m.MedicationID)
		for j := range m.Primary {
			n.regionID(TargetsFile, record, &m.Primary[j].Region)
		}
		for j := range m.Secondary {
			n.regionID(TargetsFile, record, &m.Secondary[j].Region)
		}
	}
}

func (n *normalizer) pharmacokinetics(profiles []entities.PharmacokineticProfile) {
	for i := range profiles {
		n.medicationID(PharmacokineticsFile, fmt.Sprintf("profile %d", i), &profiles[i].MedicationID)
	}
}

func (n *normalizer) interactions(records []entities.InteractionRecord) {
	for i := range records {
		r := &records[i]
		record := fmt.Sprintf("interaction %d", i)
		n.medicationID(InteractionsFile, record, &r.A)
		n.medicationID(InteractionsFile, record, &r.B)
		if r.Severity == entities.SeverityUnknown {
			n.fail(InteractionsFile, record, "missing severity")
		}
		if r.Category != "" && !r.Category.Known() {
			n.fail(InteractionsFile, record, "unknown category %q", r.Category)
		}
	}
}

func (n *normalizer) sideEffects(explanations []entities.SideEffectExplanation) {
	for i := range explanations {
		e := &explanations[i]
		record := fmt.Sprintf("side effect %d", i)
		n.classID(SideEffectsFile, record, &e.DrugClass, true)
		for j := range e.Medications {
			n.medicationID(SideEffectsFile, record, &e.Medications[j])
		}
	}
}

func (n *normalizer) mechanisms(explanations []entities.MechanismExplanation) {
	for i := range explanations {
		n.classID(MechanismsFile, fmt.Sprintf("mechanism %d", i), &explanations[i].DrugClass, false)
	}
}

func (n *normalizer) combinations(entries []entities.DrugCombination) {
	for i := range entries {
		c := &entries[i]
		record := fmt.Sprintf("combination %d", i)
		c.Type = entities.CombinationType(strings.ToLower(strings.TrimSpace(string(c.Type))))
		if !c.Type.Known() {
			n.fail(CombinationsFile, record, "unknown type %q", c.Type)
		}
		for j := range c.Medications {
			n.medicationID(CombinationsFile, record, &c.Medications[j])
		}
	}
}
