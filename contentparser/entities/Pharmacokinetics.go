package entities

// PharmacokineticProfile summarizes how the body handles a medication.
type PharmacokineticProfile struct {
	MedicationID      MedicationID `json:"medicationId" yaml:"medicationId"`
	HalfLife          string       `json:"halfLife" yaml:"halfLife"`
	MetabolicPathway  string       `json:"metabolicPathway" yaml:"metabolicPathway"`
	TherapeuticRange  string       `json:"therapeuticRange,omitempty" yaml:"therapeuticRange"`
	Bioavailability   string       `json:"bioavailability,omitempty" yaml:"bioavailability"`
	ProteinBinding    string       `json:"proteinBinding,omitempty" yaml:"proteinBinding"`
	RenalAdjustment   bool         `json:"renalAdjustment" yaml:"renalAdjustment"`
	HepaticAdjustment bool         `json:"hepaticAdjustment" yaml:"hepaticAdjustment"`
}
