package entities

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity of a drug-drug interaction. The zero value is unknown.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
)

var severityNames = map[Severity]string{
	SeverityUnknown:  "unknown",
	SeverityMinor:    "minor",
	SeverityModerate: "moderate",
	SeverityMajor:    "major",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "minor":
		return SeverityMinor, nil
	case "moderate":
		return SeverityModerate, nil
	case "major":
		return SeverityMajor, nil
	}
	return SeverityUnknown, fmt.Errorf("unknown severity %q", raw)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type InteractionCategory string

const (
	InteractionPharmacokinetic InteractionCategory = "pharmacokinetic"
	InteractionPharmacodynamic InteractionCategory = "pharmacodynamic"
	InteractionCYP450          InteractionCategory = "cyp450"
	InteractionAbsorption      InteractionCategory = "absorption"
	InteractionRenal           InteractionCategory = "renal"
	InteractionSerotonergic    InteractionCategory = "serotonergic"
	InteractionQTProlongation  InteractionCategory = "qt-prolongation"
	InteractionBleedingRisk    InteractionCategory = "bleeding-risk"
	InteractionNephrotoxic     InteractionCategory = "nephrotoxic"
	InteractionHepatotoxic     InteractionCategory = "hepatotoxic"
)

var interactionCategories = map[InteractionCategory]bool{
	InteractionPharmacokinetic: true,
	InteractionPharmacodynamic: true,
	InteractionCYP450:          true,
	InteractionAbsorption:      true,
	InteractionRenal:           true,
	InteractionSerotonergic:    true,
	InteractionQTProlongation:  true,
	InteractionBleedingRisk:    true,
	InteractionNephrotoxic:     true,
	InteractionHepatotoxic:     true,
}

// Known reports whether c is one of the defined categories.
func (c InteractionCategory) Known() bool {
	return interactionCategories[c]
}

// InteractionRecord describes a clinically significant effect between two
// medications. The pair (A, B) is unordered.
type InteractionRecord struct {
	ID             string              `json:"id" yaml:"id"`
	A              MedicationID        `json:"a" yaml:"a"`
	B              MedicationID        `json:"b" yaml:"b"`
	Category       InteractionCategory `json:"category" yaml:"category"`
	Mechanism      string              `json:"mechanism" yaml:"mechanism"`
	Severity       Severity            `json:"severity" yaml:"severity"`
	ClinicalEffect string              `json:"clinicalEffect" yaml:"clinicalEffect"`
	Management     string              `json:"management" yaml:"management"`
	Evidence       string              `json:"evidence,omitempty" yaml:"evidence"`
}

// Other returns the opposite side of the pair from id.
func (r InteractionRecord) Other(id MedicationID) MedicationID {
	if r.A == id {
		return r.B
	}
	return r.A
}
