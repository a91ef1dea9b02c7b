package entities

import (
	"regexp"
	"strings"
)

var (
	idPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	regionPattern = regexp.MustCompile(`^[a-z0-9_-]+(\.[a-z0-9_-]+)*$`)
)

// MedicationID is the canonical lower-kebab-case key shared by every store
// for the same real-world medication.
type MedicationID string

// DrugClassID identifies a pharmacological class (e.g. "beta-blocker").
type DrugClassID string

// RegionID is a dot-delimited anatomical path (e.g. "body.torso.thorax.heart").
type RegionID string

// NormalizeMedicationID trims and lower-cases a raw id.
func NormalizeMedicationID(raw string) MedicationID {
	return MedicationID(strings.ToLower(strings.TrimSpace(raw)))
}

// NormalizeDrugClassID trims and lower-cases a raw class id.
func NormalizeDrugClassID(raw string) DrugClassID {
	return DrugClassID(strings.ToLower(strings.TrimSpace(raw)))
}

// NormalizeRegionID trims and lower-cases a raw region path.
func NormalizeRegionID(raw string) RegionID {
	return RegionID(strings.ToLower(strings.TrimSpace(raw)))
}

func (id MedicationID) String() string { return string(id) }

// Valid reports whether id is non-empty lower-kebab-case.
func (id MedicationID) Valid() bool { return idPattern.MatchString(string(id)) }

func (id DrugClassID) String() string { return string(id) }

func (id DrugClassID) Valid() bool { return idPattern.MatchString(string(id)) }

func (r RegionID) String() string { return string(r) }

// Valid only checks the path syntax. Whether the path resolves to a real
// anatomy node is the renderer's concern.
func (r RegionID) Valid() bool { return regionPattern.MatchString(string(r)) }

// ValidContentID reports whether id is a well-formed content record id:
// interactions, explanations and combinations share the medication id syntax.
func ValidContentID(id string) bool { return idPattern.MatchString(id) }

// Contains reports whether other is r itself or a descendant of r.
// "body.torso" contains "body.torso.thorax.heart" but not "body.torsoid".
func (r RegionID) Contains(other RegionID) bool {
	if r == "" {
		return false
	}
	if r == other {
		return true
	}
	return strings.HasPrefix(string(other), string(r)+".")
}
