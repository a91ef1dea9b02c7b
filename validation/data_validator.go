// Package validation checks content coverage across the stores and
// validates user input for the pharmacology API.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/stores"
)

// ErrInvalidParameter is wrapped by every input validation error
var ErrInvalidParameter = errors.New("invalid parameter")

// Pre-compiled regex patterns, reused for all validations
var (
	// Input validation: letters (any script), digits and safe punctuation
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+']+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

const (
	maxInputLength  = 80
	maxIDLength     = 64
	maxRegionLength = 160
)

// DataValidatorImpl implements the interfaces.ContentValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.ContentValidator {
	return &DataValidatorImpl{}
}

// ReportCoverage lists content gaps between the stores. Gaps are expected
// while content is being written, so nothing here is an error.
func (v *DataValidatorImpl) ReportCoverage(catalog *stores.Catalog) *interfaces.CoverageReport {
	report := &interfaces.CoverageReport{
		MappedWithoutIdentity:        []entities.MedicationID{},
		IdentityWithoutTargets:       []entities.MedicationID{},
		WithoutPharmacokinetics:      []entities.MedicationID{},
		WithoutSideEffects:           []entities.MedicationID{},
		ClassesWithoutMechanism:      []entities.DrugClassID{},
		UnknownDrugClasses:           []entities.DrugClassID{},
		InteractionsWithUnknownMeds:  []string{},
		InconsistentRegionLabels:     map[entities.RegionID][]string{},
		OrphanPharmacokinetics:       []entities.MedicationID{},
		MechanismsForUnknownClasses:  []entities.DrugClassID{},
		SideEffectsForUnknownTargets: []string{},
	}
	if catalog == nil {
		return report
	}

	medications := catalog.Medications()
	targets := catalog.Targets()

	// Check 1: every medication id known to either identity or target map
	known := make(map[entities.MedicationID]bool)
	var ids []entities.MedicationID
	for _, m := range medications.All() {
		known[m.ID] = true
		ids = append(ids, m.ID)
		if _, ok := targets.GetByID(m.ID); !ok {
			report.IdentityWithoutTargets = append(report.IdentityWithoutTargets, m.ID)
		}
	}
	for _, m := range targets.All() {
		if !known[m.MedicationID] {
			known[m.MedicationID] = true
			ids = append(ids, m.MedicationID)
			report.MappedWithoutIdentity = append(report.MappedWithoutIdentity, m.MedicationID)
		}
	}

	// Check 2: per-medication optional content
	for _, id := range ids {
		if _, ok := catalog.Pharmacokinetics(id); !ok {
			report.WithoutPharmacokinetics = append(report.WithoutPharmacokinetics, id)
		}
		var class entities.DrugClassID
		if identity, ok := catalog.Identity(id); ok {
			class = identity.DrugClass
		}
		if len(catalog.SideEffectsFor(id, class)) == 0 {
			report.WithoutSideEffects = append(report.WithoutSideEffects, id)
		}
	}

	// Check 3: drug classes
	for _, c := range medications.Classes() {
		if _, ok := catalog.MechanismForClass(c.ID); !ok {
			report.ClassesWithoutMechanism = append(report.ClassesWithoutMechanism, c.ID)
		}
	}
	seenClass := make(map[entities.DrugClassID]bool)
	for _, m := range medications.All() {
		if _, ok := medications.GetClass(m.DrugClass); !ok && !seenClass[m.DrugClass] {
			seenClass[m.DrugClass] = true
			report.UnknownDrugClasses = append(report.UnknownDrugClasses, m.DrugClass)
		}
	}
	for _, m := range catalog.Mechanisms().All() {
		if _, ok := medications.GetClass(m.DrugClass); !ok {
			report.MechanismsForUnknownClasses = append(report.MechanismsForUnknownClasses, m.DrugClass)
		}
	}

	// Check 4: references to medications nobody else knows about
	for _, r := range catalog.Interactions().All() {
		if !known[r.A] || !known[r.B] {
			report.InteractionsWithUnknownMeds = append(report.InteractionsWithUnknownMeds, r.ID)
		}
	}
	for _, p := range catalog.PharmacokineticsStore().All() {
		if !known[p.MedicationID] {
			report.OrphanPharmacokinetics = append(report.OrphanPharmacokinetics, p.MedicationID)
		}
	}
	for _, s := range catalog.SideEffects().All() {
		if !sideEffectTargetsKnown(s, known, medications) {
			report.SideEffectsForUnknownTargets = append(report.SideEffectsForUnknownTargets, s.ID)
		}
	}

	// Check 5: one region reached through several organ labels
	labels := make(map[entities.RegionID][]string)
	for _, m := range targets.All() {
		for _, t := range m.All() {
			if !containsString(labels[t.Region], t.Organ) {
				labels[t.Region] = append(labels[t.Region], t.Organ)
			}
		}
	}
	for region, organs := range labels {
		if len(organs) > 1 {
			report.InconsistentRegionLabels[region] = organs
		}
	}

	return report
}

func sideEffectTargetsKnown(s entities.SideEffectExplanation, known map[entities.MedicationID]bool, medications *stores.MedicationDatabase) bool {
	if s.DrugClass != "" {
		if _, ok := medications.GetClass(s.DrugClass); !ok {
			return false
		}
	}
	for _, id := range s.Medications {
		if !known[id] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ValidateInput validates free-text search input
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%w: input cannot be empty", ErrInvalidParameter)
	}

	if len(input) < 2 {
		return fmt.Errorf("%w: input too short: minimum 2 characters", ErrInvalidParameter)
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("%w: input too long: maximum %d characters", ErrInvalidParameter, maxInputLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("%w: search query too complex: maximum 6 words allowed", ErrInvalidParameter)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("%w: input contains potentially dangerous content", ErrInvalidParameter)
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("%w: input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods and plus sign are allowed", ErrInvalidParameter)
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("%w: input contains excessive character repetition", ErrInvalidParameter)
	}

	return nil
}

// ValidateMedicationID normalizes and checks a medication id
func (v *DataValidatorImpl) ValidateMedicationID(input string) (entities.MedicationID, error) {
	id := entities.NormalizeMedicationID(input)
	if id == "" {
		return "", fmt.Errorf("%w: medication id cannot be empty", ErrInvalidParameter)
	}
	if len(id) > maxIDLength {
		return "", fmt.Errorf("%w: medication id too long: maximum %d characters", ErrInvalidParameter, maxIDLength)
	}
	if !id.Valid() {
		return "", fmt.Errorf("%w: medication id must be lower-kebab-case, got %q", ErrInvalidParameter, input)
	}
	return id, nil
}

// ValidateDrugClassID normalizes and checks a drug class id
func (v *DataValidatorImpl) ValidateDrugClassID(input string) (entities.DrugClassID, error) {
	id := entities.NormalizeDrugClassID(input)
	if id == "" {
		return "", fmt.Errorf("%w: drug class cannot be empty", ErrInvalidParameter)
	}
	if len(id) > maxIDLength {
		return "", fmt.Errorf("%w: drug class too long: maximum %d characters", ErrInvalidParameter, maxIDLength)
	}
	if !id.Valid() {
		return "", fmt.Errorf("%w: drug class must be lower-kebab-case, got %q", ErrInvalidParameter, input)
	}
	return id, nil
}

// ValidateContentID normalizes and checks the id of an interaction,
// explanation or combination record
func (v *DataValidatorImpl) ValidateContentID(input string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(input))
	if id == "" {
		return "", fmt.Errorf("%w: id cannot be empty", ErrInvalidParameter)
	}
	if len(id) > maxIDLength {
		return "", fmt.Errorf("%w: id too long: maximum %d characters", ErrInvalidParameter, maxIDLength)
	}
	if !entities.ValidContentID(id) {
		return "", fmt.Errorf("%w: id must be lower-kebab-case, got %q", ErrInvalidParameter, input)
	}
	return id, nil
}

// ValidateRegionID normalizes and checks the syntax of a region path
func (v *DataValidatorImpl) ValidateRegionID(input string) (entities.RegionID, error) {
	id := entities.NormalizeRegionID(input)
	if id == "" {
		return "", fmt.Errorf("%w: region cannot be empty", ErrInvalidParameter)
	}
	if len(id) > maxRegionLength {
		return "", fmt.Errorf("%w: region too long: maximum %d characters", ErrInvalidParameter, maxRegionLength)
	}
	if !id.Valid() {
		return "", fmt.Errorf("%w: region must be a dot-delimited path, got %q", ErrInvalidParameter, input)
	}
	return id, nil
}

// ValidateLevel parses an explanation level between 1 and 5.
// strconv.Atoi rejects every non-numeric input.
func (v *DataValidatorImpl) ValidateLevel(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: level cannot be empty", ErrInvalidParameter)
	}

	level, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: level must be a number", ErrInvalidParameter)
	}

	if level < entities.MinExplanationLevel || level > entities.MaxExplanationLevel {
		return 0, fmt.Errorf("%w: level must be between %d and %d", ErrInvalidParameter,
			entities.MinExplanationLevel, entities.MaxExplanationLevel)
	}

	return level, nil
}

// hasExcessiveRepetition checks for the same character repeated more than 10 times consecutively
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
