// Package interfaces defines core abstractions for the pharmacology API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/stores"
)

// ContentCatalog is the read side of the six content stores used to build
// patient medication views. Absence is reported with false or an empty slice.
type ContentCatalog interface {
	TargetMapping(id entities.MedicationID) (entities.TargetMapping, bool)
	Identity(id entities.MedicationID) (entities.MedicationIdentity, bool)
	Pharmacokinetics(id entities.MedicationID) (entities.PharmacokineticProfile, bool)
	InteractionsBetween(a, b entities.MedicationID) []entities.InteractionRecord
	SideEffectsFor(id entities.MedicationID, class entities.DrugClassID) []entities.SideEffectExplanation
	MechanismForClass(class entities.DrugClassID) (entities.MechanismExplanation, bool)
}

// CoverageReport lists content gaps and inconsistencies across the stores
type CoverageReport struct {
	MappedWithoutIdentity        []entities.MedicationID        `json:"mappedWithoutIdentity"`
	IdentityWithoutTargets       []entities.MedicationID        `json:"identityWithoutTargets"`
	WithoutPharmacokinetics      []entities.MedicationID        `json:"withoutPharmacokinetics"`
	WithoutSideEffects           []entities.MedicationID        `json:"withoutSideEffects"`
	ClassesWithoutMechanism      []entities.DrugClassID         `json:"classesWithoutMechanism"`
	UnknownDrugClasses           []entities.DrugClassID         `json:"unknownDrugClasses"`
	InteractionsWithUnknownMeds  []string                       `json:"interactionsWithUnknownMedications"`
	InconsistentRegionLabels     map[entities.RegionID][]string `json:"inconsistentRegionLabels"`
	OrphanPharmacokinetics       []entities.MedicationID        `json:"orphanPharmacokinetics"`
	MechanismsForUnknownClasses  []entities.DrugClassID         `json:"mechanismsForUnknownClasses"`
	SideEffectsForUnknownTargets []string                       `json:"sideEffectsForUnknownTargets"`
}

// DataStore defines the contract for catalog storage.
// Readers always see one complete catalog; updates replace it atomically.
type DataStore interface {
	GetCatalog() *stores.Catalog
	GetContentSource() string
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	IsReady() bool
	WaitReady(ctx context.Context) error

	UpdateCatalog(catalog *stores.Catalog, source string)
	BeginUpdate() bool
	EndUpdate()
}

// ContentParser loads every content file and builds a catalog from it
type ContentParser interface {
	Load() (*stores.Catalog, error)
	Source() string
}

// Scheduler defines the contract for job scheduling.
// It manages the initial load, content audits and reloads.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	HealthCheck(w http.ResponseWriter, r *http.Request)

	SearchMedications(w http.ResponseWriter, r *http.Request)
	GetMedication(w http.ResponseWriter, r *http.Request)
	ResolvePatientMedications(w http.ResponseWriter, r *http.Request)
	SearchTargets(w http.ResponseWriter, r *http.Request)
	SearchPharmacokinetics(w http.ResponseWriter, r *http.Request)
	GetInteractions(w http.ResponseWriter, r *http.Request)
	SearchInteractions(w http.ResponseWriter, r *http.Request)
	GetInteraction(w http.ResponseWriter, r *http.Request)
	SearchDrugClasses(w http.ResponseWriter, r *http.Request)
	GetMechanism(w http.ResponseWriter, r *http.Request)
	SearchMechanisms(w http.ResponseWriter, r *http.Request)
	GetMechanismByID(w http.ResponseWriter, r *http.Request)
	SearchSideEffects(w http.ResponseWriter, r *http.Request)
	GetSideEffect(w http.ResponseWriter, r *http.Request)
	SearchCombinations(w http.ResponseWriter, r *http.Request)
	GetCombination(w http.ResponseWriter, r *http.Request)
	MedicationsForRegion(w http.ResponseWriter, r *http.Request)
	GetStats(w http.ResponseWriter, r *http.Request)
	GetCoverage(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextAudit returns the next scheduled content audit
	CalculateNextAudit() time.Time
}

// ContentValidator checks catalog consistency and user input
type ContentValidator interface {
	ReportCoverage(catalog *stores.Catalog) *CoverageReport
	ValidateInput(input string) error
	ValidateMedicationID(input string) (entities.MedicationID, error)
	ValidateDrugClassID(input string) (entities.DrugClassID, error)
	ValidateContentID(input string) (string, error)
	ValidateRegionID(input string) (entities.RegionID, error)
	ValidateLevel(input string) (int, error)
}

// Issues counts every reported gap and inconsistency
func (r *CoverageReport) Issues() int {
	if r == nil {
		return 0
	}
	return len(r.MappedWithoutIdentity) + len(r.IdentityWithoutTargets) +
		len(r.WithoutPharmacokinetics) + len(r.WithoutSideEffects) +
		len(r.ClassesWithoutMechanism) + len(r.UnknownDrugClasses) +
		len(r.InteractionsWithUnknownMeds) + len(r.InconsistentRegionLabels) +
		len(r.OrphanPharmacokinetics) + len(r.MechanismsForUnknownClasses) +
		len(r.SideEffectsForUnknownTargets)
}
