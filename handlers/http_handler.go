package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/pharmacology-api/aggregator"
	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/metrics"
	"github.com/giygas/pharmacology-api/stores"
)

// MaxPatientMedications caps the size of one patient list or id list
const MaxPatientMedications = 50

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.ContentValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.ContentValidator,
	healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// ResolveRequest is the body of a patient list resolution
type ResolveRequest struct {
	Medications []entities.PatientMedication `json:"medications"`
}

// InteractionsResponse lists every interaction between the requested medications
type InteractionsResponse struct {
	IDs             []entities.MedicationID      `json:"ids"`
	Interactions    []entities.InteractionRecord `json:"interactions"`
	HighestSeverity entities.Severity            `json:"highestSeverity,omitempty"`
}

// MechanismResponse wraps the mechanism of one drug class
type MechanismResponse struct {
	DrugClass entities.DrugClass                                 `json:"drugClass"`
	Mechanism aggregator.Optional[entities.MechanismExplanation] `json:"mechanism"`
}

// RegionMedicationsResponse lists the medications acting on a region or beneath it
type RegionMedicationsResponse struct {
	Region      entities.RegionID       `json:"regionId"`
	Medications []entities.MedicationID `json:"medications"`
}

// StatsResponse bundles the catalog stats with the content origin
type StatsResponse struct {
	Source      string              `json:"source"`
	LastUpdated string              `json:"lastUpdated"`
	Stats       stores.CatalogStats `json:"stats"`
}

// CoverageResponse wraps the coverage report with its issue count
type CoverageResponse struct {
	Issues int                        `json:"issues"`
	Report *interfaces.CoverageReport `json:"report"`
}

// rejectParam logs and answers a query or path parameter that failed validation
func rejectParam(w http.ResponseWriter, name, value string, err error) {
	logging.Warn("Unusual user input", name, value, "error", err)
	RespondWithError(w, http.StatusBadRequest, err.Error())
}

// nonNil keeps empty results encoded as [] instead of null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.healthChecker.HealthCheck()

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	RespondWithJSON(w, httpStatus, response)
}

// SearchMedications filters medication identities by text and drug class
func (h *HTTPHandlerImpl) SearchMedications(w http.ResponseWriter, r *http.Request) {
	var q stores.MedicationQuery

	if text := r.URL.Query().Get("q"); text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
		q.Text = text
	}

	if raw := r.URL.Query().Get("class"); raw != "" {
		class, err := h.validator.ValidateDrugClassID(raw)
		if err != nil {
			rejectParam(w, "class", raw, err)
			return
		}
		q.DrugClass = class
	}

	results := h.dataStore.GetCatalog().Medications().Search(q)
	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetMedication resolves a single medication the way a one-entry patient list would be
func (h *HTTPHandlerImpl) GetMedication(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := h.validator.ValidateMedicationID(raw)
	if err != nil {
		rejectParam(w, "id", raw, err)
		return
	}

	catalog := h.dataStore.GetCatalog()
	_, mapped := catalog.TargetMapping(id)
	_, known := catalog.Identity(id)
	if !mapped && !known {
		RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	targets, err := aggregator.ResolvePatientMedications(catalog, []entities.PatientMedication{{ID: string(id)}})
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), targets[0])
}

// ResolvePatientMedications builds the full profile of a patient's medication list
func (h *HTTPHandlerImpl) ResolvePatientMedications(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			RespondWithError(w, http.StatusBadRequest, "Request body cannot be empty")
			return
		}
		logging.Warn("Invalid resolve request body", "error", err)
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Medications) > MaxPatientMedications {
		RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Too many medications: maximum %d allowed", MaxPatientMedications))
		return
	}

	profile, err := aggregator.ResolvePatientProfile(h.dataStore.GetCatalog(), req.Medications)
	if err != nil {
		if errors.Is(err, aggregator.ErrInvalidInput) {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("Failed to resolve patient medications", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to resolve medications")
		return
	}

	metrics.RecordResolution(len(profile.Medications), len(profile.Unmapped), profile.Interactions)

	respondWithContent(w, h.dataStore.GetLastUpdated(), profile)
}

// SearchTargets scans the target map by organ label, region subtree and text
func (h *HTTPHandlerImpl) SearchTargets(w http.ResponseWriter, r *http.Request) {
	var q stores.TargetQuery
	params := r.URL.Query()

	if organ := params.Get("organ"); organ != "" {
		if err := h.validator.ValidateInput(organ); err != nil {
			rejectParam(w, "organ", organ, err)
			return
		}
		q.Organ = organ
	}

	if raw := params.Get("region"); raw != "" {
		region, err := h.validator.ValidateRegionID(raw)
		if err != nil {
			rejectParam(w, "region", raw, err)
			return
		}
		q.Region = region
	}

	if text := params.Get("q"); text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
		q.Text = text
	}

	results := h.dataStore.GetCatalog().Targets().Search(q)
	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// SearchPharmacokinetics filters PK profiles by adjustment flags and text
func (h *HTTPHandlerImpl) SearchPharmacokinetics(w http.ResponseWriter, r *http.Request) {
	var q stores.PharmacokineticsQuery
	params := r.URL.Query()

	for _, flag := range []struct {
		name string
		dst  **bool
	}{
		{"renal", &q.RenalAdjustment},
		{"hepatic", &q.HepaticAdjustment},
	} {
		raw := params.Get(flag.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			rejectParam(w, flag.name, raw, fmt.Errorf("%s must be true or false", flag.name))
			return
		}
		*flag.dst = &v
	}

	if text := params.Get("q"); text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
		q.Text = text
	}

	results := h.dataStore.GetCatalog().PharmacokineticsStore().Search(q)
	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetInteractions lists the interactions between every pair of ?ids=
func (h *HTTPHandlerImpl) GetInteractions(w http.ResponseWriter, r *http.Request) {
	raw := splitIDs(r.URL.Query().Get("ids"))
	if len(raw) < 2 {
		RespondWithError(w, http.StatusBadRequest, "At least two medication ids are required")
		return
	}
	if len(raw) > MaxPatientMedications {
		RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Too many medication ids: maximum %d allowed", MaxPatientMedications))
		return
	}

	ids := make([]entities.MedicationID, len(raw))
	for i, s := range raw {
		id, err := h.validator.ValidateMedicationID(s)
		if err != nil {
			rejectParam(w, "ids", s, err)
			return
		}
		ids[i] = id
	}

	response := InteractionsResponse{
		IDs:          ids,
		Interactions: aggregator.PairwiseInteractions(h.dataStore.GetCatalog(), ids),
	}
	for _, rec := range response.Interactions {
		if rec.Severity > response.HighestSeverity {
			response.HighestSeverity = rec.Severity
		}
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), response)
}

// SearchInteractions filters interaction records
func (h *HTTPHandlerImpl) SearchInteractions(w http.ResponseWriter, r *http.Request) {
	var q stores.InteractionQuery
	params := r.URL.Query()

	if text := params.Get("q"); text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
		q.Text = text
	}

	if raw := params.Get("severity"); raw != "" {
		severity, err := entities.ParseSeverity(raw)
		if err != nil {
			rejectParam(w, "severity", raw, err)
			return
		}
		q.Severity = severity
	}

	if raw := params.Get("minSeverity"); raw != "" {
		severity, err := entities.ParseSeverity(raw)
		if err != nil {
			rejectParam(w, "minSeverity", raw, err)
			return
		}
		q.MinSeverity = severity
	}

	if raw := params.Get("category"); raw != "" {
		category := entities.InteractionCategory(entities.NormalizeDrugClassID(raw))
		if !category.Known() {
			rejectParam(w, "category", raw, fmt.Errorf("unknown interaction category %q", raw))
			return
		}
		q.Category = category
	}

	if raw := params.Get("medication"); raw != "" {
		id, err := h.validator.ValidateMedicationID(raw)
		if err != nil {
			rejectParam(w, "medication", raw, err)
			return
		}
		q.Medication = id
	}

	results := h.dataStore.GetCatalog().Interactions().Search(q)
	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetInteraction returns one interaction record by id
func (h *HTTPHandlerImpl) GetInteraction(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := h.validator.ValidateContentID(raw)
	if err != nil {
		rejectParam(w, "id", raw, err)
		return
	}

	record, ok := h.dataStore.GetCatalog().Interactions().GetByID(id)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Interaction not found")
		return
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), record)
}

// SearchDrugClasses filters drug classes by text and organ-system category
func (h *HTTPHandlerImpl) SearchDrugClasses(w http.ResponseWriter, r *http.Request) {
	var q stores.ClassQuery
	params := r.URL.Query()

	if text := params.Get("q"); text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
		q.Text = text
	}

	if raw := params.Get("category"); raw != "" {
		category := entities.DrugClassCategory(strings.ToLower(strings.TrimSpace(raw)))
		if !category.Known() {
			rejectParam(w, "category", raw, fmt.Errorf("unknown drug class category %q", raw))
			return
		}
		q.Category = category
	}

	results := h.dataStore.GetCatalog().Medications().SearchClasses(q)
	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetMechanism returns the mechanism explanation of a drug class.
// ?level= keeps only that complexity tier.
func (h *HTTPHandlerImpl) GetMechanism(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	classID, err := h.validator.ValidateDrugClassID(raw)
	if err != nil {
		rejectParam(w, "id", raw, err)
		return
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	catalog := h.dataStore.GetCatalog()
	class, found := catalog.Medications().GetClass(classID)
	if !found {
		RespondWithError(w, http.StatusNotFound, "Drug class not found")
		return
	}

	response := MechanismResponse{
		DrugClass: class,
		Mechanism: aggregator.NotYetAuthored[entities.MechanismExplanation](),
	}
	if mechanism, ok := catalog.MechanismForClass(classID); ok {
		mechanism.Levels = filterLevels(mechanism.Levels, level)
		response.Mechanism = aggregator.Available(mechanism)
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), response)
}

// SearchMechanisms lists mechanism explanations, all of them without ?q=
func (h *HTTPHandlerImpl) SearchMechanisms(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	results := h.dataStore.GetCatalog().Mechanisms().Search(text)
	for i := range results {
		results[i].Levels = filterLevels(results[i].Levels, level)
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetMechanismByID returns one mechanism explanation by its own id
func (h *HTTPHandlerImpl) GetMechanismByID(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := h.validator.ValidateContentID(raw)
	if err != nil {
		rejectParam(w, "id", raw, err)
		return
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	mechanism, found := h.dataStore.GetCatalog().Mechanisms().GetByID(id)
	if !found {
		RespondWithError(w, http.StatusNotFound, "Mechanism not found")
		return
	}
	mechanism.Levels = filterLevels(mechanism.Levels, level)

	respondWithContent(w, h.dataStore.GetLastUpdated(), mechanism)
}

// SearchSideEffects lists side-effect explanations for a medication, a
// drug class or a text query. Filters combine.
func (h *HTTPHandlerImpl) SearchSideEffects(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	catalog := h.dataStore.GetCatalog()
	sideEffects := catalog.SideEffects()

	text := params.Get("q")
	if text != "" {
		if err := h.validator.ValidateInput(text); err != nil {
			rejectParam(w, "q", text, err)
			return
		}
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	var class entities.DrugClassID
	if raw := params.Get("class"); raw != "" {
		id, err := h.validator.ValidateDrugClassID(raw)
		if err != nil {
			rejectParam(w, "class", raw, err)
			return
		}
		class = id
	}

	var results []entities.SideEffectExplanation
	switch raw := params.Get("medication"); {
	case raw != "":
		id, err := h.validator.ValidateMedicationID(raw)
		if err != nil {
			rejectParam(w, "medication", raw, err)
			return
		}
		if class == "" {
			if identity, ok := catalog.Identity(id); ok {
				class = identity.DrugClass
			}
		}
		results = sideEffects.ForMedication(id, class)
		if text != "" {
			results = intersectSideEffects(results, sideEffects.Search(text))
		}
	case class != "":
		results = sideEffects.ForClass(class)
		if text != "" {
			results = intersectSideEffects(results, sideEffects.Search(text))
		}
	default:
		results = sideEffects.Search(text)
	}

	for i := range results {
		results[i].Levels = filterLevels(results[i].Levels, level)
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetSideEffect returns one side-effect explanation by id
func (h *HTTPHandlerImpl) GetSideEffect(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := h.validator.ValidateContentID(raw)
	if err != nil {
		rejectParam(w, "id", raw, err)
		return
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	explanation, found := h.dataStore.GetCatalog().SideEffects().GetByID(id)
	if !found {
		RespondWithError(w, http.StatusNotFound, "Side effect not found")
		return
	}
	explanation.Levels = filterLevels(explanation.Levels, level)

	respondWithContent(w, h.dataStore.GetLastUpdated(), explanation)
}

// SearchCombinations filters drug combinations by type, category, drug and text
func (h *HTTPHandlerImpl) SearchCombinations(w http.ResponseWriter, r *http.Request) {
	var q stores.CombinationQuery
	params := r.URL.Query()

	if raw := params.Get("type"); raw != "" {
		kind := entities.CombinationType(strings.ToLower(strings.TrimSpace(raw)))
		if !kind.Known() {
			rejectParam(w, "type", raw, fmt.Errorf("type must be %s or %s", entities.CombinationSafe, entities.CombinationDangerous))
			return
		}
		q.Type = kind
	}

	if raw := params.Get("category"); raw != "" {
		category, err := h.validator.ValidateContentID(raw)
		if err != nil {
			rejectParam(w, "category", raw, err)
			return
		}
		q.Category = category
	}

	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"drug", &q.Drug},
		{"q", &q.Text},
	} {
		raw := params.Get(p.name)
		if raw == "" {
			continue
		}
		if err := h.validator.ValidateInput(raw); err != nil {
			rejectParam(w, p.name, raw, err)
			return
		}
		*p.dst = raw
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	results := h.dataStore.GetCatalog().Combinations().Search(q)
	for i := range results {
		results[i].Levels = filterCombinationLevels(results[i].Levels, level)
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), nonNil(results))
}

// GetCombination returns one drug combination by id
func (h *HTTPHandlerImpl) GetCombination(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := h.validator.ValidateContentID(raw)
	if err != nil {
		rejectParam(w, "id", raw, err)
		return
	}

	level, ok := h.parseLevel(w, r)
	if !ok {
		return
	}

	combination, found := h.dataStore.GetCatalog().Combinations().GetByID(id)
	if !found {
		RespondWithError(w, http.StatusNotFound, "Combination not found")
		return
	}
	combination.Levels = filterCombinationLevels(combination.Levels, level)

	respondWithContent(w, h.dataStore.GetLastUpdated(), combination)
}

// MedicationsForRegion lists the medications with a target in ?region= or beneath it
func (h *HTTPHandlerImpl) MedicationsForRegion(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("region")
	if raw == "" {
		RespondWithError(w, http.StatusBadRequest, "A region is required")
		return
	}
	region, err := h.validator.ValidateRegionID(raw)
	if err != nil {
		rejectParam(w, "region", raw, err)
		return
	}

	respondWithContent(w, h.dataStore.GetLastUpdated(), RegionMedicationsResponse{
		Region:      region,
		Medications: nonNil(h.dataStore.GetCatalog().Targets().MedicationsForRegion(region)),
	})
}

// GetStats returns the stats summary of every store
func (h *HTTPHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	lastUpdated := h.dataStore.GetLastUpdated()
	response := StatsResponse{
		Source:      h.dataStore.GetContentSource(),
		LastUpdated: lastUpdated.Format(time.RFC3339),
		Stats:       h.dataStore.GetCatalog().Stats(),
	}
	respondWithContent(w, lastUpdated, response)
}

// GetCoverage returns the content coverage report of the current catalog
func (h *HTTPHandlerImpl) GetCoverage(w http.ResponseWriter, r *http.Request) {
	report := h.validator.ReportCoverage(h.dataStore.GetCatalog())
	respondWithContent(w, h.dataStore.GetLastUpdated(), CoverageResponse{
		Issues: report.Issues(),
		Report: report,
	})
}

// parseLevel reads ?level=. Zero means every tier.
func (h *HTTPHandlerImpl) parseLevel(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("level")
	if raw == "" {
		return 0, true
	}
	level, err := h.validator.ValidateLevel(raw)
	if err != nil {
		rejectParam(w, "level", raw, err)
		return 0, false
	}
	return level, true
}

// filterLevels keeps only the requested tier. A tier that is not authored
// leaves an empty list.
func filterLevels(levels entities.Levels, level int) entities.Levels {
	if level == 0 {
		return levels
	}
	if l, ok := levels.At(level); ok {
		return entities.Levels{l}
	}
	return entities.Levels{}
}

func filterCombinationLevels(levels []entities.CombinationLevel, level int) []entities.CombinationLevel {
	if level == 0 {
		return levels
	}
	for _, l := range levels {
		if l.Level == level {
			return []entities.CombinationLevel{l}
		}
	}
	return []entities.CombinationLevel{}
}

// intersectSideEffects keeps the entries of base also present in other, in base order
func intersectSideEffects(base, other []entities.SideEffectExplanation) []entities.SideEffectExplanation {
	var out []entities.SideEffectExplanation
	for _, e := range base {
		inOther := func(o entities.SideEffectExplanation) bool { return o.ID == e.ID }
		if slices.ContainsFunc(other, inOther) {
			out = append(out, e)
		}
	}
	return out
}
