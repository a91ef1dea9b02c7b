// Package scheduler loads the pharmacology content at startup, then audits
// content coverage on a fixed interval. Content read from a directory is
// reloaded on every audit; the previous snapshot stays active when a reload fails.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/pharmacology-api/contentparser"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/metrics"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles content loading and audits using dependency injection
type Scheduler struct {
	dataStore     interfaces.DataStore
	parser        interfaces.ContentParser
	validator     interfaces.ContentValidator
	auditInterval time.Duration
	scheduler     *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// A zero auditInterval disables periodic audits.
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.ContentParser,
	validator interfaces.ContentValidator, auditInterval time.Duration) *Scheduler {
	return &Scheduler{
		dataStore:     dataStore,
		parser:        parser,
		validator:     validator,
		auditInterval: auditInterval,
		scheduler:     gocron.NewScheduler(time.Local),
	}
}

// NewParser picks the content source: dir when set, the embedded content otherwise
func NewParser(dir string) interfaces.ContentParser {
	if dir == "" {
		return contentparser.NewEmbeddedParser()
	}
	return contentparser.NewDirParser(dir)
}

// Start performs the initial load, then schedules the audits
func (s *Scheduler) Start() error {
	if err := s.reload(); err != nil {
		logging.Error("Failed to perform initial content load", "error", err)
		return fmt.Errorf("initial content load failed: %w", err)
	}
	s.audit()

	if s.auditInterval <= 0 {
		logging.Info("Content audits disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.auditInterval).WaitForSchedule().Do(s.runAudit)
	if err != nil {
		logging.Error("Failed to schedule content audits", "error", err)
		return fmt.Errorf("failed to schedule content audits: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Content audits scheduled", "interval", s.auditInterval.String(), "source", s.parser.Source())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runAudit is the periodic job: reload reloadable content, then audit it
func (s *Scheduler) runAudit() {
	if s.reloadable() {
		if err := s.reload(); err != nil {
			logging.Error("Failed to reload content, keeping previous snapshot", "error", err)
		}
	}
	s.audit()
	s.checkStaleness()
}

// reloadable reports whether the content can change while the process runs
func (s *Scheduler) reloadable() bool {
	return s.parser.Source() != contentparser.EmbeddedSource
}

// reload builds a fresh catalog and publishes it in one swap
func (s *Scheduler) reload() (err error) {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()
	defer func() { metrics.RecordReload(err) }()

	start := time.Now()
	logging.Debug("Loading content", "source", s.parser.Source())

	catalog, err := s.parser.Load()
	if err != nil {
		return fmt.Errorf("failed to load content from %s: %w", s.parser.Source(), err)
	}

	s.dataStore.UpdateCatalog(catalog, s.parser.Source())
	metrics.RecordCatalog(catalog)

	logging.Info("Content load completed",
		"duration", time.Since(start).String(),
		"source", s.parser.Source(),
		"medications", catalog.Medications().Len(),
		"target_mappings", catalog.Targets().Len(),
		"interactions", catalog.Interactions().Len(),
	)

	return nil
}

// audit reports coverage gaps of the active catalog
func (s *Scheduler) audit() {
	report := s.validator.ReportCoverage(s.dataStore.GetCatalog())
	issues := report.Issues()
	metrics.ContentCoverageIssues.Set(float64(issues))

	if issues == 0 {
		logging.Debug("Content audit found no coverage issues")
		return
	}

	if len(report.MappedWithoutIdentity) > 0 {
		logging.Warn("Mapped medications without identity", "count", len(report.MappedWithoutIdentity), "ids", report.MappedWithoutIdentity)
	}
	if len(report.IdentityWithoutTargets) > 0 {
		logging.Warn("Medications without target mapping", "count", len(report.IdentityWithoutTargets), "ids", report.IdentityWithoutTargets)
	}
	if len(report.ClassesWithoutMechanism) > 0 {
		logging.Warn("Drug classes without mechanism", "count", len(report.ClassesWithoutMechanism), "classes", report.ClassesWithoutMechanism)
	}
	if len(report.UnknownDrugClasses) > 0 {
		logging.Warn("Unknown drug classes referenced", "classes", report.UnknownDrugClasses)
	}
	if len(report.InteractionsWithUnknownMeds) > 0 {
		logging.Warn("Interactions with unknown medications", "pairs", report.InteractionsWithUnknownMeds)
	}
	if len(report.InconsistentRegionLabels) > 0 {
		logging.Warn("Inconsistent region labels", "count", len(report.InconsistentRegionLabels))
	}

	logging.Info("Content audit completed", "issues", issues)
}

// checkStaleness warns when reloadable content missed two audits in a row
func (s *Scheduler) checkStaleness() {
	if !s.reloadable() || s.auditInterval <= 0 {
		return
	}
	if age := time.Since(s.dataStore.GetLastUpdated()); age > 2*s.auditInterval {
		logging.Warn("Content hasn't been reloaded in over two audit intervals", "age", age.Round(time.Second).String())
	}
}
