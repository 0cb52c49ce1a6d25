// Package analysis sequences the risk pipeline: parse objects, map them
// onto the app catalog, detect overlaps with prior changes, score, and
// persist the resulting snapshot. This is the component UI and export
// layers call.
package analysis

import (
	"errors"
	"fmt"

	"trisk/internal/catalog"
	"trisk/internal/findings"
	"trisk/internal/history"
	"trisk/internal/logging"
	"trisk/internal/match"
	"trisk/internal/objects"
	"trisk/internal/scoring"
)

// ErrNoObjects signals that the input yielded no parseable objects.
// Callers distinguish this from real failures: there is nothing to score,
// and nothing is persisted.
var ErrNoObjects = errors.New("no objects found in input")

// Request describes one analysis run.
type Request struct {
	ChangeID string
	Input    []byte
	// Format selects the input parser; FormatAuto sniffs.
	Format objects.Format
	// WindowDays is the overlap lookback window.
	WindowDays int
}

// Analyzer orchestrates one analysis run end to end.
type Analyzer struct {
	store   history.Store
	catalog *catalog.Catalog
	scorer  *scoring.Scorer
	logger  *logging.Logger
}

// New creates an Analyzer. The catalog is an explicit value, loaded once by
// the caller; there is no ambient configuration state.
func New(store history.Store, cat *catalog.Catalog, weights scoring.Weights, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.Nop()
	}
	if cat == nil {
		cat = catalog.Empty()
	}
	return &Analyzer{
		store:   store,
		catalog: cat,
		scorer:  scoring.NewScorer(weights),
		logger:  logger,
	}
}

// Run executes the pipeline and returns the persisted Findings.
//
// Parsing, mapping and overlap failures are absorbed where they occur
// (best effort, degrade gracefully); only unexpected failures escape, and
// those are caught here so the caller always sees a single error and no
// partial snapshot is persisted.
func (a *Analyzer) Run(req Request) (f *findings.Findings, err error) {
	defer func() {
		if r := recover(); r != nil {
			f = nil
			err = fmt.Errorf("analysis failed unexpectedly: %v", r)
			a.logger.Error("Analysis panicked", map[string]interface{}{
				"change_id": req.ChangeID,
				"panic":     fmt.Sprintf("%v", r),
			})
		}
	}()

	if req.ChangeID == "" {
		return nil, errors.New("change id is required")
	}

	objs := objects.Parse(req.Input, req.Format)
	if len(objs) == 0 {
		return nil, ErrNoObjects
	}
	a.logger.Debug("Objects parsed", map[string]interface{}{
		"change_id": req.ChangeID,
		"objects":   len(objs),
	})

	apps := match.Map(objs, a.catalog)

	overlaps, overlapErr := a.store.FindOverlaps(req.ChangeID, objs, req.WindowDays)
	if overlapErr != nil {
		// Overlap detection is advisory; score without it rather than
		// failing the whole run.
		a.logger.Warn("Overlap detection failed, continuing without overlaps", map[string]interface{}{
			"change_id": req.ChangeID,
			"error":     overlapErr.Error(),
		})
		overlaps = []findings.OverlapRecord{}
	}

	f = a.scorer.Score(req.ChangeID, objs, apps, overlaps)
	if overlapErr != nil {
		f.Notes = append(f.Notes, "overlap detection unavailable for this run")
	}

	if err := a.store.Save(req.ChangeID, f); err != nil {
		return nil, fmt.Errorf("failed to persist findings: %w", err)
	}

	a.logger.Info("Analysis complete", map[string]interface{}{
		"change_id":  req.ChangeID,
		"objects":    f.Summary.ObjectsTotal,
		"apps":       f.Summary.AppsImpacted,
		"overlaps":   f.Summary.OverlapsFound,
		"risk_score": f.Summary.RiskScore,
		"risk_level": f.Summary.RiskLevel,
	})
	return f, nil
}
