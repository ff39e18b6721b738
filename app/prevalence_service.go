package app

import (
	"context"
	"time"

	"rxprev/adapters/stats/engine"
	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal"
	"rxprev/internal/analysis"
	"rxprev/internal/errors"
	"rxprev/ports"
)

// PrevalenceService builds naive vs treated prevalence reports
type PrevalenceService struct {
	evaluator *engine.Evaluator
	runs      ports.RunRepository
	logger    *internal.Logger
}

// ReportRequest defines the inputs of one report
type ReportRequest struct {
	Gene   string
	Layout prevalence.Layout
	Batch  *prevalence.Batch
}

// ReportResult is a finalized report
type ReportResult struct {
	Run       *prevalence.Run
	Summary   analysis.Summary
	Aggregate AggregateStats
	RuntimeMs int64
}

// NewPrevalenceService creates the service. runs may be nil, in which case
// reports are not persisted.
func NewPrevalenceService(evaluator *engine.Evaluator, runs ports.RunRepository, logger *internal.Logger) *PrevalenceService {
	return &PrevalenceService{
		evaluator: evaluator,
		runs:      runs,
		logger:    logger,
	}
}

// BuildReport filters the batch to the gene, aggregates every observation,
// and only then evaluates each row. A gene without observations gives an
// empty report.
func (s *PrevalenceService) BuildReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Batch == nil {
		return nil, errors.InvalidInput("no observations supplied", nil)
	}
	startTime := time.Now()

	agg := NewAggregator(req.Layout, s.logger)
	matched := agg.AddAll(FilterByGene(req.Batch.Observations, req.Gene))
	s.logger.Info("gene %s: %d of %d observations matched, %d rows", req.Gene, matched, len(req.Batch.Observations), agg.Len())

	rows := agg.Rows()
	for _, r := range rows {
		r.Finalize(s.evaluator.Evaluate(r))
	}

	run := &prevalence.Run{
		ID:          core.NewRunID(),
		Gene:        req.Gene,
		Test:        s.evaluator.TestName(),
		Layout:      req.Layout,
		Source:      req.Batch.Source,
		Fingerprint: req.Batch.Fingerprint,
		CreatedAt:   core.Now(),
		Rows:        rows,
	}
	summary := analysis.Summarize(rows, prevalence.SignificanceLevel)
	s.logger.Info("run %s: %s", run.ID, summary)

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			return nil, errors.Wrapf(err, "failed to save run %s", run.ID)
		}
		s.logger.Debug("run %s saved", run.ID)
	}

	return &ReportResult{
		Run:       run,
		Summary:   summary,
		Aggregate: agg.Stats(),
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}

// Emit renders the run and hands it to the writer.
func (s *PrevalenceService) Emit(result *ReportResult, w ports.ReportWriter) error {
	if err := w.WriteReport(result.Run.Table()); err != nil {
		return errors.IOError("failed to write report", err)
	}
	return nil
}

// GetRun loads a stored run.
func (s *PrevalenceService) GetRun(ctx context.Context, id core.RunID) (*prevalence.Run, error) {
	if s.runs == nil {
		return nil, errors.ConfigInvalid("run storage is not configured")
	}
	return s.runs.GetRun(ctx, id)
}

// ListRuns lists stored runs, newest first.
func (s *PrevalenceService) ListRuns(ctx context.Context, gene string, limit int) ([]prevalence.RunInfo, error) {
	if s.runs == nil {
		return nil, errors.ConfigInvalid("run storage is not configured")
	}
	return s.runs.ListRuns(ctx, gene, limit)
}
