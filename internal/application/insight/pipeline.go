// Package insight orchestrates the full analysis pipeline: dataset build,
// citation fetch, geographic enrichment, quality scoring, persistence and
// export.
package insight

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"

	"github.com/patlytics/patscope/internal/application/export"
	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/domain/quality"
	"github.com/patlytics/patscope/internal/domain/run"
	rediscache "github.com/patlytics/patscope/internal/infrastructure/database/redis"
	"github.com/patlytics/patscope/internal/infrastructure/messaging/kafka"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/prometheus"
	"github.com/patlytics/patscope/pkg/errors"
)

// pipelineStages is the stage count driven through the progress bar.
const pipelineStages = 5

// EventPublisher is the slice of the kafka producer the pipeline uses.
type EventPublisher interface {
	PublishRunEvent(ctx context.Context, event kafka.RunEvent) error
}

// Archiver is the slice of the object-storage archive the pipeline uses.
type Archiver interface {
	StoreRunArtifacts(ctx context.Context, runID string, paths []string) error
}

// Exporter is the slice of the export layer the pipeline uses.
type Exporter interface {
	Export(report *export.Report) ([]string, error)
}

// Deps wires a Pipeline.  Builder, Fetcher and Enricher are required; all
// other collaborators are optional and skipped when nil.
type Deps struct {
	Builder    *dataset.Builder
	Fetcher    *citation.Fetcher
	Enricher   *geography.Enricher
	Thresholds quality.Thresholds

	Runs     run.Repository
	Cache    rediscache.Cache
	Events   EventPublisher
	Archive  Archiver
	Exporter Exporter
	Metrics  *prometheus.AppMetrics

	Logger logging.Logger

	// Progress draws a terminal progress bar across the pipeline stages.
	Progress bool
}

// Pipeline executes one analysis run end to end.
type Pipeline struct {
	deps   Deps
	logger logging.Logger
}

// NewPipeline validates the dependency set.
func NewPipeline(deps Deps) (*Pipeline, error) {
	if deps.Builder == nil || deps.Fetcher == nil || deps.Enricher == nil {
		return nil, errors.New(errors.CodeInvalidParam,
			"pipeline requires builder, fetcher and enricher")
	}
	if deps.Thresholds.IsZero() {
		deps.Thresholds = quality.DefaultThresholds()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &Pipeline{deps: deps, logger: deps.Logger.Named("pipeline")}, nil
}

// Run executes the pipeline for the given filter and combine mode.
//
// Empty intermediate results degrade instead of failing: an empty dataset
// short-circuits the citation and geography stages and scores 0.  Run
// persistence failures abort the run; export, archive and event-publish
// failures are logged and do not.
func (p *Pipeline) Run(ctx context.Context, filter dataset.Filter, mode dataset.CombineMode) (*export.Report, error) {
	rec := &run.Record{
		ID:            uuid.New(),
		Status:        run.StatusRunning,
		StartedAt:     time.Now().UTC(),
		Keywords:      filter.Keywords,
		ClassPrefixes: filter.ClassPrefixes,
		Combine:       string(mode),
		YearFrom:      filter.YearFrom,
		YearTo:        filter.YearTo,
	}

	if p.deps.Runs != nil {
		if err := p.deps.Runs.Create(ctx, rec); err != nil {
			return nil, err
		}
	}

	p.logger.Info("run started",
		logging.String("run_id", rec.ID.String()),
		logging.String("mode", string(mode)),
		logging.Int("keywords", len(filter.Keywords)),
		logging.Int("class_prefixes", len(filter.ClassPrefixes)),
	)

	var bar *pb.ProgressBar
	if p.deps.Progress {
		bar = pb.StartNew(pipelineStages)
		defer bar.Finish()
	}
	step := func() {
		if bar != nil {
			bar.Increment()
		}
	}

	report, err := p.execute(ctx, filter, mode, rec, step)
	if err != nil {
		p.fail(ctx, rec, err)
		return nil, err
	}
	return report, nil
}

func (p *Pipeline) execute(ctx context.Context, filter dataset.Filter, mode dataset.CombineMode, rec *run.Record, step func()) (*export.Report, error) {
	// Stage 1: dataset.
	ds, err := p.buildDataset(ctx, filter, mode)
	if err != nil {
		return nil, err
	}
	step()

	// Stages 2–3: citations and geography, skipped for an empty dataset.
	cites := &citation.Set{}
	geo := &geography.Summary{}
	if ds.IsEmpty() {
		p.logger.Warn("dataset is empty, skipping citation and geography stages",
			logging.String("run_id", rec.ID.String()))
		step()
		step()
	} else {
		ids := ds.ApplnIDs()

		cites, err = stageTimer(p, "citations", func() (*citation.Set, error) {
			return p.deps.Fetcher.Fetch(ctx, ids)
		})
		if err != nil {
			return nil, err
		}
		step()

		geo, err = stageTimer(p, "geography", func() (*geography.Summary, error) {
			return p.deps.Enricher.Enrich(ctx, ids)
		})
		if err != nil {
			return nil, err
		}
		step()
	}

	// Stage 4: score.
	counts := quality.Counts{
		Applications: ds.Size(),
		Citations:    cites.Total(),
		Countries:    geo.DistinctCountries(),
		Families:     ds.FamilyCount(),
	}
	score, err := quality.Score(counts, p.deps.Thresholds)
	if err != nil {
		return nil, err
	}
	step()

	now := time.Now().UTC()
	rec.Status = run.StatusCompleted
	rec.FinishedAt = &now
	rec.Counts = counts
	rec.Score = score.Total

	if p.deps.Runs != nil {
		if err := p.deps.Runs.Finish(ctx, rec); err != nil {
			return nil, err
		}
	}

	report := &export.Report{
		Run:       rec,
		Dataset:   ds,
		Citations: cites,
		Geo:       geo,
		Score:     &score,
	}

	// Stage 5: artifacts and notifications, all best-effort.
	p.finish(ctx, report)
	step()

	if p.deps.Metrics != nil {
		p.deps.Metrics.PipelineRunsTotal.WithLabelValues(string(run.StatusCompleted)).Inc()
		p.deps.Metrics.DatasetApplications.WithLabelValues(string(mode)).Set(float64(counts.Applications))
		p.deps.Metrics.QualityScore.WithLabelValues(string(mode)).Set(float64(score.Total))
	}

	p.logger.Info("run completed",
		logging.String("run_id", rec.ID.String()),
		logging.Int64("applications", counts.Applications),
		logging.Int64("citations", counts.Citations),
		logging.Int64("countries", counts.Countries),
		logging.Int64("families", counts.Families),
		logging.Int("score", score.Total),
		logging.Duration("elapsed", rec.Duration()),
	)
	return report, nil
}

// buildDataset runs the dataset stage, through the query cache when one is
// configured.  The cache key covers every filter field, so two runs hit the
// same entry only when their queries are identical.
func (p *Pipeline) buildDataset(ctx context.Context, filter dataset.Filter, mode dataset.CombineMode) (*dataset.Dataset, error) {
	build := func() (*dataset.Dataset, error) {
		return stageTimer(p, "dataset", func() (*dataset.Dataset, error) {
			return p.deps.Builder.Build(ctx, filter, mode)
		})
	}

	if p.deps.Cache == nil {
		return build()
	}

	key := datasetCacheKey(filter, mode)
	ds := &dataset.Dataset{}
	missed := false
	err := p.deps.Cache.GetOrSet(ctx, key, ds, 0, func(ctx context.Context) (interface{}, error) {
		missed = true
		return build()
	})
	if err != nil {
		return nil, err
	}
	if p.deps.Metrics != nil {
		if missed {
			p.deps.Metrics.CacheMissesTotal.WithLabelValues("dataset").Inc()
		} else {
			p.deps.Metrics.CacheHitsTotal.WithLabelValues("dataset").Inc()
		}
	}
	return ds, nil
}

// stageTimer times one pipeline stage and feeds the duration metric.
func stageTimer[T any](p *Pipeline, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveStage(name, time.Since(start))
	}
	return out, err
}

// finish exports artifacts, archives them and publishes the completion
// event.  None of these can fail the run; the database already holds the
// result.
func (p *Pipeline) finish(ctx context.Context, report *export.Report) {
	runID := report.Run.ID.String()

	var paths []string
	if p.deps.Exporter != nil {
		var err error
		paths, err = p.deps.Exporter.Export(report)
		if err != nil {
			p.logger.Error("export failed", logging.String("run_id", runID), logging.Err(err))
		} else if p.deps.Metrics != nil {
			for _, path := range paths {
				format := strings.TrimPrefix(filepath.Ext(path), ".")
				p.deps.Metrics.ExportArtifactsTotal.WithLabelValues(format).Inc()
			}
		}
	}

	if p.deps.Archive != nil && len(paths) > 0 {
		if err := p.deps.Archive.StoreRunArtifacts(ctx, runID, paths); err != nil {
			p.logger.Error("artifact archive failed", logging.String("run_id", runID), logging.Err(err))
		}
	}

	if p.deps.Events != nil {
		event := kafka.RunEvent{
			Type:       kafka.EventRunCompleted,
			RunID:      runID,
			OccurredAt: *report.Run.FinishedAt,
			Counts:     report.Run.Counts,
			Score:      report.Run.Score,
		}
		if err := p.deps.Events.PublishRunEvent(ctx, event); err != nil {
			p.logger.Error("run event publish failed", logging.String("run_id", runID), logging.Err(err))
		}
	}
}

// fail records the terminal failure state, best-effort.
func (p *Pipeline) fail(ctx context.Context, rec *run.Record, cause error) {
	now := time.Now().UTC()
	rec.Status = run.StatusFailed
	rec.FinishedAt = &now
	rec.Error = cause.Error()

	if p.deps.Runs != nil {
		if err := p.deps.Runs.Finish(ctx, rec); err != nil {
			p.logger.Error("failed to record run failure",
				logging.String("run_id", rec.ID.String()), logging.Err(err))
		}
	}
	if p.deps.Events != nil {
		event := kafka.RunEvent{
			Type:       kafka.EventRunFailed,
			RunID:      rec.ID.String(),
			OccurredAt: now,
			Error:      rec.Error,
		}
		if err := p.deps.Events.PublishRunEvent(ctx, event); err != nil {
			p.logger.Error("run event publish failed",
				logging.String("run_id", rec.ID.String()), logging.Err(err))
		}
	}
	if p.deps.Metrics != nil {
		p.deps.Metrics.PipelineRunsTotal.WithLabelValues(string(run.StatusFailed)).Inc()
	}

	p.logger.Error("run failed",
		logging.String("run_id", rec.ID.String()),
		logging.Err(cause),
	)
}

// datasetCacheKey derives a stable cache key from the full filter.
func datasetCacheKey(filter dataset.Filter, mode dataset.CombineMode) string {
	payload, _ := json.Marshal(struct {
		dataset.Filter
		Mode dataset.CombineMode
	}{filter, mode})
	return fmt.Sprintf("dataset:%x", sha256.Sum256(payload))
}
