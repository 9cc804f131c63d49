package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"

	"github.com/misa-sim/misa-sim/internal/dataset"
	jobmetrics "github.com/misa-sim/misa-sim/internal/jobs"
	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/report"
	"github.com/misa-sim/misa-sim/internal/sink"
)

// DatasetRefreshJob regenerates a run, derives its statements and loads
// everything into the PostgreSQL sink.
type DatasetRefreshJob struct {
	Sink     *sink.Postgres
	Cache    *report.Cache
	Chart    *ledger.Chart
	Scenario dataset.Scenario
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewDatasetRefreshJob initialises the refresh handler.
func NewDatasetRefreshJob(s *sink.Postgres, cache *report.Cache, chart *ledger.Chart, sc dataset.Scenario, logger *slog.Logger, metrics *jobmetrics.Metrics) *DatasetRefreshJob {
	return &DatasetRefreshJob{
		Sink:     s,
		Cache:    cache,
		Chart:    chart,
		Scenario: sc,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// Handle executes the refresh.
func (j *DatasetRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sink == nil {
		return errors.New("dataset refresh: handler not configured")
	}
	var payload DatasetRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	sc := j.Scenario
	if payload.Seed != 0 {
		sc.Seed = payload.Seed
	}

	tracker := j.metrics().Track(TaskDatasetRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("seed", sc.Seed))
	logger.Info("starting dataset refresh")
	start := time.Now()

	gen := dataset.NewGenerator(j.Chart, rand.New(rand.NewSource(sc.Seed)))
	ds, err := gen.Generate(sc)
	if err != nil {
		resultErr = err
		logger.Error("generate dataset", slog.Any("error", err))
		return resultErr
	}

	poster := ledger.NewPoster(ds.Chart, ds.ItemCosts())
	journal, problems := ledger.Build(poster, ledger.BuildInput{
		Documents:     ds.Documents,
		Settlements:   ds.Settlements,
		Payrolls:      ds.Payrolls,
		Depreciations: ds.Depreciations,
	})
	tb, tbProblems := ledger.TrialBalance(journal)
	problems = append(problems, tbProblems...)
	j.metrics().AddProblems(TaskDatasetRefresh, len(problems))

	if err := j.Sink.Migrate(ctx); err != nil {
		resultErr = err
		return resultErr
	}
	if err := j.Sink.Export(ctx, ds, journal, tb); err != nil {
		resultErr = err
		logger.Error("export run", slog.Any("error", err))
		return resultErr
	}
	if err := j.Cache.Invalidate(ctx, sc.Seed); err != nil {
		logger.Warn("invalidate cache", slog.Any("error", err))
	}

	logger.Info("completed dataset refresh",
		slog.Int("documents", len(ds.Documents)),
		slog.Int("journal_entries", len(journal.Entries)),
		slog.Int("problems", len(problems)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *DatasetRefreshJob) metrics() *jobmetrics.Metrics {
	if j == nil {
		return nil
	}
	return j.Metrics
}

func (j *DatasetRefreshJob) logger() *slog.Logger {
	if j == nil || j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
