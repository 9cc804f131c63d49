package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/misa-sim/misa-sim/internal/dataset"
	jobmetrics "github.com/misa-sim/misa-sim/internal/jobs"
	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/report"
)

// ReportRenderJob builds the full report bundle for a seed and writes
// the zip archive to disk.
type ReportRenderJob struct {
	Chart     *ledger.Chart
	Scenario  dataset.Scenario
	AsOf      time.Time
	OutputDir string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewReportRenderJob initialises the render handler.
func NewReportRenderJob(chart *ledger.Chart, sc dataset.Scenario, asOf time.Time, outputDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportRenderJob {
	return &ReportRenderJob{
		Chart:     chart,
		Scenario:  sc,
		AsOf:      asOf,
		OutputDir: outputDir,
		Logger:    logger,
		Metrics:   metrics,
	}
}

// Handle executes the render.
func (j *ReportRenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("report render: handler not configured")
	}
	var payload ReportRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	sc := j.Scenario
	if payload.Seed != 0 {
		sc.Seed = payload.Seed
	}
	outDir := j.OutputDir
	if payload.OutputDir != "" {
		outDir = payload.OutputDir
	}

	tracker := j.metrics().Track(TaskReportRender)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("seed", sc.Seed), slog.String("output_dir", outDir))
	logger.Info("starting report render")
	start := time.Now()

	gen := dataset.NewGenerator(j.Chart, rand.New(rand.NewSource(sc.Seed)))
	ds, err := gen.Generate(sc)
	if err != nil {
		resultErr = err
		return resultErr
	}
	bundle, err := report.NewBuilder(j.AsOf).Build(ds)
	if err != nil {
		resultErr = err
		logger.Error("build bundle", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddProblems(TaskReportRender, len(bundle.Problems))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		resultErr = err
		return resultErr
	}
	path := filepath.Join(outDir, fmt.Sprintf("misa_bundle_%d.zip", sc.Seed))
	f, err := os.Create(path)
	if err != nil {
		resultErr = err
		return resultErr
	}
	defer f.Close()
	if err := bundle.WriteZip(f); err != nil {
		resultErr = err
		logger.Error("write bundle", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed report render",
		slog.String("path", path),
		slog.Int("charts", len(bundle.Charts)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *ReportRenderJob) metrics() *jobmetrics.Metrics {
	if j == nil {
		return nil
	}
	return j.Metrics
}

func (j *ReportRenderJob) logger() *slog.Logger {
	if j == nil || j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
