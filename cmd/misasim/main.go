package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/misa-sim/misa-sim/internal/app"
	"github.com/misa-sim/misa-sim/internal/dataset"
	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/observability"
	platformcache "github.com/misa-sim/misa-sim/internal/platform/cache"
	"github.com/misa-sim/misa-sim/internal/platform/db"
	"github.com/misa-sim/misa-sim/internal/report"
	"github.com/misa-sim/misa-sim/internal/report/export"
	reporthttp "github.com/misa-sim/misa-sim/internal/report/http"
	"github.com/misa-sim/misa-sim/internal/sink"
	"github.com/misa-sim/misa-sim/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	mode := "generate"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "generate":
		err = runGenerate(ctx, cfg, logger)
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "enqueue":
		task := "render"
		if len(os.Args) > 2 {
			task = os.Args[2]
		}
		err = runEnqueue(ctx, cfg, logger, task)
	default:
		err = fmt.Errorf("unknown mode %q (want generate, serve or enqueue)", mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run", slog.String("mode", mode), slog.Any("error", err))
		os.Exit(1)
	}
}

// scenarioFrom builds the generation scenario from configuration.
func scenarioFrom(cfg *app.Config) (dataset.Scenario, time.Time, error) {
	start, end, asOf, err := cfg.Window()
	if err != nil {
		return dataset.Scenario{}, time.Time{}, err
	}
	sc := dataset.DefaultScenario(cfg.Seed)
	sc.Start = start
	sc.End = end
	return sc, asOf, nil
}

func runGenerate(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	sc, asOf, err := scenarioFrom(cfg)
	if err != nil {
		return err
	}

	chart := ledger.DefaultChart()
	gen := dataset.NewGenerator(chart, rand.New(rand.NewSource(sc.Seed)))
	ds, err := gen.Generate(sc)
	if err != nil {
		return err
	}
	logger.Info("generated dataset",
		slog.String("run_id", ds.RunID.String()),
		slog.Int64("seed", sc.Seed),
		slog.Int("documents", len(ds.Documents)),
		slog.Int("settlements", len(ds.Settlements)),
	)

	bundle, err := report.NewBuilder(asOf).Build(ds)
	if err != nil {
		return err
	}
	for _, p := range bundle.Problems {
		logger.Warn("derivation problem", slog.String("ref", p.Ref), slog.Any("error", p.Err))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}
	zipPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("misa_bundle_%d.zip", sc.Seed))
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	if err := bundle.WriteZip(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := writeCSVs(cfg.OutputDir, bundle); err != nil {
		return err
	}
	logger.Info("wrote report bundle", slog.String("path", zipPath), slog.Int("charts", len(bundle.Charts)))

	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := sink.NewPostgres(pool, logger)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		tb, _ := ledger.TrialBalance(bundle.Journal)
		if err := pg.Export(ctx, ds, bundle.Journal, tb); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVs(dir string, bundle *report.Bundle) error {
	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"kpi.csv", func(f *os.File) error { return export.WriteKPICSV(f, bundle.KPI) }},
		{"trial_balance.csv", func(f *os.File) error { return export.WriteTrialBalanceCSV(f, bundle.TrialBalance) }},
		{"ar_aging.csv", func(f *os.File) error { return export.WriteAgingCSV(f, bundle.ARAging) }},
		{"ap_aging.csv", func(f *os.File) error { return export.WriteAgingCSV(f, bundle.APAging) }},
		{"vat.csv", func(f *os.File) error { return export.WriteVATCSV(f, bundle.VAT) }},
		{"journal.csv", func(f *os.File) error { return export.WriteJournalCSV(f, bundle.Journal) }},
	}
	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name))
		if err != nil {
			return err
		}
		if err := w.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// runEnqueue pushes a background task onto the worker queue.
func runEnqueue(ctx context.Context, cfg *app.Config, logger *slog.Logger, task string) error {
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		return err
	}
	defer client.Close()

	var info *asynq.TaskInfo
	switch task {
	case "refresh":
		info, err = client.EnqueueDatasetRefresh(ctx, cfg.Seed)
	case "render":
		info, err = client.EnqueueReportRender(ctx, cfg.Seed, cfg.OutputDir)
	default:
		return fmt.Errorf("unknown task %q (want refresh or render)", task)
	}
	if err != nil {
		return err
	}
	logger.Info("enqueued task", slog.String("id", info.ID), slog.String("type", info.Type))
	return nil
}

func runServe(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	sc, asOf, err := scenarioFrom(cfg)
	if err != nil {
		return err
	}

	var reportCache *report.Cache
	if redisClient, err := platformcache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, serving uncached", slog.Any("error", err))
	} else {
		defer redisClient.Close()
		reportCache = report.NewCache(redisClient, cfg.CacheTTL)
	}

	metrics := observability.NewMetrics()
	handler := reporthttp.NewHandler(logger, reportCache, metrics, ledger.DefaultChart(), sc, asOf)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		ReportHandler: handler,
		Metrics:       metrics,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
