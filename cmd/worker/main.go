package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/misa-sim/misa-sim/internal/app"
	"github.com/misa-sim/misa-sim/internal/dataset"
	jobmetrics "github.com/misa-sim/misa-sim/internal/jobs"
	"github.com/misa-sim/misa-sim/internal/ledger"
	platformcache "github.com/misa-sim/misa-sim/internal/platform/cache"
	"github.com/misa-sim/misa-sim/internal/platform/db"
	"github.com/misa-sim/misa-sim/internal/report"
	"github.com/misa-sim/misa-sim/internal/sink"
	"github.com/misa-sim/misa-sim/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	start, end, asOf, err := cfg.Window()
	if err != nil {
		logger.Error("parse window", slog.Any("error", err))
		os.Exit(1)
	}
	sc := dataset.DefaultScenario(cfg.Seed)
	sc.Start = start
	sc.End = end
	chart := ledger.DefaultChart()
	metrics := jobmetrics.NewMetrics(nil)

	var reportCache *report.Cache
	if redisClient, err := platformcache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis cache unavailable", slog.Any("error", err))
	} else {
		defer redisClient.Close()
		reportCache = report.NewCache(redisClient, cfg.CacheTTL)
	}

	handlers := []jobs.TaskHandler{}
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		refreshJob := jobs.NewDatasetRefreshJob(sink.NewPostgres(pool, logger), reportCache, chart, sc, logger, metrics)
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskDatasetRefresh, Handler: refreshJob.Handle})
	} else {
		logger.Warn("PG_DSN not set, dataset refresh jobs disabled")
	}

	renderJob := jobs.NewReportRenderJob(chart, sc, asOf, cfg.OutputDir, logger, metrics)
	handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskReportRender, Handler: renderJob.Handle})

	renderTask, err := jobs.NewReportRenderTask(cfg.Seed, cfg.OutputDir)
	if err != nil {
		logger.Error("build render task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  handlers,
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: renderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
