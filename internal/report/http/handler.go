package reporthttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/misa-sim/misa-sim/internal/dataset"
	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/observability"
	"github.com/misa-sim/misa-sim/internal/platform/httpx"
	"github.com/misa-sim/misa-sim/internal/report"
	"github.com/misa-sim/misa-sim/internal/report/export"
)

// Handler serves the generated gallery, chart SVGs and CSV exports.
type Handler struct {
	logger   *slog.Logger
	cache    *report.Cache
	metrics  *observability.Metrics
	chart    *ledger.Chart
	scenario dataset.Scenario
	asOf     time.Time

	mu      sync.Mutex
	bundles map[int64]*report.Bundle
}

// NewHandler wires the report endpoints. Cache and metrics may be nil.
func NewHandler(logger *slog.Logger, cache *report.Cache, metrics *observability.Metrics, chart *ledger.Chart, sc dataset.Scenario, asOf time.Time) *Handler {
	return &Handler{
		logger:   logger,
		cache:    cache,
		metrics:  metrics,
		chart:    chart,
		scenario: sc,
		asOf:     asOf,
		bundles:  map[int64]*report.Bundle{},
	}
}

// MountRoutes attaches the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.gallery)
	r.Get("/charts/{slug}.svg", h.chartSVG)
	r.Get("/export/{name}.csv", h.exportCSV)
	r.Get("/bundle.zip", h.bundleZip)
}

// seedFrom picks the run seed, allowing a ?seed= override per request.
func (h *Handler) seedFrom(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("seed")
	if raw == "" {
		return h.scenario.Seed, nil
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seed == 0 {
		return 0, fmt.Errorf("%w: seed %q", httpx.ErrValidation, raw)
	}
	return seed, nil
}

func (h *Handler) bundle(seed int64) (*report.Bundle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.bundles[seed]; ok {
		return b, nil
	}

	sc := h.scenario
	sc.Seed = seed
	gen := dataset.NewGenerator(h.chart, rand.New(rand.NewSource(seed)))
	ds, err := gen.Generate(sc)
	if err != nil {
		h.metrics.ObserveDatasetBuild(err)
		return nil, err
	}
	h.metrics.ObserveDatasetBuild(nil)

	start := time.Now()
	b, err := report.NewBuilder(h.asOf).Build(ds)
	if err != nil {
		return nil, err
	}
	h.metrics.ObserveRender(time.Since(start))
	h.bundles[seed] = b
	return b, nil
}

func (h *Handler) cached(ctx context.Context, kind string, seed int64, loader func(*report.Bundle) ([]byte, error)) ([]byte, error) {
	return h.cache.FetchBytes(ctx, report.Key(kind, seed, h.asOf), func(ctx context.Context) ([]byte, error) {
		b, err := h.bundle(seed)
		if err != nil {
			return nil, err
		}
		return loader(b)
	})
}

func (h *Handler) gallery(w http.ResponseWriter, r *http.Request) {
	seed, err := h.seedFrom(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, err := h.cached(r.Context(), "html", seed, func(b *report.Bundle) ([]byte, error) {
		return b.RenderHTML()
	})
	if err != nil {
		h.logger.Error("render gallery", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (h *Handler) chartSVG(w http.ResponseWriter, r *http.Request) {
	seed, err := h.seedFrom(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	slug := chi.URLParam(r, "slug")
	data, err := h.cached(r.Context(), "chart:"+slug, seed, func(b *report.Bundle) ([]byte, error) {
		for _, c := range b.Charts {
			if c.Slug == slug {
				return []byte(c.SVG), nil
			}
		}
		return nil, fmt.Errorf("%w: chart %s", httpx.ErrNotFound, slug)
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	seed, err := h.seedFrom(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	data, err := h.cached(r.Context(), "csv:"+name, seed, func(b *report.Bundle) ([]byte, error) {
		var buf bytes.Buffer
		switch name {
		case "kpi":
			err = export.WriteKPICSV(&buf, b.KPI)
		case "trial_balance":
			err = export.WriteTrialBalanceCSV(&buf, b.TrialBalance)
		case "ar_aging":
			err = export.WriteAgingCSV(&buf, b.ARAging)
		case "ap_aging":
			err = export.WriteAgingCSV(&buf, b.APAging)
		case "vat":
			err = export.WriteVATCSV(&buf, b.VAT)
		case "journal":
			err = export.WriteJournalCSV(&buf, b.Journal)
		default:
			return nil, fmt.Errorf("%w: export %s", httpx.ErrNotFound, name)
		}
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
	_, _ = w.Write(data)
}

func (h *Handler) bundleZip(w http.ResponseWriter, r *http.Request) {
	seed, err := h.seedFrom(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data, err := h.cached(r.Context(), "zip", seed, func(b *report.Bundle) ([]byte, error) {
		var buf bytes.Buffer
		if err := b.WriteZip(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		h.logger.Error("build bundle zip", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=misa_bundle.zip")
	_, _ = w.Write(data)
}
