package report

import (
	"archive/zip"
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/misa-sim/misa-sim/internal/dataset"
	"github.com/misa-sim/misa-sim/internal/ledger"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	sc := dataset.DefaultScenario(7)
	sc.End = time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)
	gen := dataset.NewGenerator(ledger.DefaultChart(), rand.New(rand.NewSource(sc.Seed)))
	ds, err := gen.Generate(sc)
	require.NoError(t, err)
	return ds
}

func TestBuildBundleRendersAllCharts(t *testing.T) {
	ds := testDataset(t)
	asOf := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

	bundle, err := NewBuilder(asOf).Build(ds)
	require.NoError(t, err)
	require.Len(t, bundle.Charts, 13)
	require.Empty(t, bundle.Problems)
	require.NotEmpty(t, bundle.KPI)
	require.NotEmpty(t, bundle.TrialBalance)
	require.NotEmpty(t, bundle.VAT)

	slugs := map[string]bool{}
	for _, chart := range bundle.Charts {
		require.True(t, strings.HasPrefix(string(chart.SVG), "<svg"), "chart %s must render svg", chart.Slug)
		slugs[chart.Slug] = true
	}
	require.True(t, slugs["08_vat_output_input_payable"])
	require.True(t, slugs["13_trial_balance_top_net"])
}

func TestBuildBundleRequiresAsOf(t *testing.T) {
	_, err := NewBuilder(time.Time{}).Build(testDataset(t))
	require.Error(t, err)
}

func TestRenderHTMLGallery(t *testing.T) {
	ds := testDataset(t)
	bundle, err := NewBuilder(time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)).Build(ds)
	require.NoError(t, err)

	html, err := bundle.RenderHTML()
	require.NoError(t, err)
	page := string(html)
	require.Contains(t, page, "MISA Runtime Visualization")
	require.Contains(t, page, bundle.RunID)
	require.Equal(t, 13, strings.Count(page, "<svg"))
}

func TestWriteZipBundleLayout(t *testing.T) {
	ds := testDataset(t)
	bundle, err := NewBuilder(time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)).Build(ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, bundle.WriteZip(&buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	require.True(t, names["gallery.html"])
	require.True(t, names["misa_visuals/01_sales_gross_by_month.svg"])
	require.Len(t, zr.File, 14) // gallery + 13 charts
}

func TestBundleSurvivesFaultedRows(t *testing.T) {
	ds := testDataset(t)
	// Corrupt one document header; the bundle must still build and
	// report the fault.
	ds.Documents[0].GrossAmount += 10_000_000

	bundle, err := NewBuilder(time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)).Build(ds)
	require.NoError(t, err)
	require.NotEmpty(t, bundle.Problems)
	require.Positive(t, bundle.Problems.Count(ledger.ErrPostingImbalance))
	require.NotEmpty(t, bundle.TrialBalance, "remaining documents must still aggregate")
}
