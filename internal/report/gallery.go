package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/misa-sim/misa-sim/internal/dataset"
	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/report/svg"
)

// Chart is one rendered gallery card.
type Chart struct {
	Slug  string
	Title string
	SVG   template.HTML
}

// Bundle is the full visualization output for one dataset: the KPI
// table, every chart, and the derived report tables the CSV export and
// the gallery page consume.
type Bundle struct {
	RunID        string
	AsOf         time.Time
	KPI          []KPIRow
	Charts       []Chart
	TrialBalance []ledger.TrialBalanceRow
	ARAging      []ledger.AgingRow
	APAging      []ledger.AgingRow
	VAT          []ledger.VATMonthlyRow
	Journal      ledger.Journal
	Problems     ledger.Problems
}

// Builder derives reports and renders the gallery from one dataset.
type Builder struct {
	asOf time.Time
}

// NewBuilder fixes the aging reference date for the run.
func NewBuilder(asOf time.Time) *Builder {
	return &Builder{asOf: asOf}
}

// Build runs the full derivation pipeline and renders all charts.
// Chart rendering is independent per chart and runs in parallel.
func (b *Builder) Build(ds *dataset.Dataset) (*Bundle, error) {
	if b.asOf.IsZero() {
		return nil, fmt.Errorf("report: as-of date required")
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
	vat, vatProblems := ledger.VATMonthly(ds.Documents)
	problems = append(problems, vatProblems...)
	arRows, arProblems := ledger.Aging(ds.Documents, ds.Settlements, ledger.AgingOptions{AsOf: b.asOf, Kind: ledger.KindSalesInvoice})
	problems = append(problems, arProblems...)
	apRows, apProblems := ledger.Aging(ds.Documents, ds.Settlements, ledger.AgingOptions{AsOf: b.asOf, Kind: ledger.KindPurchaseBill})
	problems = append(problems, apProblems...)

	bundle := &Bundle{
		RunID:        ds.RunID.String(),
		AsOf:         b.asOf,
		KPI:          BuildKPI(ds.Documents, vat),
		TrialBalance: tb,
		ARAging:      arRows,
		APAging:      apRows,
		VAT:          vat,
		Journal:      journal,
		Problems:     problems,
	}

	specs := chartSpecs(ds, bundle)
	bundle.Charts = make([]Chart, len(specs))
	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			svgMarkup, err := spec.render()
			if err != nil {
				return fmt.Errorf("report: chart %s: %w", spec.slug, err)
			}
			bundle.Charts[i] = Chart{Slug: spec.slug, Title: spec.title, SVG: svgMarkup}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

type chartSpec struct {
	slug   string
	title  string
	render func() (template.HTML, error)
}

// chartSpecs declares the thirteen gallery charts.
func chartSpecs(ds *dataset.Dataset, bundle *Bundle) []chartSpec {
	months := make([]string, len(bundle.KPI))
	sales := make([]float64, len(bundle.KPI))
	purch := make([]float64, len(bundle.KPI))
	counts := make([]float64, len(bundle.KPI))
	avg := make([]float64, len(bundle.KPI))
	for i, row := range bundle.KPI {
		months[i] = row.Month.String()
		sales[i] = float64(row.SalesGross)
		purch[i] = float64(row.PurchGross)
		counts[i] = float64(row.InvoiceCount)
		avg[i] = float64(row.AvgInvoice)
	}

	vatMonths := make([]string, len(bundle.VAT))
	vatOut := make([]float64, len(bundle.VAT))
	vatIn := make([]float64, len(bundle.VAT))
	vatPay := make([]float64, len(bundle.VAT))
	for i, row := range bundle.VAT {
		vatMonths[i] = row.Month.String()
		vatOut[i] = float64(row.Output)
		vatIn[i] = float64(row.Input)
		vatPay[i] = float64(row.Payable)
	}

	arLabels, arValues := bucketSeries(bundle.ARAging)
	apLabels, apValues := bucketSeries(bundle.APAging)
	glMonths, glDebit, glCredit := journalTotals(bundle.Journal)
	topAccounts := topAccountTurnover(bundle.TrialBalance, 20)
	topNet := topTrialBalanceNet(bundle.TrialBalance, ds.Chart, 20)
	topCustomers := topPartners(ds.SalesDocuments(), 10)
	topItems := topItemsNet(ds, 10)

	return []chartSpec{
		{slug: "01_sales_gross_by_month", title: "Doanh thu (Gross) theo tháng", render: func() (template.HTML, error) {
			return svg.Line(0, 0, sales, months, svg.Opts{Title: "Doanh thu (Gross) theo tháng", Description: "Tổng doanh thu gross theo tháng", ShowDots: true})
		}},
		{slug: "02_invoice_count_by_month", title: "Số lượng hóa đơn bán theo tháng", render: func() (template.HTML, error) {
			return svg.Bars(0, 0, [][]float64{counts}, months, svg.Opts{Title: "Số lượng hóa đơn bán theo tháng"})
		}},
		{slug: "03_avg_invoice_value", title: "Giá trị HĐ bán trung bình theo tháng", render: func() (template.HTML, error) {
			return svg.Line(0, 0, avg, months, svg.Opts{Title: "Giá trị HĐ bán trung bình theo tháng", ShowDots: true})
		}},
		{slug: "04_top_customers_by_revenue", title: "Top 10 khách hàng theo doanh thu", render: func() (template.HTML, error) {
			return svg.HBars(0, 0, topCustomers.values, topCustomers.labels, svg.Opts{Title: "Top 10 khách hàng theo doanh thu"})
		}},
		{slug: "05_top_items_by_revenue_net", title: "Top 10 mặt hàng theo doanh thu (Net)", render: func() (template.HTML, error) {
			return svg.HBars(0, 0, topItems.values, topItems.labels, svg.Opts{Title: "Top 10 mặt hàng theo doanh thu (Net)"})
		}},
		{slug: "06_purchases_gross_by_month", title: "Giá trị mua hàng (Gross) theo tháng", render: func() (template.HTML, error) {
			return svg.Bars(0, 0, [][]float64{purch}, months, svg.Opts{Title: "Giá trị mua hàng (Gross) theo tháng"})
		}},
		{slug: "07_sales_vs_purchases_gross", title: "So sánh Bán vs Mua theo tháng (Gross)", render: func() (template.HTML, error) {
			return svg.Bars(0, 0, [][]float64{sales, purch}, months, svg.Opts{Title: "So sánh Bán vs Mua theo tháng (Gross)", Legend: []string{"Bán", "Mua"}})
		}},
		{slug: "08_vat_output_input_payable", title: "VAT đầu ra/đầu vào & phải nộp theo tháng", render: func() (template.HTML, error) {
			return svg.Lines(0, 0, [][]float64{vatOut, vatIn, vatPay}, vatMonths, svg.Opts{Title: "VAT đầu ra/đầu vào & phải nộp theo tháng", Legend: []string{"Đầu ra", "Đầu vào", "Phải nộp"}, ShowDots: true})
		}},
		{slug: "09_ar_aging_buckets", title: "Tuổi nợ phải thu theo bucket", render: func() (template.HTML, error) {
			return svg.Bars(0, 0, [][]float64{arValues}, arLabels, svg.Opts{Title: "Tuổi nợ phải thu theo bucket"})
		}},
		{slug: "10_ap_aging_buckets", title: "Tuổi nợ phải trả theo bucket", render: func() (template.HTML, error) {
			return svg.Bars(0, 0, [][]float64{apValues}, apLabels, svg.Opts{Title: "Tuổi nợ phải trả theo bucket"})
		}},
		{slug: "11_gl_total_debit_credit", title: "Tổng phát sinh Nợ/Có theo tháng (GL)", render: func() (template.HTML, error) {
			return svg.Lines(0, 0, [][]float64{glDebit, glCredit}, glMonths, svg.Opts{Title: "Tổng phát sinh Nợ/Có theo tháng (GL)", Legend: []string{"Tổng Nợ", "Tổng Có"}, ShowDots: true})
		}},
		{slug: "12_gl_top_accounts_total_turnover", title: "Top 20 tài khoản theo tổng phát sinh", render: func() (template.HTML, error) {
			return svg.HBars(0, 0, topAccounts.values, topAccounts.labels, svg.Opts{Title: "Top 20 tài khoản theo tổng phát sinh"})
		}},
		{slug: "13_trial_balance_top_net", title: "Trial Balance: Top 20 tài khoản theo số dư ròng", render: func() (template.HTML, error) {
			return svg.HBars(0, 0, topNet.values, topNet.labels, svg.Opts{Title: "Trial Balance: Top 20 tài khoản theo số dư ròng"})
		}},
	}
}

type ranking struct {
	labels []string
	values []float64
}

func bucketSeries(rows []ledger.AgingRow) ([]string, []float64) {
	totals := ledger.BucketTotals(rows)
	labels := make([]string, len(totals))
	values := make([]float64, len(totals))
	for i, row := range totals {
		labels[i] = string(row.Bucket)
		values[i] = float64(row.Outstanding)
	}
	return labels, values
}

func journalTotals(journal ledger.Journal) ([]string, []float64, []float64) {
	type sums struct{ debit, credit int64 }
	totals := map[ledger.Month]*sums{}
	for _, e := range journal.Entries {
		if e.EntryDate.IsZero() {
			continue
		}
		m := ledger.MonthOf(e.EntryDate)
		s, ok := totals[m]
		if !ok {
			s = &sums{}
			totals[m] = s
		}
		if e.Side == ledger.Debit {
			s.debit += e.Amount
		} else {
			s.credit += e.Amount
		}
	}
	keys := make([]ledger.Month, 0, len(totals))
	for m := range totals {
		keys = append(keys, m)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	months := make([]string, len(keys))
	debit := make([]float64, len(keys))
	credit := make([]float64, len(keys))
	for i, m := range keys {
		months[i] = m.String()
		debit[i] = float64(totals[m].debit)
		credit[i] = float64(totals[m].credit)
	}
	return months, debit, credit
}

func topAccountTurnover(rows []ledger.TrialBalanceRow, n int) ranking {
	totals := map[string]int64{}
	for _, row := range rows {
		totals[row.AccountCode] += row.Debit + row.Credit
	}
	return rankMap(totals, n, func(v int64) float64 { return float64(v) })
}

func topTrialBalanceNet(rows []ledger.TrialBalanceRow, chart *ledger.Chart, n int) ranking {
	net := map[string]int64{}
	for _, row := range rows {
		net[row.AccountCode] += row.Debit - row.Credit
	}
	abs := map[string]int64{}
	for code, v := range net {
		if v < 0 {
			abs[code] = -v
		} else {
			abs[code] = v
		}
	}
	ranked := rankMap(abs, n, func(v int64) float64 { return float64(v) })
	// Re-read the signed net for display; the ranking is by magnitude.
	for i, code := range ranked.labels {
		ranked.values[i] = float64(net[code])
		if acc, ok := chart.Account(code); ok {
			ranked.labels[i] = code + " " + acc.Name
		}
	}
	return ranked
}

func topPartners(docs []ledger.Document, n int) ranking {
	totals := map[string]int64{}
	names := map[string]string{}
	for _, doc := range docs {
		totals[doc.PartnerCode] += doc.GrossAmount
		names[doc.PartnerCode] = doc.PartnerName
	}
	ranked := rankMap(totals, n, func(v int64) float64 { return float64(v) })
	for i, code := range ranked.labels {
		if name := names[code]; name != "" {
			ranked.labels[i] = name
		}
	}
	return ranked
}

func topItemsNet(ds *dataset.Dataset, n int) ranking {
	totals := map[string]int64{}
	for _, doc := range ds.SalesDocuments() {
		for _, ln := range doc.Lines {
			totals[ln.ItemCode] += ln.LineNet
		}
	}
	names := map[string]string{}
	for _, it := range ds.Items {
		names[it.Code] = it.Name
	}
	ranked := rankMap(totals, n, func(v int64) float64 { return float64(v) })
	for i, code := range ranked.labels {
		if name := names[code]; name != "" {
			ranked.labels[i] = name
		}
	}
	return ranked
}

// rankMap returns the top-n keys of a totals map in descending order.
func rankMap(totals map[string]int64, n int, conv func(int64) float64) ranking {
	type kv struct {
		key   string
		value int64
	}
	pairs := make([]kv, 0, len(totals))
	for k, v := range totals {
		pairs = append(pairs, kv{key: k, value: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value != pairs[j].value {
			return pairs[i].value > pairs[j].value
		}
		return pairs[i].key < pairs[j].key
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	r := ranking{labels: make([]string, len(pairs)), values: make([]float64, len(pairs))}
	for i, p := range pairs {
		r.labels[i] = p.key
		r.values[i] = conv(p.value)
	}
	return r
}

var galleryTmpl = template.Must(template.New("gallery").
	Funcs(template.FuncMap{"vnd": FormatVND}).
	Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>MISA Runtime Visualization</title></head>
<body style="font-family: Arial, sans-serif; max-width: 1100px; margin: 0 auto; padding: 20px;">
<h1>MISA Runtime Visualization</h1>
<p>Run: <b>{{.RunID}}</b> — as of {{.AsOf.Format "2006-01-02"}}</p>
{{if .Problems}}<p style="color:#b91c1c">{{len .Problems}} rows excluded with faults.</p>{{end}}
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Tháng</th><th>Doanh thu (Gross)</th><th>Mua hàng (Gross)</th><th>VAT phải nộp</th></tr>
{{range .KPI}}<tr><td>{{.Month}}</td><td align="right">{{vnd .SalesGross}}</td><td align="right">{{vnd .PurchGross}}</td><td align="right">{{vnd .VATPayable}}</td></tr>
{{end}}</table>
{{range .Charts}}
<div style="border:1px solid #ddd;padding:12px;margin:12px;border-radius:8px">
<h3>{{.Title}}</h3>
{{.SVG}}
</div>
{{end}}
</body></html>
`))

// RenderHTML produces the gallery page for the bundle.
func (b *Bundle) RenderHTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := galleryTmpl.Execute(&buf, b); err != nil {
		return nil, fmt.Errorf("report: render gallery: %w", err)
	}
	return buf.Bytes(), nil
}
