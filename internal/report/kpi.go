package report

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/misa-sim/misa-sim/internal/ledger"
)

// KPIRow is one month of headline figures: gross sales, gross
// purchases, VAT payable, and invoice statistics.
type KPIRow struct {
	Month        ledger.Month
	SalesGross   int64
	PurchGross   int64
	VATPayable   int64
	InvoiceCount int
	AvgInvoice   int64
}

// BuildKPI folds documents and the VAT summary into the monthly KPI
// table. Months form the outer union of both document sets; undated
// documents are skipped (the core already reported them).
func BuildKPI(docs []ledger.Document, vatRows []ledger.VATMonthlyRow) []KPIRow {
	totals := make(map[ledger.Month]*KPIRow)
	row := func(m ledger.Month) *KPIRow {
		r, ok := totals[m]
		if !ok {
			r = &KPIRow{Month: m}
			totals[m] = r
		}
		return r
	}
	for _, doc := range docs {
		if doc.DocDate.IsZero() {
			continue
		}
		r := row(ledger.MonthOf(doc.DocDate))
		switch doc.Kind {
		case ledger.KindSalesInvoice:
			r.SalesGross += doc.GrossAmount
			r.InvoiceCount++
		case ledger.KindPurchaseBill:
			r.PurchGross += doc.GrossAmount
		}
	}
	for _, vr := range vatRows {
		row(vr.Month).VATPayable = vr.Payable
	}
	rows := make([]KPIRow, 0, len(totals))
	for _, r := range totals {
		if r.InvoiceCount > 0 {
			r.AvgInvoice = r.SalesGross / int64(r.InvoiceCount)
		}
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows
}

var printer = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount with Vietnamese digit grouping.
func FormatVND(v int64) string {
	return printer.Sprintf("%d", v)
}
