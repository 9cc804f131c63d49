package ledger

import "sort"

// VATMonthlyRow is one month of the VAT declaration summary.
type VATMonthlyRow struct {
	Month   Month
	Output  int64
	Input   int64
	Payable int64
}

// VATMonthly sums line-level VAT by the month of the document date:
// sales lines feed output VAT, purchase lines feed input VAT. The month
// sets are joined by outer union, so a month with activity on only one
// side still appears with the other side at zero. Documents without a
// date are excluded and counted as problems.
func VATMonthly(docs []Document) ([]VATMonthlyRow, Problems) {
	var problems Problems
	totals := make(map[Month]*VATMonthlyRow)
	for _, doc := range docs {
		if doc.DocDate.IsZero() {
			problems.add(doc.DocNo, ErrMissingDate)
			continue
		}
		m := MonthOf(doc.DocDate)
		row, ok := totals[m]
		if !ok {
			row = &VATMonthlyRow{Month: m}
			totals[m] = row
		}
		for _, ln := range doc.Lines {
			switch doc.Kind {
			case KindSalesInvoice:
				row.Output += ln.LineVAT
			case KindPurchaseBill:
				row.Input += ln.LineVAT
			}
		}
	}
	rows := make([]VATMonthlyRow, 0, len(totals))
	for _, row := range totals {
		row.Payable = row.Output - row.Input
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows, problems
}
