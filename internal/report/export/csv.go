package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/report"
)

// WriteKPICSV serialises the monthly KPI table.
func WriteKPICSV(w io.Writer, rows []report.KPIRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Sales Gross", "Purchases Gross", "VAT Payable", "Invoice Count", "Avg Invoice"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Month.String(),
			formatAmount(row.SalesGross),
			formatAmount(row.PurchGross),
			formatAmount(row.VATPayable),
			strconv.Itoa(row.InvoiceCount),
			formatAmount(row.AvgInvoice),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTrialBalanceCSV emits per-month, per-account debit/credit totals.
func WriteTrialBalanceCSV(w io.Writer, rows []ledger.TrialBalanceRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Account", "Debit", "Credit"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Month.String(),
			row.AccountCode,
			formatAmount(row.Debit),
			formatAmount(row.Credit),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAgingCSV emits partner/bucket outstanding rows.
func WriteAgingCSV(w io.Writer, rows []ledger.AgingRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Partner", "Bucket", "Outstanding"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.PartnerCode,
			string(row.Bucket),
			formatAmount(row.Outstanding),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteVATCSV emits the monthly VAT declaration summary.
func WriteVATCSV(w io.Writer, rows []ledger.VATMonthlyRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "VAT Output", "VAT Input", "VAT Payable"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Month.String(),
			formatAmount(row.Output),
			formatAmount(row.Input),
			formatAmount(row.Payable),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJournalCSV emits the raw journal.
func WriteJournalCSV(w io.Writer, journal ledger.Journal) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Entry Date", "Document", "Account", "Side", "Amount", "Description", "Partner", "Cost Center"}); err != nil {
		return err
	}
	for _, e := range journal.Entries {
		if err := writer.Write([]string{
			e.EntryDate.Format("2006-01-02"),
			e.DocumentNo,
			e.AccountCode,
			string(e.Side),
			formatAmount(e.Amount),
			e.Description,
			e.PartnerCode,
			e.CostCenter,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(v int64) string {
	return strconv.FormatInt(v, 10)
}
