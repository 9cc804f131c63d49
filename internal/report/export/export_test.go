package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/misa-sim/misa-sim/internal/ledger"
	"github.com/misa-sim/misa-sim/internal/report"
)

func TestWriteTrialBalanceCSV(t *testing.T) {
	rows := []ledger.TrialBalanceRow{
		{Month: ledger.Month{Year: 2024, Mon: time.January}, AccountCode: "131", Debit: 1_100_000},
		{Month: ledger.Month{Year: 2024, Mon: time.January}, AccountCode: "511", Credit: 1_000_000},
	}
	var buf bytes.Buffer
	if err := WriteTrialBalanceCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %v", lines)
	}
	if lines[0] != "Month,Account,Debit,Credit" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "2024-01,131,1100000,0" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestWriteAgingCSV(t *testing.T) {
	rows := []ledger.AgingRow{
		{PartnerCode: "CUS001", Bucket: ledger.Bucket0to30, Outstanding: 5_000},
	}
	var buf bytes.Buffer
	if err := WriteAgingCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !strings.Contains(buf.String(), "CUS001,0-30,5000") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestWriteVATCSV(t *testing.T) {
	rows := []ledger.VATMonthlyRow{
		{Month: ledger.Month{Year: 2024, Mon: time.March}, Output: 100, Input: 40, Payable: 60},
	}
	var buf bytes.Buffer
	if err := WriteVATCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !strings.Contains(buf.String(), "2024-03,100,40,60") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestWriteJournalCSV(t *testing.T) {
	journal := ledger.Journal{Entries: []ledger.JournalEntry{{
		EntryDate:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		DocumentNo:  "SI2401-2001",
		AccountCode: "131",
		Side:        ledger.Debit,
		Amount:      1_100_000,
		Description: "Phải thu KH",
		PartnerCode: "CUS001",
		CostCenter:  "CC01",
	}}}
	var buf bytes.Buffer
	if err := WriteJournalCSV(&buf, journal); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !strings.Contains(buf.String(), "2024-01-15,SI2401-2001,131,Debit,1100000") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestWriteKPICSV(t *testing.T) {
	rows := []report.KPIRow{{
		Month:        ledger.Month{Year: 2024, Mon: time.February},
		SalesGross:   9_000,
		PurchGross:   4_000,
		VATPayable:   500,
		InvoiceCount: 3,
		AvgInvoice:   3_000,
	}}
	var buf bytes.Buffer
	if err := WriteKPICSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !strings.Contains(buf.String(), "2024-02,9000,4000,500,3,3000") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
