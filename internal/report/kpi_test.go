package report

import (
	"testing"
	"time"

	"github.com/misa-sim/misa-sim/internal/ledger"
)

func monthDoc(docNo string, kind ledger.DocumentKind, m time.Month, gross int64) ledger.Document {
	return ledger.Document{
		DocNo:       docNo,
		Kind:        kind,
		DocDate:     time.Date(2024, m, 10, 0, 0, 0, 0, time.UTC),
		GrossAmount: gross,
	}
}

func TestBuildKPIAggregatesPerMonth(t *testing.T) {
	docs := []ledger.Document{
		monthDoc("SI-1", ledger.KindSalesInvoice, time.January, 1_000),
		monthDoc("SI-2", ledger.KindSalesInvoice, time.January, 3_000),
		monthDoc("PN-1", ledger.KindPurchaseBill, time.February, 500),
	}
	vat := []ledger.VATMonthlyRow{
		{Month: ledger.Month{Year: 2024, Mon: time.January}, Payable: 100},
	}

	rows := BuildKPI(docs, vat)
	if len(rows) != 2 {
		t.Fatalf("expected outer union of months, got %v", rows)
	}
	jan := rows[0]
	if jan.SalesGross != 4_000 || jan.InvoiceCount != 2 || jan.AvgInvoice != 2_000 {
		t.Fatalf("unexpected January KPI: %+v", jan)
	}
	if jan.VATPayable != 100 {
		t.Fatalf("VAT payable must join in: %+v", jan)
	}
	feb := rows[1]
	if feb.PurchGross != 500 || feb.SalesGross != 0 || feb.AvgInvoice != 0 {
		t.Fatalf("unexpected February KPI: %+v", feb)
	}
}

func TestBuildKPISkipsUndatedDocuments(t *testing.T) {
	docs := []ledger.Document{
		{DocNo: "SI-X", Kind: ledger.KindSalesInvoice, GrossAmount: 999},
		monthDoc("SI-1", ledger.KindSalesInvoice, time.March, 100),
	}
	rows := BuildKPI(docs, nil)
	if len(rows) != 1 || rows[0].SalesGross != 100 {
		t.Fatalf("undated document must not pollute KPI: %v", rows)
	}
}

func TestFormatVNDGroupsDigits(t *testing.T) {
	got := FormatVND(1_234_567)
	if got == "1234567" {
		t.Fatalf("expected grouped digits, got %q", got)
	}
}
