package ledger

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func salesInvoice(docNo string, net, vat int64) Document {
	return Document{
		DocNo:       docNo,
		Kind:        KindSalesInvoice,
		DocDate:     date(2024, time.March, 15),
		PartnerCode: "CUS001",
		PartnerName: "CT TNHH Minh An",
		NetAmount:   net,
		VATAmount:   vat,
		GrossAmount: net + vat,
	}
}

func TestPostSalesInvoiceProducesThreeBalancedLines(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := salesInvoice("SI2403-2001", 1_000_000, 100_000)

	entries, err := poster.PostDocument(doc)
	if err != nil {
		t.Fatalf("post sales invoice: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	var debit, credit int64
	for _, e := range entries {
		if e.Amount < 0 {
			t.Fatalf("negative amount on %s", e.AccountCode)
		}
		if e.Side == Debit {
			debit += e.Amount
		} else {
			credit += e.Amount
		}
	}
	if debit != 1_100_000 || credit != 1_100_000 {
		t.Fatalf("expected debit==credit==1100000, got %d/%d", debit, credit)
	}
	if entries[0].AccountCode != AccountReceivable || entries[0].Amount != 1_100_000 {
		t.Fatalf("unexpected receivable leg: %+v", entries[0])
	}
	if entries[1].AccountCode != AccountRevenue || entries[1].Amount != 1_000_000 {
		t.Fatalf("unexpected revenue leg: %+v", entries[1])
	}
	if entries[2].AccountCode != AccountOutputVAT || entries[2].Amount != 100_000 {
		t.Fatalf("unexpected output VAT leg: %+v", entries[2])
	}
}

func TestPostPurchaseBillOmitsZeroVATLeg(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := Document{
		DocNo:       "PN2403-2002",
		Kind:        KindPurchaseBill,
		DocDate:     date(2024, time.March, 20),
		PartnerCode: "VEN001",
		PartnerName: "NCC Thiên Long",
		NetAmount:   500_000,
		VATAmount:   0,
		GrossAmount: 500_000,
	}

	entries, err := poster.PostDocument(doc)
	if err != nil {
		t.Fatalf("post purchase bill: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries without VAT leg, got %d", len(entries))
	}
	for _, e := range entries {
		if e.AccountCode == AccountInputVAT {
			t.Fatalf("zero VAT must not post a line: %+v", e)
		}
	}
	if entries[0].Amount != 500_000 || entries[1].Amount != 500_000 {
		t.Fatalf("expected both legs at 500000: %+v", entries)
	}
}

func TestPostPurchaseBillWithVAT(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := Document{
		DocNo:       "PN2403-2003",
		Kind:        KindPurchaseBill,
		DocDate:     date(2024, time.March, 21),
		PartnerCode: "VEN002",
		PartnerName: "NCC Phương Nam",
		NetAmount:   500_000,
		VATAmount:   40_000,
		GrossAmount: 540_000,
	}

	entries, err := poster.PostDocument(doc)
	if err != nil {
		t.Fatalf("post purchase bill: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].AccountCode != AccountInputVAT || entries[1].Amount != 40_000 {
		t.Fatalf("unexpected input VAT leg: %+v", entries[1])
	}
	if entries[2].AccountCode != AccountPayable || entries[2].Side != Credit || entries[2].Amount != 540_000 {
		t.Fatalf("unexpected payable leg: %+v", entries[2])
	}
}

func TestPostSalesInvoiceWithCOGSLeg(t *testing.T) {
	costs := map[string]int64{"SKU001": 300_000}
	poster := NewPoster(DefaultChart(), costs)
	doc := salesInvoice("SI2403-2004", 1_000_000, 100_000)
	doc.Lines = []Line{{
		DocNo: doc.DocNo, LineNo: 1, ItemCode: "SKU001",
		Quantity: 2, UnitPrice: 500_000, VATCode: "VAT10",
		LineNet: 1_000_000, LineVAT: 100_000,
	}}

	entries, err := poster.PostDocument(doc)
	if err != nil {
		t.Fatalf("post sales invoice: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries with COGS leg, got %d", len(entries))
	}
	if entries[3].AccountCode != AccountCOGS || entries[3].Side != Debit || entries[3].Amount != 600_000 {
		t.Fatalf("unexpected COGS leg: %+v", entries[3])
	}
	if entries[4].AccountCode != AccountInventory || entries[4].Side != Credit || entries[4].Amount != 600_000 {
		t.Fatalf("unexpected inventory leg: %+v", entries[4])
	}
}

func TestPostDocumentUnknownTaxCode(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := salesInvoice("SI2403-2005", 100_000, 10_000)
	doc.Lines = []Line{{
		DocNo: doc.DocNo, LineNo: 1, ItemCode: "SKU001",
		Quantity: 1, UnitPrice: 100_000, VATCode: "VAT99",
		LineNet: 100_000, LineVAT: 10_000,
	}}

	if _, err := poster.PostDocument(doc); !errors.Is(err, ErrUnknownTaxCode) {
		t.Fatalf("expected ErrUnknownTaxCode, got %v", err)
	}
}

func TestPostDocumentImbalanceDetected(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := salesInvoice("SI2403-2006", 1_000_000, 100_000)
	doc.GrossAmount = 1_200_000 // broken header

	if _, err := poster.PostDocument(doc); !errors.Is(err, ErrPostingImbalance) {
		t.Fatalf("expected ErrPostingImbalance, got %v", err)
	}
}

func TestPostDocumentToleratesOneUnitRounding(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := salesInvoice("SI2403-2007", 1_000_000, 100_000)
	doc.GrossAmount = 1_100_001 // one VND of per-line rounding drift

	if _, err := poster.PostDocument(doc); err != nil {
		t.Fatalf("one-unit drift must stay within tolerance: %v", err)
	}
}

func TestPostDocumentMissingDate(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	doc := salesInvoice("SI2403-2008", 100_000, 10_000)
	doc.DocDate = time.Time{}

	if _, err := poster.PostDocument(doc); !errors.Is(err, ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate, got %v", err)
	}
}

func TestPostDocumentUnknownAccount(t *testing.T) {
	chart, err := NewChart([]Account{
		{Code: "111", Name: "Cash", Type: TypeAsset},
	}, DefaultTaxCodes())
	if err != nil {
		t.Fatalf("new chart: %v", err)
	}
	poster := NewPoster(chart, nil)

	if _, err := poster.PostDocument(salesInvoice("SI2403-2009", 100_000, 10_000)); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestPostSettlementDirections(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)
	st := Settlement{
		RefNo:             "REC2404-0001",
		RefDate:           date(2024, time.April, 1),
		RefDocumentNo:     "SI2403-2001",
		PartnerCode:       "CUS001",
		PartnerName:       "CT TNHH Minh An",
		Amount:            1_100_000,
		SettlementAccount: AccountBank,
	}

	receipt, err := poster.PostSettlement(st, KindSalesInvoice)
	if err != nil {
		t.Fatalf("post receipt: %v", err)
	}
	if receipt[0].AccountCode != AccountBank || receipt[0].Side != Debit {
		t.Fatalf("receipt must debit cash/bank: %+v", receipt[0])
	}
	if receipt[1].AccountCode != AccountReceivable || receipt[1].Side != Credit {
		t.Fatalf("receipt must credit receivable: %+v", receipt[1])
	}

	st.RefNo = "PAY2404-0001"
	st.RefDocumentNo = "PN2403-2002"
	payment, err := poster.PostSettlement(st, KindPurchaseBill)
	if err != nil {
		t.Fatalf("post payment: %v", err)
	}
	if payment[0].AccountCode != AccountPayable || payment[0].Side != Debit {
		t.Fatalf("payment must debit payable: %+v", payment[0])
	}
	if payment[1].AccountCode != AccountBank || payment[1].Side != Credit {
		t.Fatalf("payment must credit cash/bank: %+v", payment[1])
	}
}

func TestPostPayrollAndDepreciationBalance(t *testing.T) {
	poster := NewPoster(DefaultChart(), nil)

	payroll, err := poster.PostPayroll(PayrollRun{
		RefNo:        "PR2404",
		AccrualDate:  date(2024, time.April, 30),
		PayoutDate:   date(2024, time.May, 5),
		GrossPayroll: 250_000_000,
	})
	if err != nil {
		t.Fatalf("post payroll: %v", err)
	}
	if len(payroll) != 4 {
		t.Fatalf("expected accrual and disbursement legs, got %d entries", len(payroll))
	}
	if payroll[0].AccountCode != AccountAdminExpense || payroll[1].AccountCode != AccountWagesPayable {
		t.Fatalf("unexpected accrual legs: %+v", payroll[:2])
	}
	if payroll[2].AccountCode != AccountWagesPayable || payroll[3].AccountCode != AccountBank {
		t.Fatalf("unexpected disbursement legs: %+v", payroll[2:])
	}

	depr, err := poster.PostDepreciation(DepreciationRun{
		RefNo:     "KH2404",
		EntryDate: date(2024, time.April, 30),
		Charge:    12_500_000,
	})
	if err != nil {
		t.Fatalf("post depreciation: %v", err)
	}
	if depr[0].AccountCode != AccountAdminExpense || depr[1].AccountCode != AccountAccumDepr {
		t.Fatalf("unexpected depreciation legs: %+v", depr)
	}
	if depr[0].Amount != depr[1].Amount {
		t.Fatalf("depreciation legs must balance: %+v", depr)
	}
}

func TestNewChartRejectsEmptyAndDuplicate(t *testing.T) {
	if _, err := NewChart(nil, nil); err == nil {
		t.Fatal("empty chart must fail")
	}
	dup := []Account{
		{Code: "111", Name: "Cash", Type: TypeAsset},
		{Code: "111", Name: "Cash again", Type: TypeAsset},
	}
	if _, err := NewChart(dup, nil); err == nil {
		t.Fatal("duplicate account code must fail")
	}
}
