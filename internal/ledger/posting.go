package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ImbalanceTolerance is the permitted debit/credit divergence per
// document, in VND. Per-line VAT rounding can drift by at most one unit.
const ImbalanceTolerance = 1

// Poster turns transactions into balanced journal entry sets against a
// fixed chart of accounts.
type Poster struct {
	chart *Chart
	costs map[string]int64
}

// NewPoster builds a Poster. costs maps item codes to unit standard cost
// and feeds the COGS leg of sales postings; it may be nil when no
// inventory costing is wanted.
func NewPoster(chart *Chart, costs map[string]int64) *Poster {
	return &Poster{chart: chart, costs: costs}
}

// PostDocument derives the journal entries for one sales invoice or
// purchase bill. The returned set is balanced within ImbalanceTolerance
// or an error is returned and nothing is posted.
func (p *Poster) PostDocument(doc Document) ([]JournalEntry, error) {
	if doc.DocDate.IsZero() {
		return nil, fmt.Errorf("document %s: %w", doc.DocNo, ErrMissingDate)
	}
	if err := p.checkLines(doc); err != nil {
		return nil, err
	}

	var entries []JournalEntry
	switch doc.Kind {
	case KindSalesInvoice:
		entries = append(entries, p.entry(doc, AccountReceivable, Debit, doc.GrossAmount, "Phải thu "+doc.PartnerName))
		entries = append(entries, p.entry(doc, AccountRevenue, Credit, doc.NetAmount, "Doanh thu bán hàng"))
		if doc.VATAmount != 0 {
			entries = append(entries, p.entry(doc, AccountOutputVAT, Credit, doc.VATAmount, "Thuế GTGT đầu ra"))
		}
		if cost := doc.CostAmount(p.costs); cost > 0 {
			entries = append(entries, p.entry(doc, AccountCOGS, Debit, cost, "Giá vốn hàng bán"))
			entries = append(entries, p.entry(doc, AccountInventory, Credit, cost, "Xuất kho hàng bán"))
		}
	case KindPurchaseBill:
		entries = append(entries, p.entry(doc, AccountInventory, Debit, doc.NetAmount, "Nhập mua hàng"))
		if doc.VATAmount != 0 {
			entries = append(entries, p.entry(doc, AccountInputVAT, Debit, doc.VATAmount, "Thuế GTGT được khấu trừ"))
		}
		entries = append(entries, p.entry(doc, AccountPayable, Credit, doc.GrossAmount, "Phải trả "+doc.PartnerName))
	default:
		return nil, fmt.Errorf("document %s: unknown kind %q", doc.DocNo, doc.Kind)
	}

	if err := p.validate(doc.DocNo, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PostSettlement derives the cash leg for a receipt or payment. kind is
// the kind of the referenced document and decides direction.
func (p *Poster) PostSettlement(st Settlement, kind DocumentKind) ([]JournalEntry, error) {
	if st.RefDate.IsZero() {
		return nil, fmt.Errorf("settlement %s: %w", st.RefNo, ErrMissingDate)
	}
	cash := st.SettlementAccount
	if cash == "" {
		cash = AccountBank
	}
	var entries []JournalEntry
	switch kind {
	case KindSalesInvoice:
		entries = []JournalEntry{
			{EntryDate: st.RefDate, DocumentNo: st.RefNo, AccountCode: cash, Side: Debit, Amount: st.Amount, Description: "Thu tiền " + st.PartnerName, PartnerCode: st.PartnerCode},
			{EntryDate: st.RefDate, DocumentNo: st.RefNo, AccountCode: AccountReceivable, Side: Credit, Amount: st.Amount, Description: "Giảm phải thu " + st.RefDocumentNo, PartnerCode: st.PartnerCode},
		}
	case KindPurchaseBill:
		entries = []JournalEntry{
			{EntryDate: st.RefDate, DocumentNo: st.RefNo, AccountCode: AccountPayable, Side: Debit, Amount: st.Amount, Description: "Giảm phải trả " + st.RefDocumentNo, PartnerCode: st.PartnerCode},
			{EntryDate: st.RefDate, DocumentNo: st.RefNo, AccountCode: cash, Side: Credit, Amount: st.Amount, Description: "Chi tiền " + st.PartnerName, PartnerCode: st.PartnerCode},
		}
	default:
		return nil, fmt.Errorf("settlement %s: unknown document kind %q", st.RefNo, kind)
	}
	if err := p.validate(st.RefNo, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PostPayroll derives the accrual and disbursement legs of one payroll
// run.
func (p *Poster) PostPayroll(run PayrollRun) ([]JournalEntry, error) {
	if run.AccrualDate.IsZero() || run.PayoutDate.IsZero() {
		return nil, fmt.Errorf("payroll %s: %w", run.RefNo, ErrMissingDate)
	}
	entries := []JournalEntry{
		{EntryDate: run.AccrualDate, DocumentNo: run.RefNo, AccountCode: AccountAdminExpense, Side: Debit, Amount: run.GrossPayroll, Description: "Chi phí lương", CostCenter: "CC01"},
		{EntryDate: run.AccrualDate, DocumentNo: run.RefNo, AccountCode: AccountWagesPayable, Side: Credit, Amount: run.GrossPayroll, Description: "Phải trả NLĐ", CostCenter: "CC01"},
		{EntryDate: run.PayoutDate, DocumentNo: run.RefNo, AccountCode: AccountWagesPayable, Side: Debit, Amount: run.GrossPayroll, Description: "Chi trả lương", CostCenter: "CC01"},
		{EntryDate: run.PayoutDate, DocumentNo: run.RefNo, AccountCode: AccountBank, Side: Credit, Amount: run.GrossPayroll, Description: "Chi trả lương", CostCenter: "CC01"},
	}
	if err := p.validate(run.RefNo, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PostDepreciation derives one monthly depreciation charge.
func (p *Poster) PostDepreciation(run DepreciationRun) ([]JournalEntry, error) {
	if run.EntryDate.IsZero() {
		return nil, fmt.Errorf("depreciation %s: %w", run.RefNo, ErrMissingDate)
	}
	entries := []JournalEntry{
		{EntryDate: run.EntryDate, DocumentNo: run.RefNo, AccountCode: AccountAdminExpense, Side: Debit, Amount: run.Charge, Description: "Khấu hao TSCĐ", CostCenter: "CC01"},
		{EntryDate: run.EntryDate, DocumentNo: run.RefNo, AccountCode: AccountAccumDepr, Side: Credit, Amount: run.Charge, Description: "HM lũy kế TSCĐ", CostCenter: "CC01"},
	}
	if err := p.validate(run.RefNo, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *Poster) entry(doc Document, account string, side Side, amount int64, desc string) JournalEntry {
	return JournalEntry{
		EntryDate:   doc.DocDate,
		DocumentNo:  doc.DocNo,
		AccountCode: account,
		Side:        side,
		Amount:      amount,
		Description: desc,
		PartnerCode: doc.PartnerCode,
		CostCenter:  "CC01",
	}
}

// checkLines verifies VAT codes resolve and recomputed line VAT matches
// what the document carries.
func (p *Poster) checkLines(doc Document) error {
	for _, ln := range doc.Lines {
		rate, ok := p.chart.TaxRate(ln.VATCode)
		if !ok {
			return fmt.Errorf("document %s line %d vat code %s: %w", doc.DocNo, ln.LineNo, ln.VATCode, ErrUnknownTaxCode)
		}
		want := decimal.NewFromInt(ln.LineNet).Mul(rate).Round(0).IntPart()
		if want != ln.LineVAT {
			return fmt.Errorf("document %s line %d: vat %d does not match rate-derived %d: %w",
				doc.DocNo, ln.LineNo, ln.LineVAT, want, ErrPostingImbalance)
		}
	}
	return nil
}

// validate enforces the balanced-set invariant and account existence.
func (p *Poster) validate(ref string, entries []JournalEntry) error {
	var debit, credit int64
	for _, e := range entries {
		if e.Amount < 0 {
			return fmt.Errorf("%s account %s: negative amount %d: %w", ref, e.AccountCode, e.Amount, ErrPostingImbalance)
		}
		if _, ok := p.chart.Account(e.AccountCode); !ok {
			return fmt.Errorf("%s account %s: %w", ref, e.AccountCode, ErrUnknownAccount)
		}
		switch e.Side {
		case Debit:
			debit += e.Amount
		case Credit:
			credit += e.Amount
		}
	}
	diff := debit - credit
	if diff < 0 {
		diff = -diff
	}
	if diff > ImbalanceTolerance {
		return fmt.Errorf("%s: debit %d credit %d: %w", ref, debit, credit, ErrPostingImbalance)
	}
	return nil
}
