package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates chart-of-accounts classifications.
type AccountType string

const (
	TypeAsset         AccountType = "Asset"
	TypeContraAsset   AccountType = "ContraAsset"
	TypeLiability     AccountType = "Liability"
	TypeEquity        AccountType = "Equity"
	TypeRevenue       AccountType = "Revenue"
	TypeContraRevenue AccountType = "ContraRevenue"
	TypeExpense       AccountType = "Expense"
)

// Account is immutable chart-of-accounts reference data. Hierarchy is
// expressed through ParentCode; Level is presentational depth only.
type Account struct {
	Code       string
	Name       string
	Level      int
	Type       AccountType
	ParentCode string
}

// TaxCode is an immutable VAT rate definition looked up during posting.
type TaxCode struct {
	Code        string
	Rate        decimal.Decimal
	Description string
}

// DocumentKind distinguishes the two document headers.
type DocumentKind string

const (
	KindSalesInvoice DocumentKind = "SALES_INVOICE"
	KindPurchaseBill DocumentKind = "PURCHASE_BILL"
)

// Line is one item row of a document. Monetary values are VND, already
// rounded per line.
type Line struct {
	DocNo     string
	LineNo    int
	ItemCode  string
	Quantity  int64
	UnitPrice int64
	VATCode   string
	LineNet   int64
	LineVAT   int64
}

// Document is a sales invoice or purchase bill header with its lines.
// Immutable once created; GrossAmount = NetAmount + VATAmount must hold.
type Document struct {
	DocNo         string
	Kind          DocumentKind
	DocDate       time.Time
	PartnerCode   string
	PartnerName   string
	NetAmount     int64
	VATAmount     int64
	GrossAmount   int64
	WarehouseCode string
	PaymentTerms  string
	Lines         []Line
}

// CostAmount returns the inventory cost carried by the document lines,
// used for the COGS leg of sales postings.
func (d Document) CostAmount(costs map[string]int64) int64 {
	var total int64
	for _, ln := range d.Lines {
		total += costs[ln.ItemCode] * ln.Quantity
	}
	return total
}

// Side marks a journal line as debit or credit.
type Side string

const (
	Debit  Side = "Debit"
	Credit Side = "Credit"
)

// JournalEntry is one balanced-set member produced by posting. Amount is
// always non-negative; the sign lives in Side.
type JournalEntry struct {
	EntryDate   time.Time
	DocumentNo  string
	AccountCode string
	Side        Side
	Amount      int64
	Description string
	PartnerCode string
	ItemCode    string
	CostCenter  string
	ProjectCode string
}

// Settlement is a receipt against a sales invoice or a payment against a
// purchase bill. It references exactly one document by number.
type Settlement struct {
	RefNo             string
	RefDate           time.Time
	RefDocumentNo     string
	PartnerCode       string
	PartnerName       string
	Amount            int64
	SettlementAccount string
}

// PayrollRun is a monthly gross payroll accrual plus its disbursement.
type PayrollRun struct {
	RefNo        string
	AccrualDate  time.Time
	PayoutDate   time.Time
	GrossPayroll int64
}

// DepreciationRun is one monthly straight-line depreciation charge.
type DepreciationRun struct {
	RefNo     string
	EntryDate time.Time
	Charge    int64
}

// Month is the strongly typed period key used by every monthly grouping.
type Month struct {
	Year int
	Mon  time.Month
}

// MonthOf truncates a date to its period key.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Mon < other.Mon
}

// Next returns the following period.
func (m Month) Next() Month {
	if m.Mon == time.December {
		return Month{Year: m.Year + 1, Mon: time.January}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// MonthsBetween lists every period from first through last inclusive.
func MonthsBetween(first, last Month) []Month {
	if last.Before(first) {
		return nil
	}
	months := []Month{first}
	for cur := first; cur != last; {
		cur = cur.Next()
		months = append(months, cur)
	}
	return months
}
