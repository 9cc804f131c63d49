package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/misa-sim/misa-sim/internal/ledger"
)

// Dataset is one complete generated universe: reference data plus every
// transaction the derivation pipeline consumes.
type Dataset struct {
	RunID      uuid.UUID
	Scenario   Scenario
	Chart      *ledger.Chart
	Customers  []Partner
	Vendors    []Partner
	Warehouses []Warehouse
	Items      []Item

	Documents     []ledger.Document
	Settlements   []ledger.Settlement
	Payrolls      []ledger.PayrollRun
	Depreciations []ledger.DepreciationRun
}

// ItemCosts maps item codes to standard cost for COGS posting.
func (d *Dataset) ItemCosts() map[string]int64 {
	costs := make(map[string]int64, len(d.Items))
	for _, it := range d.Items {
		costs[it.Code] = it.StandardCost
	}
	return costs
}

// SalesDocuments filters the documents to sales invoices.
func (d *Dataset) SalesDocuments() []ledger.Document {
	return d.byKind(ledger.KindSalesInvoice)
}

// PurchaseDocuments filters the documents to purchase bills.
func (d *Dataset) PurchaseDocuments() []ledger.Document {
	return d.byKind(ledger.KindPurchaseBill)
}

func (d *Dataset) byKind(kind ledger.DocumentKind) []ledger.Document {
	var out []ledger.Document
	for _, doc := range d.Documents {
		if doc.Kind == kind {
			out = append(out, doc)
		}
	}
	return out
}

// Generator produces synthetic transactions from an injected random
// source. The pipeline never reads global random state or the system
// clock.
type Generator struct {
	chart *ledger.Chart
	rng   *rand.Rand
}

// NewGenerator builds a Generator over the given chart.
func NewGenerator(chart *ledger.Chart, rng *rand.Rand) *Generator {
	return &Generator{chart: chart, rng: rng}
}

// Generate materialises a full dataset for the scenario.
func (g *Generator) Generate(sc Scenario) (*Dataset, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		RunID:      uuid.New(),
		Scenario:   sc,
		Chart:      g.chart,
		Customers:  DefaultCustomers(),
		Vendors:    DefaultVendors(),
		Warehouses: DefaultWarehouses(),
		Items:      g.items(12),
	}

	seq := 2000
	nextDoc := func(prefix string, dt time.Time) string {
		seq++
		return fmt.Sprintf("%s%s-%d", prefix, dt.Format("0601"), seq)
	}

	for _, monthEnd := range monthEnds(sc.Start, sc.End) {
		monthStart := time.Date(monthEnd.Year(), monthEnd.Month(), 1, 0, 0, 0, 0, time.UTC)
		span := int(monthEnd.Sub(monthStart).Hours()/24) + 1

		for i := 0; i < sc.PurchasesPerMonth; i++ {
			dt := monthStart.AddDate(0, 0, g.rng.Intn(span))
			ven := ds.Vendors[g.rng.Intn(len(ds.Vendors))]
			wh := ds.Warehouses[g.rng.Intn(len(ds.Warehouses))]
			doc := g.document(nextDoc("PN", dt), ledger.KindPurchaseBill, dt, ven, wh, ds.Items, sc.LinesPerDocument)
			ds.Documents = append(ds.Documents, doc)
		}
		for i := 0; i < sc.SalesPerMonth; i++ {
			dt := monthStart.AddDate(0, 0, g.rng.Intn(span))
			cus := ds.Customers[g.rng.Intn(len(ds.Customers))]
			wh := ds.Warehouses[g.rng.Intn(len(ds.Warehouses))]
			doc := g.document(nextDoc("SI", dt), ledger.KindSalesInvoice, dt, cus, wh, ds.Items, sc.LinesPerDocument)
			ds.Documents = append(ds.Documents, doc)
		}

		if sc.MonthlyPayroll > 0 {
			ds.Payrolls = append(ds.Payrolls, ledger.PayrollRun{
				RefNo:        "PR" + monthEnd.Format("0601"),
				AccrualDate:  monthEnd,
				PayoutDate:   monthEnd.AddDate(0, 0, 5),
				GrossPayroll: sc.MonthlyPayroll,
			})
		}
		if sc.MonthlyDepreciation > 0 {
			ds.Depreciations = append(ds.Depreciations, ledger.DepreciationRun{
				RefNo:     "KH" + monthEnd.Format("0601"),
				EntryDate: monthEnd,
				Charge:    sc.MonthlyDepreciation,
			})
		}
	}

	g.settle(ds, sc)
	return ds, nil
}

// document builds one header with its lines. Header totals are sums of
// the rounded line amounts, so gross = net + vat holds by construction.
func (g *Generator) document(docNo string, kind ledger.DocumentKind, dt time.Time, partner Partner, wh Warehouse, items []Item, lineCount int) ledger.Document {
	doc := ledger.Document{
		DocNo:         docNo,
		Kind:          kind,
		DocDate:       dt,
		PartnerCode:   partner.Code,
		PartnerName:   partner.Name,
		WarehouseCode: wh.Code,
		PaymentTerms:  partner.PaymentTerms,
	}
	for li := 1; li <= lineCount; li++ {
		it := items[g.rng.Intn(len(items))]
		var qty int64
		var base int64
		if kind == ledger.KindPurchaseBill {
			qty = int64(5 + g.rng.Intn(16))
			base = it.StandardCost
		} else {
			qty = int64(2 + g.rng.Intn(11))
			base = it.ListPrice
		}
		unitPrice := int64(float64(base)*(0.95+g.rng.Float64()*0.10) + 0.5)
		lineNet := qty * unitPrice
		rate, _ := g.chart.TaxRate(it.DefaultVATCode)
		lineVAT := decimal.NewFromInt(lineNet).Mul(rate).Round(0).IntPart()
		doc.Lines = append(doc.Lines, ledger.Line{
			DocNo:     docNo,
			LineNo:    li,
			ItemCode:  it.Code,
			Quantity:  qty,
			UnitPrice: unitPrice,
			VATCode:   it.DefaultVATCode,
			LineNet:   lineNet,
			LineVAT:   lineVAT,
		})
		doc.NetAmount += lineNet
		doc.VATAmount += lineVAT
	}
	doc.GrossAmount = doc.NetAmount + doc.VATAmount
	return doc
}

// settle attaches receipts and payments to a fraction of documents.
// Half of the settled documents clear in full, the rest between 30% and
// 80% of gross, 5 to 40 days after the document date.
func (g *Generator) settle(ds *Dataset, sc Scenario) {
	for _, doc := range ds.Documents {
		if g.rng.Float64() >= sc.SettleFraction {
			continue
		}
		amount := doc.GrossAmount
		if g.rng.Float64() < 0.5 {
			amount = int64(float64(doc.GrossAmount) * (0.3 + g.rng.Float64()*0.5))
		}
		if amount <= 0 {
			continue
		}
		prefix := "REC"
		account := ledger.AccountBank
		if doc.Kind == ledger.KindPurchaseBill {
			prefix = "PAY"
		}
		if g.rng.Float64() < 0.2 {
			account = ledger.AccountCash
		}
		refDate := doc.DocDate.AddDate(0, 0, 5+g.rng.Intn(36))
		ds.Settlements = append(ds.Settlements, ledger.Settlement{
			RefNo:             fmt.Sprintf("%s%s-%s", prefix, refDate.Format("0601"), doc.DocNo),
			RefDate:           refDate,
			RefDocumentNo:     doc.DocNo,
			PartnerCode:       doc.PartnerCode,
			PartnerName:       doc.PartnerName,
			Amount:            amount,
			SettlementAccount: account,
		})
	}
}

// items rolls the product master: thousand-rounded standard costs
// between 300k and 5M VND, list price at a 15-80% margin.
func (g *Generator) items(count int) []Item {
	uoms := []string{"cái", "gói", "bộ", "license"}
	codes := []string{"VAT10", "VAT8", "VAT5", "VAT0", "NON"}
	out := make([]Item, 0, count)
	for i := 1; i <= count; i++ {
		cost := roundThousand(300_000 + g.rng.Float64()*4_700_000)
		price := roundThousand(float64(cost) * (1.15 + g.rng.Float64()*0.65))
		out = append(out, Item{
			Code:           fmt.Sprintf("SKU%03d", i),
			Name:           fmt.Sprintf("Sản phẩm %03d", i),
			UOM:            uoms[g.rng.Intn(len(uoms))],
			StandardCost:   cost,
			ListPrice:      price,
			DefaultVATCode: codes[g.rng.Intn(len(codes))],
		})
	}
	return out
}

func roundThousand(v float64) int64 {
	return int64(v/1000+0.5) * 1000
}

// monthEnds yields the last day of every month in [start, end], clamped
// to end for the final partial month.
func monthEnds(start, end time.Time) []time.Time {
	var out []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		next := cur.AddDate(0, 1, 0)
		me := next.AddDate(0, 0, -1)
		if me.After(end) {
			me = end
		}
		out = append(out, me)
		cur = next
	}
	return out
}
