package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account codes referenced by the posting rules. These follow the
// Vietnamese chart of accounts (Circular 200 numbering).
const (
	AccountCash         = "111"
	AccountBank         = "112"
	AccountReceivable   = "131"
	AccountInputVAT     = "1331"
	AccountMaterials    = "152"
	AccountInventory    = "156"
	AccountFixedAssets  = "211"
	AccountAccumDepr    = "214"
	AccountPayable      = "331"
	AccountOutputVAT    = "33311"
	AccountWagesPayable = "334"
	AccountEquity       = "411"
	AccountRetained     = "421"
	AccountRevenue      = "511"
	AccountSalesReturns = "521"
	AccountCOGS         = "632"
	AccountAdminExpense = "642"
)

// Chart bundles the immutable reference data the posting rules consult.
type Chart struct {
	accounts map[string]Account
	taxCodes map[string]TaxCode
	ordered  []Account
}

// NewChart validates and indexes reference data. An empty chart, a
// duplicate code, or an unresolvable parent makes posting impossible and
// fails the whole run.
func NewChart(accounts []Account, taxCodes []TaxCode) (*Chart, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("ledger: chart of accounts is empty")
	}
	idx := make(map[string]Account, len(accounts))
	for _, acc := range accounts {
		if acc.Code == "" {
			return nil, fmt.Errorf("ledger: account with empty code")
		}
		if _, dup := idx[acc.Code]; dup {
			return nil, fmt.Errorf("ledger: duplicate account code %s", acc.Code)
		}
		idx[acc.Code] = acc
	}
	for _, acc := range accounts {
		if acc.ParentCode == "" {
			continue
		}
		seen := map[string]bool{acc.Code: true}
		parent := acc.ParentCode
		for parent != "" {
			if seen[parent] {
				return nil, fmt.Errorf("ledger: account hierarchy cycle at %s", acc.Code)
			}
			seen[parent] = true
			next, ok := idx[parent]
			if !ok {
				// Roots such as "11" are grouping prefixes, not
				// postable accounts; a missing parent terminates
				// the chain.
				break
			}
			parent = next.ParentCode
		}
	}
	taxes := make(map[string]TaxCode, len(taxCodes))
	for _, tc := range taxCodes {
		if tc.Rate.IsNegative() || tc.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("ledger: tax code %s rate out of range", tc.Code)
		}
		taxes[tc.Code] = tc
	}
	return &Chart{accounts: idx, taxCodes: taxes, ordered: accounts}, nil
}

// Account looks up a postable account by code.
func (c *Chart) Account(code string) (Account, bool) {
	acc, ok := c.accounts[code]
	return acc, ok
}

// TaxRate resolves a VAT code to its rate.
func (c *Chart) TaxRate(code string) (decimal.Decimal, bool) {
	tc, ok := c.taxCodes[code]
	return tc.Rate, ok
}

// Accounts returns the chart rows in declaration order.
func (c *Chart) Accounts() []Account {
	return c.ordered
}

// TaxCodes returns the VAT table rows.
func (c *Chart) TaxCodes() []TaxCode {
	out := make([]TaxCode, 0, len(c.taxCodes))
	for _, tc := range c.taxCodes {
		out = append(out, tc)
	}
	return out
}

// DefaultChart returns the seventeen-account MISA demo chart.
func DefaultChart() *Chart {
	chart, err := NewChart(DefaultAccounts(), DefaultTaxCodes())
	if err != nil {
		panic(err)
	}
	return chart
}

// DefaultAccounts lists the demo chart of accounts.
func DefaultAccounts() []Account {
	return []Account{
		{Code: "111", Name: "Tiền mặt", Level: 3, Type: TypeAsset, ParentCode: "11"},
		{Code: "112", Name: "Tiền gửi ngân hàng", Level: 3, Type: TypeAsset, ParentCode: "11"},
		{Code: "131", Name: "Phải thu KH", Level: 3, Type: TypeAsset, ParentCode: "13"},
		{Code: "1331", Name: "Thuế GTGT được khấu trừ", Level: 4, Type: TypeAsset, ParentCode: "13"},
		{Code: "152", Name: "Nguyên liệu", Level: 3, Type: TypeAsset, ParentCode: "15"},
		{Code: "156", Name: "Hàng hóa", Level: 3, Type: TypeAsset, ParentCode: "15"},
		{Code: "211", Name: "TSCĐ hữu hình", Level: 3, Type: TypeAsset, ParentCode: "21"},
		{Code: "214", Name: "HM lũy kế TSCĐ", Level: 3, Type: TypeContraAsset, ParentCode: "21"},
		{Code: "331", Name: "Phải trả NCC", Level: 3, Type: TypeLiability, ParentCode: "33"},
		{Code: "33311", Name: "Thuế GTGT đầu ra", Level: 5, Type: TypeLiability, ParentCode: "33"},
		{Code: "334", Name: "Phải trả NLĐ", Level: 3, Type: TypeLiability, ParentCode: "33"},
		{Code: "411", Name: "Vốn CSH", Level: 3, Type: TypeEquity, ParentCode: "41"},
		{Code: "421", Name: "LNSTCPP", Level: 3, Type: TypeEquity, ParentCode: "42"},
		{Code: "511", Name: "Doanh thu BH&CCDV", Level: 3, Type: TypeRevenue, ParentCode: "51"},
		{Code: "521", Name: "Giảm trừ DT", Level: 3, Type: TypeContraRevenue, ParentCode: "52"},
		{Code: "632", Name: "Giá vốn hàng bán", Level: 3, Type: TypeExpense, ParentCode: "63"},
		{Code: "642", Name: "CP QLDN", Level: 3, Type: TypeExpense, ParentCode: "64"},
	}
}

// DefaultTaxCodes lists the demo VAT table.
func DefaultTaxCodes() []TaxCode {
	return []TaxCode{
		{Code: "VAT10", Rate: decimal.NewFromFloat(0.10), Description: "GTGT 10%"},
		{Code: "VAT8", Rate: decimal.NewFromFloat(0.08), Description: "GTGT 8%"},
		{Code: "VAT5", Rate: decimal.NewFromFloat(0.05), Description: "GTGT 5%"},
		{Code: "VAT0", Rate: decimal.Zero, Description: "0%"},
		{Code: "NON", Rate: decimal.Zero, Description: "Không chịu thuế"},
	}
}
