package dataset

// Partner is a customer or vendor master record.
type Partner struct {
	Code          string
	Name          string
	TaxID         string
	Address       string
	PaymentMethod string
	PaymentTerms  string
}

// Warehouse master record.
type Warehouse struct {
	Code string
	Name string
}

// Item master record. StandardCost feeds the COGS leg, ListPrice the
// sales lines.
type Item struct {
	Code           string
	Name           string
	UOM            string
	StandardCost   int64
	ListPrice      int64
	DefaultVATCode string
}

// DefaultCustomers returns the four demo customers.
func DefaultCustomers() []Partner {
	return []Partner{
		{Code: "CUS001", Name: "CT TNHH Minh An", TaxID: "0123456789", Address: "Hà Nội", PaymentMethod: "CK", PaymentTerms: "30 ngày"},
		{Code: "CUS002", Name: "CT CP Đông Á", TaxID: "0123456790", Address: "TP.HCM", PaymentMethod: "CK", PaymentTerms: "45 ngày"},
		{Code: "CUS003", Name: "CT TNHH Hoa Sen", TaxID: "0123456791", Address: "Đà Nẵng", PaymentMethod: "TM/CK", PaymentTerms: "30 ngày"},
		{Code: "CUS004", Name: "CT CP ABC Group", TaxID: "0123456792", Address: "Hải Phòng", PaymentMethod: "CK", PaymentTerms: "60 ngày"},
	}
}

// DefaultVendors returns the three demo vendors.
func DefaultVendors() []Partner {
	return []Partner{
		{Code: "VEN001", Name: "NCC Thiên Long", TaxID: "0234567890", Address: "Hà Nội", PaymentMethod: "CK", PaymentTerms: "30 ngày"},
		{Code: "VEN002", Name: "NCC Phương Nam", TaxID: "0234567891", Address: "TP.HCM", PaymentMethod: "CK", PaymentTerms: "45 ngày"},
		{Code: "VEN003", Name: "NCC KingStar", TaxID: "0234567892", Address: "Đà Nẵng", PaymentMethod: "TM/CK", PaymentTerms: "30 ngày"},
	}
}

// DefaultWarehouses returns the two demo warehouses.
func DefaultWarehouses() []Warehouse {
	return []Warehouse{
		{Code: "WH01", Name: "Kho Hà Nội"},
		{Code: "WH02", Name: "Kho TP.HCM"},
	}
}
