package models

// Settings is the single composite configuration document: category
// vocabularies, the invoice numbering counter, and fiscal parameters.
// Exactly one row exists (SettingsID).
type Settings struct {
	Base
	IncomeCategories  StringList `gorm:"serializer:json" json:"income_categories"`
	ExpenseCategories StringList `gorm:"serializer:json" json:"expense_categories"`

	NextInvoiceNumber  int64 `gorm:"not null;default:1" json:"next_invoice_number"`
	NextProformaNumber int64 `gorm:"not null;default:1" json:"next_proforma_number"`

	DefaultTaxRateBps    int64 `gorm:"not null;default:2100" json:"default_tax_rate_bps"`
	FiscalYearStartMonth int   `gorm:"not null;default:1" json:"fiscal_year_start_month"`
}

// SettingsID is the fixed id of the single settings row.
const SettingsID = "00000000-0000-0000-0000-000000000001"

// StringList is a JSON-serialized list of category names.
type StringList []string

// Contains reports whether the list holds name (exact match).
func (l StringList) Contains(name string) bool {
	for _, s := range l {
		if s == name {
			return true
		}
	}
	return false
}
