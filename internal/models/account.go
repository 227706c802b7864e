package models

// Currency is the closed set of currencies the ledger supports.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

// ValidCurrency reports whether c is one of the supported currencies.
func ValidCurrency(c Currency) bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyGBP:
		return true
	}
	return false
}

// Account represents a financial account in the ledger. Balance is held
// in cents and always equals the net effect of the account's non-deleted
// transactions (the initial-balance transaction seeds the starting
// value). It is mutated only through the ledger services, never
// directly by a handler.
type Account struct {
	Base
	Name     string   `gorm:"not null" json:"name"`
	Currency Currency `gorm:"not null" json:"currency"`
	Balance  int64    `gorm:"type:bigint;not null;default:0" json:"balance"`
	Icon     string   `json:"icon,omitempty"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
