package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Built-in categories used by the ledger services. These are always
// accepted regardless of the configured category vocabulary.
const (
	CategoryTransfer          = "Transfer"
	CategoryFee               = "Fee"
	CategoryBalanceAdjustment = "Balance Adjustment"
	CategoryInvoiceCollection = "Invoice Collection"
	CategoryInitialBalance    = "Initial Balance"
)

// Transaction represents a single ledger entry. Amount and Tax are
// unsigned cents; the signed balance contribution comes from NetEffect.
// Currency is denormalized from the owning account at write time.
type Transaction struct {
	Base
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `gorm:"not null" json:"description"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Part        string          `json:"part,omitempty"`
	AccountID   string          `gorm:"type:uuid;not null;index" json:"account_id"`
	Category    string          `json:"category"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Tax         int64           `gorm:"type:bigint;not null;default:0" json:"tax"`
	Currency    Currency        `gorm:"not null" json:"currency"`

	IsInitialBalance bool `gorm:"not null;default:false" json:"is_initial_balance"`

	InvestmentAssetID *string `gorm:"type:uuid" json:"investment_asset_id,omitempty"`
	LinkedInvoiceID   *string `gorm:"type:uuid;index" json:"linked_invoice_id,omitempty"`

	// Relationships
	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// NetEffect returns the signed balance contribution in cents of a
// transaction with the given type, amount and tax: +amount for income,
// -(amount+tax) for expense.
func NetEffect(t TransactionType, amount, tax int64) int64 {
	if t == TransactionTypeIncome {
		return amount
	}
	return -(amount + tax)
}

// NetEffect returns the transaction's signed balance contribution.
func (t *Transaction) NetEffect() int64 {
	return NetEffect(t.Type, t.Amount, t.Tax)
}

// SeedAmount returns the contribution of an initial-balance transaction
// to a from-scratch recomputation: its stored amount directly, signed by
// type, never through tax.
func (t *Transaction) SeedAmount() int64 {
	if t.Type == TransactionTypeExpense {
		return -t.Amount
	}
	return t.Amount
}
