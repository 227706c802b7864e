package models

import "time"

// DocumentKind distinguishes invoices from proformas. Only invoices
// participate in the collection/ledger bridge.
type DocumentKind string

const (
	DocumentKindInvoice  DocumentKind = "invoice"
	DocumentKindProforma DocumentKind = "proforma"
)

// DocumentStatus is the collection state of an invoice. The stored
// values match the bookkeeping vocabulary of the business.
type DocumentStatus string

const (
	DocumentStatusOwed      DocumentStatus = "Adeudada"
	DocumentStatusCollected DocumentStatus = "Cobrada"
)

// Document represents an invoice or proforma. An invoice in status
// Cobrada always has exactly one linked income transaction; reverting
// to Adeudada deletes that transaction and clears the link.
type Document struct {
	Base
	Kind       DocumentKind   `gorm:"not null" json:"kind"`
	Number     int64          `gorm:"not null" json:"number"`
	ClientName string         `gorm:"not null" json:"client_name"`
	IssueDate  time.Time      `gorm:"not null" json:"issue_date"`
	Amount     int64          `gorm:"type:bigint;not null" json:"amount"`
	Tax        int64          `gorm:"type:bigint;not null;default:0" json:"tax"`
	Total      int64          `gorm:"type:bigint;not null" json:"total"`
	Status     DocumentStatus `gorm:"not null;default:'Adeudada'" json:"status"`

	LinkedTransactionID *string    `gorm:"type:uuid" json:"linked_transaction_id,omitempty"`
	PaymentAccountID    *string    `gorm:"type:uuid" json:"payment_account_id,omitempty"`
	PaymentMethod       *string    `json:"payment_method,omitempty"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
}
