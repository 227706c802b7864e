package services

import (
	"time"

	"cuentas/internal/models"
	"cuentas/internal/pagination"
)

// AccountUpdateFields holds the account metadata a caller may change.
// Balance is deliberately absent: it is only ever mutated through
// ApplyDelta.
type AccountUpdateFields struct {
	Name *string
	Icon *string
}

// AccountServicer defines the contract for account-related business
// logic, including the balance-mutation primitive every other ledger
// service goes through.
type AccountServicer interface {
	CreateAccount(name string, currency models.Currency, icon string, initialBalance int64, date time.Time) (*models.Account, error)
	GetAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(accountID string) (*models.Account, error)
	UpdateAccount(accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(accountID string) error

	// ApplyDelta is the only sanctioned way to mutate an account
	// balance. It is a store-level atomic increment.
	ApplyDelta(accountID string, delta int64) error

	// RecomputeBalance re-sums the account's non-deleted transactions
	// from scratch. Reconciliation tooling; never used on the write path.
	RecomputeBalance(accountID string) (int64, error)

	AdjustBalance(accountID string, targetBalance int64, date time.Time) (*models.Transaction, error)
}

// TransactionInput carries the caller-supplied fields for a new
// transaction. Amount and Tax are cents.
type TransactionInput struct {
	Date        time.Time
	Description string
	Type        models.TransactionType
	Part        string
	AccountID   string
	Category    string
	Amount      int64
	Tax         int64

	InvestmentAssetID *string
	LinkedInvoiceID   *string
}

// TransactionUpdateFields holds the editable fields of a transaction.
// Nil means "leave unchanged".
type TransactionUpdateFields struct {
	Date        *time.Time
	Description *string
	Type        *models.TransactionType
	Part        *string
	AccountID   *string
	Category    *string
	Amount      *int64
	Tax         *int64
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *string
	Part      *string
	AccountID *string
}

// TransactionServicer defines the contract for transaction-related
// business logic.
type TransactionServicer interface {
	CreateTransaction(input TransactionInput) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	UpdateTransaction(transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(transactionID string) error
}

// TransferInput describes a money movement between two accounts.
// ReceivedAmount is required when the account currencies differ; the
// caller supplies the converted amount, no rate is computed here.
type TransferInput struct {
	FromAccountID  string
	ToAccountID    string
	Date           time.Time
	Amount         int64
	Fee            int64
	ReceivedAmount *int64
	Description    string
}

// TransferServicer defines the contract for multi-leg money movement.
type TransferServicer interface {
	Transfer(input TransferInput) error
}

// PaymentDetails carries the collection details for an invoice.
type PaymentDetails struct {
	AccountID string
	Date      time.Time
	Method    string
}

// DocumentFilter holds optional filters for listing documents.
type DocumentFilter struct {
	Kind   *models.DocumentKind
	Status *models.DocumentStatus
}

// DocumentServicer defines the contract for invoices/proformas and the
// bridge that couples invoice collection to ledger transactions.
type DocumentServicer interface {
	CreateDocument(kind models.DocumentKind, clientName string, issueDate time.Time, amount, tax int64) (*models.Document, error)
	GetDocuments(page pagination.PageRequest, filter DocumentFilter) (*pagination.PageResponse[models.Document], error)
	GetDocumentByID(documentID string) (*models.Document, error)
	DeleteDocument(documentID string) error
	ConvertProformaToInvoice(documentID string) (*models.Document, error)

	MarkInvoiceCollected(documentID string, details PaymentDetails) (*models.Transaction, error)
	RevertInvoiceToOwed(documentID string) error
}

// SettingsServicer defines the contract for the composite settings
// document: category vocabularies, numbering counters, fiscal params.
type SettingsServicer interface {
	Get() (*models.Settings, error)
	Update(fields SettingsUpdateFields) (*models.Settings, error)
	ValidCategory(txType models.TransactionType, category string) (bool, error)
	ClaimNumber(kind models.DocumentKind) (int64, error)
}

// SettingsUpdateFields holds the updatable settings fields.
type SettingsUpdateFields struct {
	IncomeCategories     *[]string
	ExpenseCategories    *[]string
	DefaultTaxRateBps    *int64
	FiscalYearStartMonth *int
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
