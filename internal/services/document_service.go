package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/logger"
	"cuentas/internal/models"
	"cuentas/internal/pagination"
)

// documentService manages invoices and proformas, and the bridge that
// couples invoice collection to ledger transactions.
type documentService struct {
	db           *gorm.DB
	transactions TransactionServicer
	settings     SettingsServicer
}

// NewDocumentService creates a new DocumentServicer.
func NewDocumentService(db *gorm.DB, transactions TransactionServicer, settings SettingsServicer) DocumentServicer {
	return &documentService{db: db, transactions: transactions, settings: settings}
}

// CreateDocument creates a new invoice or proforma in owed status,
// claiming the next number from the per-kind counter.
func (s *documentService) CreateDocument(kind models.DocumentKind, clientName string, issueDate time.Time, amount, tax int64) (*models.Document, error) {
	if kind != models.DocumentKindInvoice && kind != models.DocumentKindProforma {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported document kind")
	}
	if clientName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "client name is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if tax < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tax cannot be negative")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	number, err := s.settings.ClaimNumber(kind)
	if err != nil {
		return nil, err
	}

	document := &models.Document{
		Kind:       kind,
		Number:     number,
		ClientName: clientName,
		IssueDate:  issueDate,
		Amount:     amount,
		Tax:        tax,
		Total:      amount + tax,
		Status:     models.DocumentStatusOwed,
	}
	if err := s.db.Create(document).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return document, nil
}

// GetDocuments retrieves a paginated, filtered list of documents,
// newest first.
func (s *documentService) GetDocuments(page pagination.PageRequest, filter DocumentFilter) (*pagination.PageResponse[models.Document], error) {
	page.Defaults()

	query := s.db.Model(&models.Document{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var documents []models.Document
	if err := query.Scopes(pagination.Paginate(page)).
		Order("issue_date DESC, number DESC").
		Find(&documents).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(documents, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetDocumentByID retrieves a document by ID.
func (s *documentService) GetDocumentByID(documentID string) (*models.Document, error) {
	var document models.Document
	if err := s.db.Where("id = ?", documentID).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &document, nil
}

// DeleteDocument deletes a document. A collected invoice is reverted
// first so its collection transaction and balance effect are undone.
func (s *documentService) DeleteDocument(documentID string) error {
	document, err := s.GetDocumentByID(documentID)
	if err != nil {
		return err
	}

	if document.Status == models.DocumentStatusCollected {
		if err := s.RevertInvoiceToOwed(document.ID); err != nil {
			return err
		}
	}

	if err := s.db.Delete(&models.Document{}, "id = ?", document.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ConvertProformaToInvoice turns a proforma into an invoice, claiming a
// fresh invoice number. The proforma number is not reused.
func (s *documentService) ConvertProformaToInvoice(documentID string) (*models.Document, error) {
	document, err := s.GetDocumentByID(documentID)
	if err != nil {
		return nil, err
	}
	if document.Kind != models.DocumentKindProforma {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "only proformas can be converted to invoices")
	}

	number, err := s.settings.ClaimNumber(models.DocumentKindInvoice)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"kind":   models.DocumentKindInvoice,
		"number": number,
	}
	if err := s.db.Model(document).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	document.Kind = models.DocumentKindInvoice
	document.Number = number
	return document, nil
}

// MarkInvoiceCollected records the collection of an owed invoice: an
// income transaction for the invoice total is written to the payment
// account, and the invoice is linked to it and moved to collected.
func (s *documentService) MarkInvoiceCollected(documentID string, details PaymentDetails) (*models.Transaction, error) {
	document, err := s.GetDocumentByID(documentID)
	if err != nil {
		return nil, err
	}
	if document.Kind != models.DocumentKindInvoice {
		return nil, apperrors.ErrNotAnInvoice
	}
	if document.Status != models.DocumentStatusOwed {
		return nil, apperrors.ErrInvoiceCollected
	}

	date := details.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction, err := s.transactions.CreateTransaction(TransactionInput{
		Date:            date,
		Description:     fmt.Sprintf("Collection of invoice %d (%s)", document.Number, document.ClientName),
		Type:            models.TransactionTypeIncome,
		AccountID:       details.AccountID,
		Category:        models.CategoryInvoiceCollection,
		Amount:          document.Total,
		LinkedInvoiceID: &document.ID,
	})
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":                models.DocumentStatusCollected,
		"linked_transaction_id": transaction.ID,
		"payment_account_id":    details.AccountID,
		"paid_at":               date,
	}
	if details.Method != "" {
		updates["payment_method"] = details.Method
	}
	if err := s.db.Model(document).Updates(updates).Error; err != nil {
		logger.Get().Errorw("invoice collection partially applied: transaction written, invoice not updated",
			"invoice_id", document.ID,
			"transaction_id", transaction.ID,
			"error", err,
		)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// RevertInvoiceToOwed undoes a collection: the linked transaction is
// deleted (reverting its balance effect) and the invoice returns to
// owed with its payment details cleared.
func (s *documentService) RevertInvoiceToOwed(documentID string) error {
	document, err := s.GetDocumentByID(documentID)
	if err != nil {
		return err
	}
	if document.Kind != models.DocumentKindInvoice {
		return apperrors.ErrNotAnInvoice
	}
	if document.Status != models.DocumentStatusCollected {
		return apperrors.ErrInvoiceNotCollected
	}

	// Deleting the collection transaction re-opens the invoice as a
	// side-effect, which makes a direct transaction deletion and this
	// revert converge on the same state.
	if document.LinkedTransactionID != nil {
		err := s.transactions.DeleteTransaction(*document.LinkedTransactionID)
		if err != nil && !errors.Is(err, apperrors.ErrTransactionNotFound) {
			return err
		}
		if err == nil {
			return nil
		}
	}

	// The recorded link is stale or missing; scan for a transaction
	// tagged with this invoice before giving up on the deletion path.
	var linked models.Transaction
	scanErr := s.db.Where("linked_invoice_id = ?", document.ID).First(&linked).Error
	if scanErr == nil {
		return s.transactions.DeleteTransaction(linked.ID)
	}
	if !errors.Is(scanErr, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, scanErr)
	}

	// No linked transaction exists. Recoverable inconsistency: flip the
	// status anyway and clear the payment details.
	logger.Get().Warnw("reverting collected invoice with no linked transaction",
		"invoice_id", document.ID,
	)
	updates := map[string]interface{}{
		"status":                models.DocumentStatusOwed,
		"linked_transaction_id": nil,
		"payment_account_id":    nil,
		"payment_method":        nil,
		"paid_at":               nil,
	}
	if err := s.db.Model(document).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
