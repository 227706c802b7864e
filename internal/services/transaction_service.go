package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/logger"
	"cuentas/internal/models"
	"cuentas/internal/pagination"
)

// transactionService handles transaction-related business logic. Every
// write pairs a transaction-row mutation with a balance delta on the
// owning account; the two steps are sequential and independently
// atomic, so a failure between them leaves a divergence that
// RecomputeBalance can surface.
type transactionService struct {
	db       *gorm.DB
	accounts AccountServicer
	settings SettingsServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accounts AccountServicer, settings SettingsServicer) TransactionServicer {
	return &transactionService{db: db, accounts: accounts, settings: settings}
}

func (s *transactionService) validateInput(txType models.TransactionType, amount, tax int64, category string) error {
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return apperrors.ErrInvalidTransactionType
	}
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if tax < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "tax cannot be negative")
	}
	ok, err := s.settings.ValidCategory(txType, category)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrUnknownCategory
	}
	return nil
}

// CreateTransaction validates the input, writes the transaction row and
// then applies its net effect to the owning account's balance.
func (s *transactionService) CreateTransaction(input TransactionInput) (*models.Transaction, error) {
	account, err := s.accounts.GetAccountByID(input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(input.Type, input.Amount, input.Tax, input.Category); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		Date:              date,
		Description:       input.Description,
		Type:              input.Type,
		Part:              input.Part,
		AccountID:         account.ID,
		Category:          input.Category,
		Amount:            input.Amount,
		Tax:               input.Tax,
		Currency:          account.Currency,
		InvestmentAssetID: input.InvestmentAssetID,
		LinkedInvoiceID:   input.LinkedInvoiceID,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.accounts.ApplyDelta(account.ID, transaction.NetEffect()); err != nil {
		logger.Get().Errorw("transaction created but balance update failed",
			"transaction_id", transaction.ID,
			"account_id", account.ID,
			"delta", transaction.NetEffect(),
			"error", err,
		)
		return nil, err
	}

	return transaction, nil
}

// GetTransactions retrieves a paginated, filtered list of transactions,
// newest first.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	query := s.db.Model(&models.Transaction{})
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Part != nil {
		query = query.Where("part = ?", *filter.Part)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := query.Scopes(pagination.Paginate(page)).
		Preload("Account").
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves a transaction by ID.
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Account").Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction edits a transaction and reconciles the balance
// side-effects: the old net effect is reverted and the new one applied.
// When the account is unchanged the two deltas collapse into one, and a
// net-zero edit touches no balance at all.
func (s *transactionService) UpdateTransaction(transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	existing, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if existing.IsInitialBalance {
		return nil, apperrors.WithMessage(apperrors.ErrTransactionNotEditable, "Initial-balance transactions cannot be edited")
	}

	oldAccountID := existing.AccountID
	oldEffect := existing.NetEffect()

	if fields.Date != nil {
		existing.Date = *fields.Date
	}
	if fields.Description != nil {
		existing.Description = *fields.Description
	}
	if fields.Type != nil {
		existing.Type = *fields.Type
	}
	if fields.Part != nil {
		existing.Part = *fields.Part
	}
	if fields.Category != nil {
		existing.Category = *fields.Category
	}
	if fields.Amount != nil {
		existing.Amount = *fields.Amount
	}
	if fields.Tax != nil {
		existing.Tax = *fields.Tax
	}
	if fields.AccountID != nil && *fields.AccountID != oldAccountID {
		newAccount, err := s.accounts.GetAccountByID(*fields.AccountID)
		if err != nil {
			return nil, err
		}
		existing.AccountID = newAccount.ID
		existing.Currency = newAccount.Currency
	}

	if err := s.validateInput(existing.Type, existing.Amount, existing.Tax, existing.Category); err != nil {
		return nil, err
	}

	newEffect := existing.NetEffect()

	if err := s.db.Save(existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if existing.AccountID == oldAccountID {
		if delta := newEffect - oldEffect; delta != 0 {
			if err := s.accounts.ApplyDelta(oldAccountID, delta); err != nil {
				logger.Get().Errorw("transaction updated but balance update failed",
					"transaction_id", existing.ID,
					"account_id", oldAccountID,
					"delta", delta,
					"error", err,
				)
				return nil, err
			}
		}
		return existing, nil
	}

	if err := s.accounts.ApplyDelta(oldAccountID, -oldEffect); err != nil {
		logger.Get().Errorw("transaction moved but old account balance not reverted",
			"transaction_id", existing.ID,
			"account_id", oldAccountID,
			"delta", -oldEffect,
			"error", err,
		)
		return nil, err
	}
	if err := s.accounts.ApplyDelta(existing.AccountID, newEffect); err != nil {
		logger.Get().Errorw("transaction moved but new account balance not updated",
			"transaction_id", existing.ID,
			"account_id", existing.AccountID,
			"delta", newEffect,
			"error", err,
		)
		return nil, err
	}

	return existing, nil
}

// DeleteTransaction soft-deletes a transaction and reverts its balance
// contribution. Initial-balance rows revert their seed amount; everything
// else reverts its net effect. Deleting an already-deleted transaction
// returns not-found, so the revert is applied exactly once.
func (s *transactionService) DeleteTransaction(transactionID string) error {
	existing, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return err
	}

	revert := -existing.NetEffect()
	if existing.IsInitialBalance {
		revert = -existing.SeedAmount()
	}

	res := s.db.Delete(&models.Transaction{}, "id = ?", transactionID)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	if err := s.accounts.ApplyDelta(existing.AccountID, revert); err != nil {
		// The row is already deleted. A vanished account means there is no
		// balance left to revert, so the delete still succeeds; anything
		// else is a real failure.
		logger.Get().Errorw("transaction deleted but balance not reverted",
			"transaction_id", existing.ID,
			"account_id", existing.AccountID,
			"delta", revert,
			"error", err,
		)
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			return err
		}
	}

	// Deleting a collection transaction re-opens its linked invoice.
	if existing.LinkedInvoiceID != nil {
		updates := map[string]interface{}{
			"status":                models.DocumentStatusOwed,
			"linked_transaction_id": nil,
			"payment_account_id":    nil,
			"payment_method":        nil,
			"paid_at":               nil,
		}
		if err := s.db.Model(&models.Document{}).
			Where("id = ?", *existing.LinkedInvoiceID).
			Updates(updates).Error; err != nil {
			logger.Get().Errorw("collection transaction deleted but linked invoice not re-opened",
				"transaction_id", existing.ID,
				"invoice_id", *existing.LinkedInvoiceID,
				"error", err,
			)
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return nil
}
