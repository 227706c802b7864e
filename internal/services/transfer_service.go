package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/logger"
	"cuentas/internal/models"
)

// transferService moves money between accounts as paired ledger
// entries: an expense leg on the source, an income leg on the
// destination, and optionally a fee leg on the source. All
// preconditions are checked before the first write; the writes
// themselves are sequential and independently atomic.
type transferService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, accounts AccountServicer) TransferServicer {
	return &transferService{db: db, accounts: accounts}
}

// Transfer executes a money movement between two accounts.
func (s *transferService) Transfer(input TransferInput) error {
	if input.FromAccountID == input.ToAccountID {
		return apperrors.ErrSameAccountTransfer
	}
	if input.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer amount must be positive")
	}
	if input.Fee < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer fee cannot be negative")
	}

	from, err := s.accounts.GetAccountByID(input.FromAccountID)
	if err != nil {
		return err
	}
	to, err := s.accounts.GetAccountByID(input.ToAccountID)
	if err != nil {
		return err
	}

	// For a cross-currency movement the caller supplies the amount that
	// actually arrived; no exchange rate is computed here.
	received := input.Amount
	if from.Currency != to.Currency {
		if input.ReceivedAmount == nil {
			return apperrors.ErrMissingReceivedAmount
		}
		received = *input.ReceivedAmount
		if received <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "received amount must be positive")
		}
	} else if input.ReceivedAmount != nil {
		received = *input.ReceivedAmount
		if received <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "received amount must be positive")
		}
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)
	}

	legs := []struct {
		txn   *models.Transaction
		delta int64
	}{
		{
			txn: &models.Transaction{
				Date:        date,
				Description: description,
				Type:        models.TransactionTypeExpense,
				AccountID:   from.ID,
				Category:    models.CategoryTransfer,
				Amount:      input.Amount,
				Currency:    from.Currency,
			},
			delta: -input.Amount,
		},
		{
			txn: &models.Transaction{
				Date:        date,
				Description: description,
				Type:        models.TransactionTypeIncome,
				AccountID:   to.ID,
				Category:    models.CategoryTransfer,
				Amount:      received,
				Currency:    to.Currency,
			},
			delta: received,
		},
	}
	if input.Fee > 0 {
		legs = append(legs, struct {
			txn   *models.Transaction
			delta int64
		}{
			txn: &models.Transaction{
				Date:        date,
				Description: fmt.Sprintf("Transfer fee: %s", description),
				Type:        models.TransactionTypeExpense,
				AccountID:   from.ID,
				Category:    models.CategoryFee,
				Amount:      input.Fee,
				Currency:    from.Currency,
			},
			delta: -input.Fee,
		})
	}

	for i, leg := range legs {
		if err := s.db.Create(leg.txn).Error; err != nil {
			logger.Get().Errorw("transfer partially applied: leg creation failed",
				"from_account_id", from.ID,
				"to_account_id", to.ID,
				"completed_legs", i,
				"error", err,
			)
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.accounts.ApplyDelta(leg.txn.AccountID, leg.delta); err != nil {
			logger.Get().Errorw("transfer partially applied: leg created but balance not updated",
				"transaction_id", leg.txn.ID,
				"account_id", leg.txn.AccountID,
				"delta", leg.delta,
				"error", err,
			)
			return err
		}
	}

	return nil
}
