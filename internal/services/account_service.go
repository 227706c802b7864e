package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/logger"
	"cuentas/internal/models"
	"cuentas/internal/money"
	"cuentas/internal/pagination"
)

// accountService handles account-related business logic and owns the
// balance-mutation primitive used by every other ledger service.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account. A non-zero initial balance seeds
// one initial-balance transaction marking the starting value.
func (s *accountService) CreateAccount(name string, currency models.Currency, icon string, initialBalance int64, date time.Time) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !models.ValidCurrency(currency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported currency")
	}

	// Account names are unique case-insensitively.
	var count int64
	if err := s.db.Model(&models.Account{}).Where("lower(name) = lower(?)", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateAccountName
	}

	if date.IsZero() {
		date = time.Now()
	}

	account := &models.Account{
		Name:     name,
		Currency: currency,
		Balance:  initialBalance,
		Icon:     icon,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if initialBalance != 0 {
		seedType := models.TransactionTypeIncome
		amount := initialBalance
		if initialBalance < 0 {
			seedType = models.TransactionTypeExpense
			amount = -initialBalance
		}
		seed := &models.Transaction{
			Date:             date,
			Description:      "Initial balance",
			Type:             seedType,
			AccountID:        account.ID,
			Category:         models.CategoryInitialBalance,
			Amount:           amount,
			Currency:         account.Currency,
			IsInitialBalance: true,
		}
		if err := s.db.Create(seed).Error; err != nil {
			// The account exists with its balance already set; the
			// missing seed row will show up in reconciliation.
			logger.Get().Errorw("account created but initial-balance transaction failed",
				"account_id", account.ID,
				"initial_balance", initialBalance,
				"error", err,
			)
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// GetAccounts retrieves a paginated list of accounts.
func (s *accountService) GetAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("name").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID.
func (s *accountService) GetAccountByID(accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates account metadata. The balance is never touched
// here; only ApplyDelta mutates it.
func (s *accountService) UpdateAccount(accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		var count int64
		if err := s.db.Model(&models.Account{}).
			Where("lower(name) = lower(?) AND id <> ?", *fields.Name, accountID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateAccountName
		}
		updates["name"] = *fields.Name
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount deletes an account. Only allowed when the balance is
// zero (within epsilon) and no transactions reference the account.
func (s *accountService) DeleteAccount(accountID string) error {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return err
	}

	if !money.IsZero(account.Balance) {
		return apperrors.WithMessage(apperrors.ErrAccountNotEmpty, "Account balance must be zero before deletion")
	}

	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("account_id = ?", accountID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrAccountNotEmpty, "Account still has transactions")
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ApplyDelta adds a signed delta to the account's persisted balance as
// a single store-level atomic increment, so concurrent ledger
// operations on the same account cannot lose updates.
func (s *accountService) ApplyDelta(accountID string, delta int64) error {
	res := s.db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// RecomputeBalance recomputes the account balance from its non-deleted
// transactions. The initial-balance transaction contributes its stored
// amount directly; everything else contributes its net effect.
func (s *accountService) RecomputeBalance(accountID string) (int64, error) {
	if _, err := s.GetAccountByID(accountID); err != nil {
		return 0, err
	}

	var transactions []models.Transaction
	if err := s.db.Where("account_id = ?", accountID).Find(&transactions).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var total int64
	for i := range transactions {
		t := &transactions[i]
		if t.IsInitialBalance {
			total += t.SeedAmount()
		} else {
			total += t.NetEffect()
		}
	}
	return total, nil
}

// AdjustBalance reconciles a manually-entered true balance against the
// computed one by synthesizing a correction transaction. Within epsilon
// it is a no-op and performs zero writes. Returns the synthesized
// transaction, or nil when no adjustment was needed.
func (s *accountService) AdjustBalance(accountID string, targetBalance int64, date time.Time) (*models.Transaction, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	difference := targetBalance - account.Balance
	if money.EqualWithin(money.FromCents(targetBalance), money.FromCents(account.Balance)) {
		return nil, nil
	}

	if date.IsZero() {
		date = time.Now()
	}

	adjType := models.TransactionTypeIncome
	amount := difference
	if difference < 0 {
		adjType = models.TransactionTypeExpense
		amount = -difference
	}

	adjustment := &models.Transaction{
		Date:        date,
		Description: "Balance adjustment",
		Type:        adjType,
		AccountID:   account.ID,
		Category:    models.CategoryBalanceAdjustment,
		Amount:      amount,
		Currency:    account.Currency,
	}
	if err := s.db.Create(adjustment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// The delta is applied directly rather than through the net effect
	// of the synthetic transaction; the sign is already exact, so the
	// stored amount and the applied delta cannot diverge by rounding.
	if err := s.ApplyDelta(account.ID, difference); err != nil {
		logger.Get().Errorw("balance adjustment partially applied: correction transaction written, balance not updated",
			"account_id", account.ID,
			"transaction_id", adjustment.ID,
			"difference", difference,
			"error", err,
		)
		return nil, err
	}

	return adjustment, nil
}
