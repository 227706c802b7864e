package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "cuentas/internal/errors"
	"cuentas/internal/models"
)

// Default category vocabularies, installed the first time settings are read.
var (
	defaultIncomeCategories = models.StringList{
		"Sales", "Services", "Interest", "Other Income",
	}
	defaultExpenseCategories = models.StringList{
		"Supplies", "Software", "Travel", "Taxes", "Payroll", "Other Expense",
	}
)

// settingsService manages the single composite settings row.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// Get returns the settings row, creating it with defaults on first use.
func (s *settingsService) Get() (*models.Settings, error) {
	var settings models.Settings
	err := s.db.Where("id = ?", models.SettingsID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settings = models.Settings{
		IncomeCategories:   defaultIncomeCategories,
		ExpenseCategories:  defaultExpenseCategories,
		NextInvoiceNumber:  1,
		NextProformaNumber: 1,
	}
	settings.ID = models.SettingsID
	if err := s.db.Create(&settings).Error; err != nil {
		// A concurrent first read may have created the row already.
		var existing models.Settings
		if err2 := s.db.Where("id = ?", models.SettingsID).First(&existing).Error; err2 == nil {
			return &existing, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// Update applies the provided fields to the settings row.
func (s *settingsService) Update(fields SettingsUpdateFields) (*models.Settings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	if fields.IncomeCategories != nil {
		settings.IncomeCategories = models.StringList(*fields.IncomeCategories)
	}
	if fields.ExpenseCategories != nil {
		settings.ExpenseCategories = models.StringList(*fields.ExpenseCategories)
	}
	if fields.DefaultTaxRateBps != nil {
		if *fields.DefaultTaxRateBps < 0 || *fields.DefaultTaxRateBps > 10000 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tax rate must be between 0 and 10000 basis points")
		}
		settings.DefaultTaxRateBps = *fields.DefaultTaxRateBps
	}
	if fields.FiscalYearStartMonth != nil {
		if *fields.FiscalYearStartMonth < 1 || *fields.FiscalYearStartMonth > 12 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fiscal year start month must be between 1 and 12")
		}
		settings.FiscalYearStartMonth = *fields.FiscalYearStartMonth
	}

	if err := s.db.Save(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

// ValidCategory reports whether category is acceptable for the given
// transaction type: either a built-in ledger category or a member of
// the configured vocabulary for that type.
func (s *settingsService) ValidCategory(txType models.TransactionType, category string) (bool, error) {
	switch category {
	case models.CategoryTransfer,
		models.CategoryFee,
		models.CategoryBalanceAdjustment,
		models.CategoryInvoiceCollection,
		models.CategoryInitialBalance:
		return true, nil
	}

	settings, err := s.Get()
	if err != nil {
		return false, err
	}
	vocabulary := settings.ExpenseCategories
	if txType == models.TransactionTypeIncome {
		vocabulary = settings.IncomeCategories
	}
	// An emptied vocabulary means the user opted out of category checks.
	if len(vocabulary) == 0 {
		return true, nil
	}
	return vocabulary.Contains(category), nil
}

// ClaimNumber claims and returns the next document number for the given
// kind. The row is locked for the duration of the claim so two
// concurrent claims can never return the same number.
func (s *settingsService) ClaimNumber(kind models.DocumentKind) (int64, error) {
	if _, err := s.Get(); err != nil {
		return 0, err
	}

	var number int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var settings models.Settings
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", models.SettingsID).First(&settings).Error; err != nil {
			return err
		}

		column := "next_invoice_number"
		if kind == models.DocumentKindProforma {
			column = "next_proforma_number"
			number = settings.NextProformaNumber
		} else {
			number = settings.NextInvoiceNumber
		}

		return tx.Model(&models.Settings{}).
			Where("id = ?", models.SettingsID).
			Update(column, number+1).Error
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return number, nil
}
