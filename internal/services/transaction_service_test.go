package services

import (
	"testing"
	"time"

	"cuentas/internal/models"
	"cuentas/internal/pagination"
	"cuentas/internal/testutil"
)

func TestCreateLedgerTransaction(t *testing.T) {
	t.Run("income_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Consulting work",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Sales",
			Amount:      50000,
		})
		testutil.AssertNoError(t, err)
		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if tx.Currency != models.CurrencyEUR {
			t.Errorf("expected currency denormalized from account, got %s", tx.Currency)
		}

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 60000)
	})

	t.Run("expense_subtracts_amount_plus_tax", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 100000)

		_, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Laptop",
			Type:        models.TransactionTypeExpense,
			AccountID:   account.ID,
			Category:    "Supplies",
			Amount:      100000,
			Tax:         21000,
		})
		testutil.AssertNoError(t, err)

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 100000-121000)
	})

	t.Run("exact_percentage_of_large_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		// 10% tax on 1000.00 must be exactly 100.00: integer cents in
		// the store leave no room for float drift.
		_, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Big purchase",
			Type:        models.TransactionTypeExpense,
			AccountID:   account.ID,
			Category:    "Supplies",
			Amount:      100000,
			Tax:         10000,
		})
		testutil.AssertNoError(t, err)

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, -110000)
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccount(t, db)

		_, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Mystery",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Not A Category",
			Amount:      1000,
		})
		testutil.AssertAppError(t, err, "UNKNOWN_CATEGORY")
	})

	t.Run("builtin_category_always_accepted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccount(t, db)

		_, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Manual correction",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    models.CategoryBalanceAdjustment,
			Amount:      1000,
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("unknown_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))

		_, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Orphan",
			Type:        models.TransactionTypeIncome,
			AccountID:   "00000000-0000-7000-8000-000000000000",
			Category:    "Sales",
			Amount:      1000,
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccount(t, db)

		_, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Nothing",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Sales",
			Amount:      0,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateLedgerTransaction(t *testing.T) {
	t.Run("same_account_edit_applies_net_difference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Invoice payment",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Sales",
			Amount:      50000,
		})
		testutil.AssertNoError(t, err)

		newAmount := int64(30000)
		_, err = transactions.UpdateTransaction(tx.ID, TransactionUpdateFields{Amount: &newAmount})
		testutil.AssertNoError(t, err)

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 30000)
	})

	t.Run("type_flip_reverts_and_reapplies", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Mislabeled",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Sales",
			Amount:      10000,
		})
		testutil.AssertNoError(t, err)

		expense := models.TransactionTypeExpense
		category := "Supplies"
		_, err = transactions.UpdateTransaction(tx.ID, TransactionUpdateFields{Type: &expense, Category: &category})
		testutil.AssertNoError(t, err)

		// +10000 reverted, then -10000 applied.
		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, -10000)
	})

	t.Run("account_move_reverts_old_and_applies_new", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		first := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)
		second := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Wrong account",
			Type:        models.TransactionTypeIncome,
			AccountID:   first.ID,
			Category:    "Sales",
			Amount:      20000,
		})
		testutil.AssertNoError(t, err)

		moved, err := transactions.UpdateTransaction(tx.ID, TransactionUpdateFields{AccountID: &second.ID})
		testutil.AssertNoError(t, err)
		if moved.AccountID != second.ID {
			t.Errorf("expected transaction moved to %s, got %s", second.ID, moved.AccountID)
		}

		firstAfter, err := accounts.GetAccountByID(first.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, firstAfter.Balance, 0)

		secondAfter, err := accounts.GetAccountByID(second.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, secondAfter.Balance, 20000)
	})

	t.Run("rejects_initial_balance_edit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))

		account, err := accounts.CreateAccount("Seeded", models.CurrencyEUR, "", 50000, time.Now())
		testutil.AssertNoError(t, err)

		var seed models.Transaction
		testutil.AssertNoError(t, db.Where("account_id = ?", account.ID).First(&seed).Error)

		newAmount := int64(1)
		_, err = transactions.UpdateTransaction(seed.ID, TransactionUpdateFields{Amount: &newAmount})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_EDITABLE")
	})

	t.Run("unknown_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))

		desc := "ghost"
		_, err := transactions.UpdateTransaction("00000000-0000-7000-8000-000000000000", TransactionUpdateFields{Description: &desc})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteLedgerTransaction(t *testing.T) {
	t.Run("delete_reverts_balance_effect", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Office chair",
			Type:        models.TransactionTypeExpense,
			AccountID:   account.ID,
			Category:    "Supplies",
			Amount:      4000,
			Tax:         840,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, transactions.DeleteTransaction(tx.ID))

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 10000)
	})

	t.Run("double_delete_reverts_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "One-off",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Sales",
			Amount:      5000,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, transactions.DeleteTransaction(tx.ID))
		err = transactions.DeleteTransaction(tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 0)
	})

	t.Run("delete_succeeds_when_account_is_gone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		tx, err := transactions.CreateTransaction(TransactionInput{
			Date:        time.Now(),
			Description: "Orphaned income",
			Type:        models.TransactionTypeIncome,
			AccountID:   account.ID,
			Category:    "Sales",
			Amount:      5000,
		})
		testutil.AssertNoError(t, err)

		// The account vanishes out from under the transaction.
		testutil.AssertNoError(t, db.Delete(&models.Account{}, "id = ?", account.ID).Error)

		// The balance revert has nowhere to go; the delete still wins.
		testutil.AssertNoError(t, transactions.DeleteTransaction(tx.ID))

		var count int64
		db.Model(&models.Transaction{}).Where("id = ?", tx.ID).Count(&count)
		if count != 0 {
			t.Error("expected the transaction row to be deleted")
		}
	})

	t.Run("delete_with_missing_account_still_reopens_invoice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		settings := NewSettingsService(db)
		transactions := NewTransactionService(db, accounts, settings)
		documents := NewDocumentService(db, transactions, settings)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)

		invoice, err := documents.CreateDocument(models.DocumentKindInvoice, "Acme", time.Now(), 100000, 21000)
		testutil.AssertNoError(t, err)

		collection, err := documents.MarkInvoiceCollected(invoice.ID, PaymentDetails{AccountID: account.ID})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, db.Delete(&models.Account{}, "id = ?", account.ID).Error)

		testutil.AssertNoError(t, transactions.DeleteTransaction(collection.ID))

		reopened, err := documents.GetDocumentByID(invoice.ID)
		testutil.AssertNoError(t, err)
		if reopened.Status != models.DocumentStatusOwed {
			t.Errorf("expected invoice back to owed, got %s", reopened.Status)
		}
		if reopened.LinkedTransactionID != nil {
			t.Error("expected the transaction link cleared")
		}
	})

	t.Run("initial_balance_delete_reverts_seed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))

		account, err := accounts.CreateAccount("Seeded", models.CurrencyEUR, "", 50000, time.Now())
		testutil.AssertNoError(t, err)

		var seed models.Transaction
		testutil.AssertNoError(t, db.Where("account_id = ?", account.ID).First(&seed).Error)

		testutil.AssertNoError(t, transactions.DeleteTransaction(seed.ID))

		updated, err := accounts.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 0)
	})
}

func TestGetLedgerTransactions(t *testing.T) {
	t.Run("filters_by_type_and_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestSettings(t, db)
		accounts := NewAccountService(db)
		transactions := NewTransactionService(db, accounts, NewSettingsService(db))
		first := testutil.CreateTestAccount(t, db)
		second := testutil.CreateTestAccount(t, db)

		testutil.CreateTestTransaction(t, db, first, models.TransactionTypeIncome, 1000, 0)
		testutil.CreateTestTransaction(t, db, first, models.TransactionTypeExpense, 2000, 0)
		testutil.CreateTestTransaction(t, db, second, models.TransactionTypeIncome, 3000, 0)

		income := models.TransactionTypeIncome
		result, err := transactions.GetTransactions(pagination.PageRequest{}, TransactionFilter{
			Type:      &income,
			AccountID: &first.ID,
		})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(result.Data))
		}
		if result.Data[0].Amount != 1000 {
			t.Errorf("expected the 1000-cent income, got %d", result.Data[0].Amount)
		}
	})
}
