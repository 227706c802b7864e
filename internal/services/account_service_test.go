package services

import (
	"testing"
	"time"

	"cuentas/internal/models"
	"cuentas/internal/pagination"
	"cuentas/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	t.Run("creates_account_with_zero_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("Checking", models.CurrencyEUR, "bank", 0, time.Now())
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected non-empty account ID")
		}
		testutil.AssertBalance(t, account.Balance, 0)

		// No seed transaction for a zero initial balance.
		var count int64
		db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no seed transaction, found %d", count)
		}
	})

	t.Run("initial_balance_seeds_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("Savings", models.CurrencyEUR, "", 150000, time.Now())
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, account.Balance, 150000)

		var seed models.Transaction
		err = db.Where("account_id = ?", account.ID).First(&seed).Error
		testutil.AssertNoError(t, err)
		if !seed.IsInitialBalance {
			t.Error("expected seed transaction to be marked as initial balance")
		}
		if seed.Type != models.TransactionTypeIncome || seed.Amount != 150000 {
			t.Errorf("expected income seed of 150000, got %s %d", seed.Type, seed.Amount)
		}
	})

	t.Run("negative_initial_balance_seeds_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("Overdrawn", models.CurrencyUSD, "", -5000, time.Now())
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, account.Balance, -5000)

		var seed models.Transaction
		err = db.Where("account_id = ?", account.ID).First(&seed).Error
		testutil.AssertNoError(t, err)
		if seed.Type != models.TransactionTypeExpense || seed.Amount != 5000 {
			t.Errorf("expected expense seed of 5000, got %s %d", seed.Type, seed.Amount)
		}
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("Checking", models.CurrencyEUR, "", 0, time.Now())
		testutil.AssertNoError(t, err)

		_, err = svc.CreateAccount("CHECKING", models.CurrencyEUR, "", 0, time.Now())
		testutil.AssertAppError(t, err, "DUPLICATE_ACCOUNT_NAME")
	})

	t.Run("invalid_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("Checking", "XYZ", "", 0, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.CreateAccount("", models.CurrencyEUR, "", 0, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetAccounts(t *testing.T) {
	t.Run("paginates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		for i := 0; i < 5; i++ {
			testutil.CreateTestAccount(t, db)
		}

		result, err := svc.GetAccounts(pagination.PageRequest{Page: 1, PageSize: 3})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 3 {
			t.Errorf("expected 3 accounts on page, got %d", len(result.Data))
		}
		if result.TotalItems != 5 {
			t.Errorf("expected 5 total accounts, got %d", result.TotalItems)
		}
		if result.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", result.TotalPages)
		}
	})
}

func TestApplyDelta(t *testing.T) {
	t.Run("applies_signed_deltas", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		testutil.AssertNoError(t, svc.ApplyDelta(account.ID, 2500))
		testutil.AssertNoError(t, svc.ApplyDelta(account.ID, -500))

		updated, err := svc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 12000)
	})

	t.Run("unknown_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		err := svc.ApplyDelta("00000000-0000-7000-8000-000000000000", 100)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("deletes_empty_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccount(t, db)

		testutil.AssertNoError(t, svc.DeleteAccount(account.ID))

		_, err := svc.GetAccountByID(account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("rejects_nonzero_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 100)

		err := svc.DeleteAccount(account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_EMPTY")
	})

	t.Run("rejects_account_with_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccount(t, db)
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, 1000, 0)
		// Bring the balance back to zero so only the transaction guard fires.
		testutil.AssertNoError(t, svc.ApplyDelta(account.ID, -1000))

		err := svc.DeleteAccount(account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_EMPTY")
	})
}

func TestRecomputeBalance(t *testing.T) {
	t.Run("matches_stored_balance_after_writes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, err := svc.CreateAccount("Main", models.CurrencyEUR, "", 100000, time.Now())
		testutil.AssertNoError(t, err)

		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeIncome, 25000, 0)
		testutil.CreateTestTransaction(t, db, account, models.TransactionTypeExpense, 10000, 2100)

		computed, err := svc.RecomputeBalance(account.ID)
		testutil.AssertNoError(t, err)

		updated, err := svc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 100000+25000-12100)
		testutil.AssertBalance(t, computed, updated.Balance)
	})

	t.Run("initial_balance_counts_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		// An expense-typed seed contributes its stored amount negatively,
		// never through tax.
		account, err := svc.CreateAccount("Seeded", models.CurrencyEUR, "", -7500, time.Now())
		testutil.AssertNoError(t, err)

		computed, err := svc.RecomputeBalance(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, computed, -7500)
	})
}

func TestAdjustBalance(t *testing.T) {
	t.Run("writes_correction_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		adjustment, err := svc.AdjustBalance(account.ID, 12345, time.Now())
		testutil.AssertNoError(t, err)
		if adjustment == nil {
			t.Fatal("expected a correction transaction")
		}
		if adjustment.Type != models.TransactionTypeIncome || adjustment.Amount != 2345 {
			t.Errorf("expected income correction of 2345, got %s %d", adjustment.Type, adjustment.Amount)
		}
		if adjustment.Category != models.CategoryBalanceAdjustment {
			t.Errorf("expected category %q, got %q", models.CategoryBalanceAdjustment, adjustment.Category)
		}

		updated, err := svc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 12345)
	})

	t.Run("downward_adjustment_is_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		adjustment, err := svc.AdjustBalance(account.ID, 4000, time.Now())
		testutil.AssertNoError(t, err)
		if adjustment.Type != models.TransactionTypeExpense || adjustment.Amount != 6000 {
			t.Errorf("expected expense correction of 6000, got %s %d", adjustment.Type, adjustment.Amount)
		}

		updated, err := svc.GetAccountByID(account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 4000)
	})

	t.Run("noop_within_epsilon", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		adjustment, err := svc.AdjustBalance(account.ID, 10000, time.Now())
		testutil.AssertNoError(t, err)
		if adjustment != nil {
			t.Fatal("expected no correction transaction for an equal balance")
		}

		var count int64
		db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected zero writes, found %d transactions", count)
		}
	})

	t.Run("one_cent_difference_adjusts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		account := testutil.CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 10000)

		// One cent is above the 0.001 comparison epsilon.
		adjustment, err := svc.AdjustBalance(account.ID, 10001, time.Now())
		testutil.AssertNoError(t, err)
		if adjustment == nil {
			t.Fatal("expected a one-cent correction")
		}
		if adjustment.Amount != 1 {
			t.Errorf("expected correction of 1 cent, got %d", adjustment.Amount)
		}
	})
}
