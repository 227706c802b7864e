package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cuentas/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an admin user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates an admin user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an EUR account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, models.CurrencyEUR, 0)
}

// CreateTestAccountWithBalance creates an account with the given currency and
// balance (in cents).
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, currency models.Currency, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Currency: currency,
		Balance:  balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a transaction on the given account and applies
// its net effect to the account balance, mirroring the service write path.
func CreateTestTransaction(t *testing.T, db *gorm.DB, account *models.Account, txType models.TransactionType, amount, tax int64) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		Date:        time.Now(),
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Type:        txType,
		AccountID:   account.ID,
		Category:    "Sales",
		Amount:      amount,
		Tax:         tax,
		Currency:    account.Currency,
	}
	if transaction.Type == models.TransactionTypeExpense {
		transaction.Category = "Supplies"
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	if err := db.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("balance", gorm.Expr("balance + ?", transaction.NetEffect())).Error; err != nil {
		t.Fatalf("failed to apply test transaction effect: %v", err)
	}
	return transaction
}

// CreateTestSettings creates the settings row with the default vocabularies.
func CreateTestSettings(t *testing.T, db *gorm.DB) *models.Settings {
	t.Helper()

	settings := &models.Settings{
		IncomeCategories:   models.StringList{"Sales", "Services"},
		ExpenseCategories:  models.StringList{"Supplies", "Software"},
		NextInvoiceNumber:  1,
		NextProformaNumber: 1,
	}
	settings.ID = models.SettingsID
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("failed to create test settings: %v", err)
	}
	return settings
}

// CreateTestDocument creates an owed document of the given kind.
func CreateTestDocument(t *testing.T, db *gorm.DB, kind models.DocumentKind, amount, tax int64) *models.Document {
	t.Helper()

	document := &models.Document{
		Kind:       kind,
		Number:     nextID(),
		ClientName: fmt.Sprintf("Test Client %d", nextID()),
		IssueDate:  time.Now(),
		Amount:     amount,
		Tax:        tax,
		Total:      amount + tax,
		Status:     models.DocumentStatusOwed,
	}
	if err := db.Create(document).Error; err != nil {
		t.Fatalf("failed to create test document: %v", err)
	}
	return document
}
