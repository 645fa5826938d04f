package db

import (
	"fmt"
	"os"
	"testing"
	"time"

	"trading_platform/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SetupTestDB connects to the database named by TEST_DATABASE_URL and
// migrates the schema. Tests that need a database skip when the variable is
// unset.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}
	gdb, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.User{}, &domain.Trade{}, &domain.Deposit{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return gdb
}

// CleanupTestDB removes all rows created during a test.
func CleanupTestDB(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	for _, table := range []string{"trades", "deposits", "users"} {
		if err := gdb.Exec(fmt.Sprintf("DELETE FROM %s WHERE id > 0", table)).Error; err != nil {
			t.Logf("Warning: failed to clean up table %s: %v", table, err)
		}
	}
}

// CreateTestUser inserts a user with the given balance and returns its id.
// Usernames are made unique so tests can run against a shared database.
func CreateTestUser(t *testing.T, gdb *gorm.DB, username string, balance decimal.Decimal) uint {
	t.Helper()
	unique := fmt.Sprintf("%s_%d", username, time.Now().UnixNano())
	user := domain.User{
		Username: unique,
		Email:    unique + "@test.com",
		Password: "not-a-real-hash",
		Balance:  balance,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.ID
}
