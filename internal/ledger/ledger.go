// Package ledger is the single source of truth for user balances. All
// mutations are relative (delta) operations and must run inside a caller
// supplied transaction: Debit and Credit take the user's row lock, so
// concurrent mutations on the same user serialize at the database.
package ledger

import (
	"errors"
	"fmt"

	"trading_platform/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUserNotFound is returned when the user row does not exist.
var ErrUserNotFound = errors.New("user not found")

// InsufficientFundsError reports a failed sufficiency check on debit.
type InsufficientFundsError struct {
	Required  decimal.Decimal // Amount the operation needed
	Available decimal.Decimal // Balance at the time of the check
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s", e.Required, e.Available)
}

// GetBalance returns the user's current balance.
func GetBalance(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	var user domain.User
	if err := db.Select("balance").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.Balance, nil
}

// lockUser fetches the user row with SELECT ... FOR UPDATE. The lock is held
// until the enclosing transaction commits or rolls back.
func lockUser(tx *gorm.DB, userID uint) (*domain.User, error) {
	var user domain.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Debit subtracts amount from the user's balance inside tx. It locks the user
// row, re-reads the balance under the lock, and fails with
// InsufficientFundsError when the balance cannot cover the amount. The check
// and the write happen under the same row lock, so a balance can never go
// negative through this path.
func Debit(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	user, err := lockUser(tx, userID)
	if err != nil {
		return err
	}
	if user.Balance.LessThan(amount) {
		return &InsufficientFundsError{Required: amount, Available: user.Balance}
	}
	return tx.Model(&domain.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance - ?", amount)).Error
}

// Credit adds amount to the user's balance inside tx. There is no upper
// bound; the row lock only serializes concurrent mutations.
func Credit(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	if _, err := lockUser(tx, userID); err != nil {
		return err
	}
	return tx.Model(&domain.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}
