// Package deposits implements the deposit approval workflow: users request
// deposits, admins review pending requests oldest-first and approve them.
// Approval flips the status and credits the ledger in one transaction.
package deposits

import (
	"errors"
	"fmt"
	"time"

	"trading_platform/internal/domain"
	"trading_platform/internal/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a deposit does not exist or was already
// approved. Double approval is indistinguishable from a missing deposit.
var ErrNotFound = errors.New("deposit not found or already processed")

// ErrInvalidDeposit is returned when a deposit request fails validation.
var ErrInvalidDeposit = errors.New("invalid deposit request")

// PendingDeposit is a pending deposit joined with its requester, as shown in
// the admin review queue.
type PendingDeposit struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Workflow manages deposit requests against an injected database handle.
type Workflow struct {
	db *gorm.DB
}

// NewWorkflow creates a deposit workflow.
func NewWorkflow(db *gorm.DB) *Workflow {
	return &Workflow{db: db}
}

// Request records a pending deposit for the user. No balance change happens
// until an admin approves the request.
func (w *Workflow) Request(userID uint, amount decimal.Decimal, currency string) (*domain.Deposit, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidDeposit)
	}
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidDeposit)
	}
	deposit := &domain.Deposit{
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Status:   domain.DepositStatusPending,
	}
	if err := w.db.Create(deposit).Error; err != nil {
		return nil, err
	}
	return deposit, nil
}

// ListPending returns all pending deposits joined with the requesting user,
// oldest-first (FIFO review order). Pure read.
func (w *Workflow) ListPending() ([]PendingDeposit, error) {
	pending := make([]PendingDeposit, 0)
	err := w.db.Table("deposits").
		Select("deposits.id, deposits.user_id, users.username, users.email, deposits.amount, deposits.currency, deposits.status, deposits.created_at").
		Joins("JOIN users ON users.id = deposits.user_id").
		Where("deposits.status = ?", domain.DepositStatusPending).
		Order("deposits.created_at ASC").
		Scan(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// Approve marks a pending deposit approved and credits the requester's
// balance, atomically. The deposit row is locked and fetched with a pending
// status predicate: a concurrent or repeated approval finds no row and fails
// with ErrNotFound, so the credit is applied exactly once.
func (w *Workflow) Approve(depositID uint) (*domain.Deposit, error) {
	var deposit domain.Deposit
	err := w.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", depositID, domain.DepositStatusPending).
			First(&deposit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		now := time.Now()
		err = tx.Model(&deposit).Updates(map[string]any{
			"status":      domain.DepositStatusApproved,
			"approved_at": now,
		}).Error
		if err != nil {
			return err
		}
		return ledger.Credit(tx, deposit.UserID, deposit.Amount)
	})
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}
