package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit lifecycle states
const (
	DepositStatusPending  = "pending"
	DepositStatusApproved = "approved"
)

// Deposit Model. Created pending by a user request; transitions to approved
// exactly once, by an admin action that also credits the user's balance.
type Deposit struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	UserID     uint            `gorm:"index;not null" json:"user_id"`             // Requesting user
	Amount     decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"amount"` // Requested amount
	Currency   string          `gorm:"size:8;not null" json:"currency"`           // Requested currency code
	Status     string          `gorm:"size:16;not null;index" json:"status"`      // pending or approved
	CreatedAt  time.Time       `json:"created_at"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"` // Set when the deposit is approved
}
