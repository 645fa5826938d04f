package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User Model
type User struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	Username  string          `gorm:"uniqueIndex;size:50;not null" json:"username"` // Unique username
	Email     string          `gorm:"uniqueIndex;size:255;not null" json:"email"`   // Unique email, used for login
	Password  string          `gorm:"size:255;not null" json:"-"`                   // Hashed password, never serialized
	Balance   decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"balance"`   // Account balance, mutated only through the ledger
	CreatedAt time.Time       `json:"created_at"`
}
