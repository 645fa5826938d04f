package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade types
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Trade Model. A trade row is the immutable audit record for a balance
// mutation: it is never updated or deleted after creation.
type Trade struct {
	ID         uint             `gorm:"primaryKey" json:"id"`                           // Primary key
	UserID     uint             `gorm:"index;not null" json:"user_id"`                  // Owning user
	Type       string           `gorm:"size:4;not null" json:"type"`                    // buy or sell
	Symbol     string           `gorm:"size:16;not null" json:"symbol"`                 // Traded symbol
	Amount     decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"amount"`      // Traded quantity
	Price      decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"price"`       // Client-supplied unit price
	TotalValue decimal.Decimal  `gorm:"type:numeric(20,8);not null" json:"total_value"` // amount * price, always server-computed
	StopLoss   *decimal.Decimal `gorm:"type:numeric(20,8)" json:"stop_loss,omitempty"`
	TakeProfit *decimal.Decimal `gorm:"type:numeric(20,8)" json:"take_profit,omitempty"`
	Status     string           `gorm:"size:16;default:open" json:"status"` // Filterable; never written by the engine
	CreatedAt  time.Time        `json:"created_at"`
}
