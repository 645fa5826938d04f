// Package trading executes buy and sell orders against the ledger. Each
// execution is a single database transaction: the trade row and the balance
// change either both commit or both roll back.
package trading

import (
	"errors"
	"fmt"

	"trading_platform/internal/domain"
	"trading_platform/internal/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidOrder is returned when an order fails validation.
var ErrInvalidOrder = errors.New("invalid order")

// Order is a validated trade request. Prices are client-supplied; the total
// value is always recomputed server-side from amount and price.
type Order struct {
	Symbol     string
	Amount     decimal.Decimal
	Price      decimal.Decimal
	StopLoss   *decimal.Decimal
	TakeProfit *decimal.Decimal
}

// Validate checks the order preconditions.
func (o Order) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidOrder)
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidOrder)
	}
	return nil
}

// TotalValue is the server-computed cost or proceeds of the order.
func (o Order) TotalValue() decimal.Decimal {
	return o.Amount.Mul(o.Price)
}

// Engine executes trades against an injected database handle.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a trade execution engine.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// ExecuteBuy debits the user by the order's total value and records a buy
// trade. The debit locks the user row, so concurrent buys from the same user
// serialize and the sufficiency check cannot be raced past. Any failure rolls
// the whole transaction back.
func (e *Engine) ExecuteBuy(userID uint, order Order) (*domain.Trade, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	total := order.TotalValue()
	trade := e.newTrade(userID, domain.TradeTypeBuy, order, total)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		// Debit first: it takes the user row lock and performs the
		// sufficiency check under it.
		if err := ledger.Debit(tx, userID, total); err != nil {
			return err
		}
		return tx.Create(trade).Error
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// ExecuteSell credits the user by the order's total value and records a sell
// trade. Sells are not validated against held positions: trades are synthetic
// and a sell realizes an external position.
func (e *Engine) ExecuteSell(userID uint, order Order) (*domain.Trade, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	total := order.TotalValue()
	trade := e.newTrade(userID, domain.TradeTypeSell, order, total)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return err
		}
		return ledger.Credit(tx, userID, total)
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// ListPositions returns the user's trades newest-first, optionally filtered
// by status. Pure read, no transaction required.
func (e *Engine) ListPositions(userID uint, status string) ([]domain.Trade, error) {
	query := e.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	trades := make([]domain.Trade, 0)
	if err := query.Order("created_at DESC").Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

func (e *Engine) newTrade(userID uint, tradeType string, order Order, total decimal.Decimal) *domain.Trade {
	return &domain.Trade{
		UserID:     userID,
		Type:       tradeType,
		Symbol:     order.Symbol,
		Amount:     order.Amount,
		Price:      order.Price,
		TotalValue: total,
		StopLoss:   order.StopLoss,
		TakeProfit: order.TakeProfit,
	}
}
