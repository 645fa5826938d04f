package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Time durations

	"trading_platform/internal/domain"
	"trading_platform/internal/ledger"
	"trading_platform/internal/middleware"
	"trading_platform/internal/trading"
	"trading_platform/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library
)

// TradeRequest is the buy/sell payload. Amount and price are validated by
// the engine; the total value is always recomputed server-side.
type TradeRequest struct {
	Symbol     string           `json:"symbol" binding:"required"`
	Amount     decimal.Decimal  `json:"amount" binding:"required"`
	Price      decimal.Decimal  `json:"price" binding:"required"`
	StopLoss   *decimal.Decimal `json:"stopLoss"`
	TakeProfit *decimal.Decimal `json:"takeProfit"`
}

func (r TradeRequest) order() trading.Order {
	return trading.Order{
		Symbol:     r.Symbol,
		Amount:     r.Amount,
		Price:      r.Price,
		StopLoss:   r.StopLoss,
		TakeProfit: r.TakeProfit,
	}
}

// BuyHandler executes a buy trade for the authenticated user.
func BuyHandler(engine *trading.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol, amount, and price are required"})
			return
		}
		trade, err := engine.ExecuteBuy(userID, req.order())
		if err != nil {
			respondTradeError(c, userID, domain.TradeTypeBuy, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"trade_id":    trade.ID,
			"symbol":      trade.Symbol,
			"total_value": trade.TotalValue,
			"type":        trade.Type,
		}).Info("Trade executed")
		invalidateTradeCaches(c, rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"message": "Trade executed successfully", "trade": trade})
	}
}

// SellHandler executes a sell trade for the authenticated user. Sells carry
// no holdings check and always succeed once valid.
func SellHandler(engine *trading.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol, amount, and price are required"})
			return
		}
		trade, err := engine.ExecuteSell(userID, req.order())
		if err != nil {
			respondTradeError(c, userID, domain.TradeTypeSell, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"trade_id":    trade.ID,
			"symbol":      trade.Symbol,
			"total_value": trade.TotalValue,
			"type":        trade.Type,
		}).Info("Trade executed")
		invalidateTradeCaches(c, rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"message": "Trade executed successfully", "trade": trade})
	}
}

// PositionsHandler lists the authenticated user's trades, newest-first,
// optionally filtered by status.
func PositionsHandler(engine *trading.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		status := c.Query("status")
		ctx := context.Background()
		cacheKey := utils.PositionsKey(userID, status)
		var cached []domain.Trade
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		trades, err := engine.ListPositions(userID, status)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Failed to fetch positions")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching positions"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, trades, 30*time.Second)
		c.JSON(http.StatusOK, trades)
	}
}

// respondTradeError maps engine errors onto the HTTP taxonomy. Insufficiency
// carries the required/available detail; unexpected errors are logged and
// reduced to a generic 500.
func respondTradeError(c *gin.Context, userID uint, tradeType string, err error) {
	var insufficient *ledger.InsufficientFundsError
	switch {
	case errors.Is(err, trading.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Insufficient balance",
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"type":    tradeType,
			"error":   err.Error(),
		}).Error("Trade failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error executing trade"})
	}
}

// invalidateTradeCaches drops the read caches a trade makes stale: the
// balance and the common positions views.
func invalidateTradeCaches(c *gin.Context, rdb *redis.Client, userID uint) {
	ctx := context.Background()
	_ = utils.DeleteCache(ctx, rdb,
		utils.BalanceKey(userID),
		utils.PositionsKey(userID, ""),
		utils.PositionsKey(userID, "open"),
	)
}
