package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"trading_platform/internal/deposits"
	"trading_platform/internal/middleware"
	"trading_platform/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library
)

// DepositRequest is the deposit submission payload.
type DepositRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
}

// RequestDepositHandler records a pending deposit for the authenticated
// user. The balance is untouched until an admin approves.
func RequestDepositHandler(workflow *deposits.Workflow, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount and currency are required"})
			return
		}
		deposit, err := workflow.Request(userID, req.Amount, req.Currency)
		if errors.Is(err, deposits.ErrInvalidDeposit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Deposit request failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error submitting deposit request"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"deposit_id": deposit.ID,
			"amount":     deposit.Amount,
			"currency":   deposit.Currency,
		}).Info("Deposit requested")
		// New pending row makes the admin review queue stale.
		_ = utils.DeleteCache(context.Background(), rdb, utils.PendingDepositsKey())
		c.JSON(http.StatusCreated, gin.H{
			"message": "Deposit request submitted and pending admin approval",
			"deposit": deposit,
		})
	}
}
