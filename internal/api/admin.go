package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"trading_platform/internal/deposits"
	"trading_platform/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// ListPendingDepositsHandler returns all pending deposits joined with their
// requesters, oldest-first, for admin review.
func ListPendingDepositsHandler(workflow *deposits.Workflow, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := utils.PendingDepositsKey()
		var cached []deposits.PendingDeposit
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		pending, err := workflow.ListPending()
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch pending deposits")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching pending deposits"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, pending, 30*time.Second)
		c.JSON(http.StatusOK, pending)
	}
}

// ApproveDepositHandler approves a pending deposit and credits the
// requester's balance. A repeated or concurrent approval finds no pending
// row and reports 404.
func ApproveDepositHandler(workflow *deposits.Workflow, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		depositID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit id"})
			return
		}
		deposit, err := workflow.Approve(uint(depositID))
		if errors.Is(err, deposits.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found or already processed"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"deposit_id": depositID,
				"error":      err.Error(),
			}).Error("Deposit approval failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error approving deposit"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"deposit_id": deposit.ID,
			"user_id":    deposit.UserID,
			"amount":     deposit.Amount,
		}).Info("Deposit approved")
		// The credit changes the user's balance and empties this row out
		// of the review queue.
		_ = utils.DeleteCache(context.Background(), rdb,
			utils.PendingDepositsKey(),
			utils.BalanceKey(deposit.UserID),
		)
		c.JSON(http.StatusOK, gin.H{"message": "Deposit approved and balance updated"})
	}
}
