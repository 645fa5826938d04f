package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Time durations

	"trading_platform/internal/domain"
	"trading_platform/internal/ledger"
	"trading_platform/internal/middleware"
	"trading_platform/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUser is the user view returned by login and check.
type AuthUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64
}

// RegisterHandler creates a new user with a zero balance.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		email := strings.ToLower(req.Email)
		// Reject duplicates before hashing; the unique indexes are the
		// real guard under concurrency.
		var count int64
		if err := db.Model(&domain.User{}).
			Where("username = ? OR email = ?", req.Username, email).
			Count(&count).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Registration lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during registration"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{
			Username: req.Username,
			Email:    email,
			Password: string(hash),
			Balance:  decimal.Zero,
		}
		if err := db.Create(&user).Error; err != nil {
			// Duplicate insert racing past the pre-check lands here.
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"user":    AuthUser{ID: user.ID, Username: user.Username, Email: user.Email},
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token. The admin flag
// is derived from the configured admin email, never stored on the user row.
func LoginHandler(db *gorm.DB, jwtSecret, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		var user domain.User
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		isAdmin := user.Email == adminEmail
		token, err := utils.GenerateJWT(user.ID, user.Username, user.Email, isAdmin, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user":    AuthUser{ID: user.ID, Username: user.Username, Email: user.Email, IsAdmin: isAdmin},
		})
	}
}

// BalanceHandler returns the authenticated user's balance. Reads go through
// the Redis cache; the cache is invalidated by every balance mutation.
func BalanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()
		cacheKey := utils.BalanceKey(userID)
		var cached decimal.Decimal
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"balance": cached, "cached": true})
			return
		}
		balance, err := ledger.GetBalance(db, userID)
		if errors.Is(err, ledger.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("Balance lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching balance"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, balance, 30*time.Second)
		c.JSON(http.StatusOK, gin.H{"balance": balance})
	}
}

// CheckHandler reports whether the request carries a valid principal.
func CheckHandler(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, exists := c.Get(middleware.ContextToken)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
			return
		}
		claims, err := utils.ParseJWT(tokenStr.(string), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"authenticated": true,
			"user":          AuthUser{ID: claims.UserID, Username: claims.Username, Email: claims.Email, IsAdmin: claims.IsAdmin},
		})
	}
}

// RefreshHandler issues a new token with extended expiry for a valid token.
func RefreshHandler(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, exists := c.Get(middleware.ContextToken)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}
		token, err := utils.RefreshJWT(tokenStr.(string), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token refreshed successfully", "token": token})
	}
}
