package main

import (
	"context" // context package is needed for Redis operations

	"trading_platform/internal/api"        // API handlers
	"trading_platform/internal/config"     // Configuration
	"trading_platform/internal/db"         // Database connection
	"trading_platform/internal/deposits"   // Deposit workflow
	"trading_platform/internal/middleware" // Middleware
	"trading_platform/internal/trading"    // Trade execution engine

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration; fails fast on missing DB/JWT settings

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Core services share the injected database handle
	engine := trading.NewEngine(gdb)
	workflow := deposits.NewWorkflow(gdb)

	r := gin.Default() // Gin router instance

	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Auth routes
	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", api.RegisterHandler(gdb))
	authGroup.POST("/login", api.LoginHandler(gdb, cfg.JWTSecret, cfg.AdminEmail))

	// Authenticated auth routes
	authProtected := authGroup.Group("")
	authProtected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authProtected.GET("/balance", api.BalanceHandler(gdb, redisClient))
	authProtected.GET("/check", api.CheckHandler(cfg.JWTSecret))
	authProtected.POST("/refresh", api.RefreshHandler(cfg.JWTSecret))

	// Trade routes (protected by JWT)
	tradesGroup := r.Group("/api/trades")
	tradesGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	tradesGroup.POST("/buy", api.BuyHandler(engine, redisClient))
	tradesGroup.POST("/sell", api.SellHandler(engine, redisClient))
	tradesGroup.GET("/positions", api.PositionsHandler(engine, redisClient))

	// Deposit routes (protected by JWT)
	depositsGroup := r.Group("/api/deposits")
	depositsGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	depositsGroup.POST("", api.RequestDepositHandler(workflow, redisClient))

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware())
	adminGroup.GET("/deposits", api.ListPendingDepositsHandler(workflow, redisClient))
	adminGroup.POST("/deposits/:id/approve", api.ApproveDepositHandler(workflow, redisClient))

	logrus.Info("Server running on " + cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
