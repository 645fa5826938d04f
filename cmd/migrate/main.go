package main

import (
	"trading_platform/internal/config" // Configuration
	"trading_platform/internal/db"     // Database migration
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DatabaseURL)
}
