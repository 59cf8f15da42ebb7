package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// ApprovalThreshold is the amount above which AllOwners-signed accounts
	// route transactions through the approval workflow.
	ApprovalThreshold decimal.Decimal

	// SweepInterval is how often the expired hold sweep runs.
	SweepInterval time.Duration

	// PostingRateLimit is a ulule/limiter rate string such as "100-M" applied to
	// the posting endpoint per client IP.
	PostingRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("APPROVAL_THRESHOLD", "10000")
	viper.SetDefault("SWEEP_INTERVAL", "1m")
	viper.SetDefault("POSTING_RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	thresholdStr := viper.GetString("APPROVAL_THRESHOLD")
	threshold, err := decimal.NewFromString(thresholdStr)
	if err != nil {
		threshold = decimal.NewFromInt(10000)
		log.Printf("Warning: Invalid value for APPROVAL_THRESHOLD ('%s'). Defaulting to %s.\n", thresholdStr, threshold.String())
	}
	cfg.ApprovalThreshold = threshold

	sweepStr := viper.GetString("SWEEP_INTERVAL")
	sweepInterval, err := time.ParseDuration(sweepStr)
	if err != nil || sweepInterval <= 0 {
		sweepInterval = time.Minute
		log.Printf("Warning: Invalid value for SWEEP_INTERVAL ('%s'). Defaulting to %s.\n", sweepStr, sweepInterval.String())
	}
	cfg.SweepInterval = sweepInterval

	cfg.PostingRateLimit = viper.GetString("POSTING_RATE_LIMIT")

	return cfg, nil
}
