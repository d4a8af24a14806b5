package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Economy configuration. All amounts are in cents.
	StartingBalance int64
	AdminUserID     int64 // the single privileged account

	// Lottery configuration
	LotteryEntryFee      int64
	LotteryDuration      time.Duration
	LotterySweepInterval time.Duration

	// Robbery configuration
	RobCooldown    time.Duration
	RobSuccessRate float64
	RobFine        int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		// Economy defaults: $100.00 to start, $2.00 lottery entry
		StartingBalance: 10000,

		LotteryEntryFee:      200,
		LotteryDuration:      6 * time.Hour,
		LotterySweepInterval: time.Minute,

		RobCooldown:    time.Hour,
		RobSuccessRate: 0.30,
		RobFine:        500,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if adminID := os.Getenv("ADMIN_USER_ID"); adminID != "" {
		if parsed, err := strconv.ParseInt(adminID, 10, 64); err == nil {
			config.AdminUserID = parsed
		}
	}
	if fee := os.Getenv("LOTTERY_ENTRY_FEE"); fee != "" {
		if parsed, err := strconv.ParseInt(fee, 10, 64); err == nil {
			config.LotteryEntryFee = parsed
		}
	}
	if hours := os.Getenv("LOTTERY_DURATION_HOURS"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil && parsed > 0 {
			config.LotteryDuration = time.Duration(parsed) * time.Hour
		}
	}
	if interval := os.Getenv("LOTTERY_SWEEP_SECONDS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.LotterySweepInterval = time.Duration(parsed) * time.Second
		}
	}
	if cooldown := os.Getenv("ROB_COOLDOWN_MINUTES"); cooldown != "" {
		if parsed, err := strconv.Atoi(cooldown); err == nil && parsed > 0 {
			config.RobCooldown = time.Duration(parsed) * time.Minute
		}
	}
	if rate := os.Getenv("ROB_SUCCESS_RATE"); rate != "" {
		if parsed, err := strconv.ParseFloat(rate, 64); err == nil && parsed > 0 && parsed < 1 {
			config.RobSuccessRate = parsed
		}
	}
	if fine := os.Getenv("ROB_FINE"); fine != "" {
		if parsed, err := strconv.ParseInt(fine, 10, 64); err == nil && parsed > 0 {
			config.RobFine = parsed
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminUserID == 0 {
			return nil, fmt.Errorf("ADMIN_USER_ID is required")
		}
	}

	return config, nil
}
