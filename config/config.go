package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"stock-exchange-game/engine"
)

// Config holds application configuration
type Config struct {
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string
	SeedFile      string

	StartingBalance   float64
	AllowAveragingUp  bool
	AllowDelistedSell bool
	BirthPrice        float64

	AlertSchedule    string
	YearIntervalUnit time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnvAsInt("PORT", 5000),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		DevMode:   getEnvAsBool("DEV_MODE", false),

		StoreDriver:   getEnv("STORE_DRIVER", "memory"),
		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "stock_exchange_game"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/game.db"),
		SeedFile:      getEnv("SEED_FILE", ""),

		StartingBalance:   getEnvAsFloat("STARTING_BALANCE", 1000),
		AllowAveragingUp:  getEnvAsBool("ALLOW_AVERAGING_UP", true),
		AllowDelistedSell: getEnvAsBool("ALLOW_DELISTED_SELL", true),
		BirthPrice:        getEnvAsFloat("BIRTH_PRICE", engine.BirthPrice),

		AlertSchedule:    getEnv("ALERT_SCHEDULE", "@every 3s"),
		YearIntervalUnit: getEnvAsDuration("YEAR_INTERVAL_UNIT", time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite":
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
	}
	if c.StartingBalance <= 0 {
		return fmt.Errorf("STARTING_BALANCE must be positive, got %v", c.StartingBalance)
	}
	if c.BirthPrice <= 0 {
		return fmt.Errorf("BIRTH_PRICE must be positive, got %v", c.BirthPrice)
	}
	if c.YearIntervalUnit <= 0 {
		return fmt.Errorf("YEAR_INTERVAL_UNIT must be positive, got %v", c.YearIntervalUnit)
	}
	return nil
}

// Policy returns the trading policy shared by every call site.
func (c *Config) Policy() engine.Policy {
	p := engine.DefaultPolicy()
	p.AllowAveragingUp = c.AllowAveragingUp
	p.AllowDelistedSell = c.AllowDelistedSell
	p.BirthPrice = c.BirthPrice
	return p
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
