// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/hedgeflow/internal/domain"
	"github.com/aristath/hedgeflow/internal/utils"
)

// Market data sources
const (
	SourceStatic = "static"
	SourceSQLite = "sqlite"
)

// Config holds application configuration
type Config struct {
	DataDir               string // Base directory for the market database (always absolute)
	LogLevel              string
	Port                  int
	DevMode               bool
	MarketDataSource      string // static or sqlite
	StaticMarket          domain.MarketSnapshot
	RegimeMonitorSchedule string // Cron spec; empty disables the monitor
	DefaultConfidence     float64
	CORSAllowedOrigins    []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("HEDGE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("HEDGE_PORT", 8010),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MarketDataSource: strings.ToLower(getEnv("MARKET_DATA_SOURCE", SourceStatic)),
		StaticMarket: domain.MarketSnapshot{
			SpotPrice:            getEnvAsFloat("MARKET_SPOT_PRICE", 2.85),
			AnnualizedVolatility: getEnvAsFloat("MARKET_VOLATILITY", 0.30),
			FXSpotRate:           getEnvAsFloat("MARKET_FX_RATE", 1.08),
			FreightDayRate:       getEnvAsFloat("MARKET_FREIGHT_DAY_RATE", 18_500),
			Regime:               domain.MarketRegime(strings.ToLower(getEnv("MARKET_REGIME", string(domain.MarketRegimeNormal)))),
			CrisisIndicators:     utils.ParseList(os.Getenv("MARKET_CRISIS_INDICATORS")),
		},
		RegimeMonitorSchedule: getEnv("REGIME_MONITOR_SCHEDULE", "@every 15m"),
		DefaultConfidence:     getEnvAsFloat("DEFAULT_CONFIDENCE", 0.95),
		CORSAllowedOrigins:    utils.ParseList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath returns the market database file path
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "market.db")
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid HEDGE_PORT %d", c.Port)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (want debug, info, warn or error)", c.LogLevel)
	}

	switch c.MarketDataSource {
	case SourceStatic:
		if err := c.StaticMarket.Validate(); err != nil {
			return fmt.Errorf("invalid static market configuration: %w", err)
		}
	case SourceSQLite:
	default:
		return fmt.Errorf("invalid MARKET_DATA_SOURCE %q (want %s or %s)", c.MarketDataSource, SourceStatic, SourceSQLite)
	}

	if c.RegimeMonitorSchedule != "" {
		if _, err := cron.ParseStandard(c.RegimeMonitorSchedule); err != nil {
			return fmt.Errorf("invalid REGIME_MONITOR_SCHEDULE %q: %w", c.RegimeMonitorSchedule, err)
		}
	}

	switch c.DefaultConfidence {
	case 0.90, 0.95, 0.99:
	default:
		return fmt.Errorf("invalid DEFAULT_CONFIDENCE %v (want 0.90, 0.95 or 0.99)", c.DefaultConfidence)
	}

	return nil
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
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
