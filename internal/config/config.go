package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Tax      TaxConfig
	Ibkr     IbkrConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// TaxConfig holds the flat tax rate constants used for estimated tax
// impact calculations. These are configuration constants, not values
// derived from any real tax table.
type TaxConfig struct {
	ShortTermRate decimal.Decimal
	LongTermRate  decimal.Decimal
}

// IbkrConfig holds IBKR flex web service settings. FernetKey encrypts the
// flex token at rest; CronSchedule drives the nightly auto-sync job.
type IbkrConfig struct {
	FernetKey    string
	CronSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	shortRate, err := getEnvDecimal("SHORT_TERM_TAX_RATE", "0.35")
	if err != nil {
		return nil, err
	}
	longRate, err := getEnvDecimal("LONG_TERM_TAX_RATE", "0.15")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/quantmatrix.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Tax: TaxConfig{
			ShortTermRate: shortRate,
			LongTermRate:  longRate,
		},
		Ibkr: IbkrConfig{
			FernetKey:    getEnv("IBKR_FERNET_KEY", ""),
			CronSchedule: getEnv("IBKR_SYNC_SCHEDULE", "0 2 * * *"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %w", key, err)
	}
	return d, nil
}
