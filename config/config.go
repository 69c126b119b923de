package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"econsync/services/datasource"
)

type Config struct {
	Environment string

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	MongoURI      string
	MongoDatabase string

	FREDAPIKey         string
	AlphaVantageAPIKey string
	BLSAPIKey          string
	RapidAPIKey        string
	RapidAPIBaseURL    string
	SECUserAgent       string

	SyncJobTimeout time.Duration
	SyncMaxRetries int
	SyncRetryDelay time.Duration
	SyncOnStart    bool
	ResultLogSize  int
}

// LoadConfig loads environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "econsync"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),
		SQLitePath: getEnv("SQLITE_PATH", "data/econsync.db"),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "econsync"),

		FREDAPIKey:         getEnv("FRED_API_KEY", ""),
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		BLSAPIKey:          getEnv("BLS_API_KEY", ""),
		RapidAPIKey:        getEnv("RAPIDAPI_KEY", ""),
		RapidAPIBaseURL:    getEnv("RAPIDAPI_BASE_URL", ""),
		SECUserAgent:       getEnv("SEC_USER_AGENT", ""),

		SyncJobTimeout: getEnvDuration("SYNC_JOB_TIMEOUT", 10*time.Minute),
		SyncMaxRetries: getEnvInt("SYNC_MAX_RETRIES", 3),
		SyncRetryDelay: getEnvDuration("SYNC_RETRY_DELAY", 30*time.Second),
		SyncOnStart:    getEnvBool("SYNC_ON_START", false),
		ResultLogSize:  getEnvInt("SYNC_RESULT_LOG_SIZE", 50),
	}

	log.Printf("Loaded config: env=%s db=%s fred_key=%s alphavantage_key=%s bls_key=%s rapidapi_key=%s",
		config.Environment,
		config.DBDriver,
		maskKey(config.FREDAPIKey),
		maskKey(config.AlphaVantageAPIKey),
		maskKey(config.BLSAPIKey),
		maskKey(config.RapidAPIKey),
	)

	return config, nil
}

// SourceConfigs builds the per-provider settings handed to the adapters
func (c *Config) SourceConfigs() map[string]datasource.SourceConfig {
	return map[string]datasource.SourceConfig{
		datasource.SourceFRED: {
			APIKey:     c.FREDAPIKey,
			RateLimit:  500 * time.Millisecond,
			FetchLimit: 100,
		},
		// Alpha Vantage free tier allows 5 requests per minute
		datasource.SourceAlphaVantage: {
			APIKey:     c.AlphaVantageAPIKey,
			RateLimit:  12 * time.Second,
			FetchLimit: 100,
		},
		datasource.SourceBLS: {
			APIKey:     c.BLSAPIKey,
			RateLimit:  2 * time.Second,
			FetchLimit: 100,
		},
		datasource.SourceWorldBank: {
			RateLimit:  time.Second,
			FetchLimit: 100,
		},
		datasource.SourceECB: {
			RateLimit:  time.Second,
			FetchLimit: 100,
		},
		datasource.SourceIMF: {
			RateLimit:  2 * time.Second,
			FetchLimit: 100,
		},
		datasource.SourceTreasury: {
			RateLimit:  time.Second,
			FetchLimit: 100,
		},
		// SEC fair access guidelines cap clients at 10 requests per second
		datasource.SourceSEC: {
			UserAgent:  c.SECUserAgent,
			RateLimit:  150 * time.Millisecond,
			FetchLimit: 100,
		},
		datasource.SourceRapidAPI: {
			APIKey:     c.RapidAPIKey,
			BaseURL:    c.RapidAPIBaseURL,
			RateLimit:  time.Second,
			FetchLimit: 100,
		},
	}
}

// OpenDB opens the configured database and verifies the connection
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var db *gorm.DB
	var err error
	switch cfg.DBDriver {
	case "sqlite":
		log.Printf("Connecting to database: sqlite path=%s", cfg.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
	default:
		// Log connection info (masked for security)
		log.Printf("Connecting to database: host=%s port=%s user=%s dbname=%s",
			maskHost(cfg.DBHost),
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBName,
		)

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}

	if err != nil {
		log.Printf("Database connection error: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection with ping
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get underlying database: %v", err)
		return nil, fmt.Errorf("failed to get database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database ping failed: %v", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Printf("Database connection verified successfully")
	return db, nil
}

// maskHost masks host for logging, preserving domain structure
func maskHost(host string) string {
	if len(host) <= 3 {
		return "***"
	}
	if len(host) <= 15 {
		return host[:3] + "***"
	}
	return host[:8] + "***" + host[len(host)-10:]
}

// maskKey masks a credential for logging
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return parsed
}
