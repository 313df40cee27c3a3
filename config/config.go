package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Chain    ChainConfig
	Scraper  ScraperConfig
	Storage  StorageConfig
	Auth     AuthConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ChainConfig holds the on-chain reward dispatch settings. The signer
// account must be managed by the node at RPCURL.
type ChainConfig struct {
	RPCURL          string
	ContractAddress string
	SignerAccount   string
	RewardAmount    int64
	ConfirmTimeout  time.Duration
}

type ScraperConfig struct {
	PythonBin  string
	ScriptPath string
	Timeout    time.Duration
	RatePerMin int
}

type StorageConfig struct {
	S3Bucket string
	S3Region string
}

type AuthConfig struct {
	FirebaseCredentialsPath string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "ecosphere"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Chain: ChainConfig{
			RPCURL:          getEnv("CHAIN_RPC_URL", ""),
			ContractAddress: getEnv("ECOCOIN_CONTRACT_ADDRESS", ""),
			SignerAccount:   getEnv("CHAIN_SIGNER_ACCOUNT", ""),
			RewardAmount:    int64(getEnvAsInt("REWARD_AMOUNT", 5)),
			ConfirmTimeout:  getEnvAsDuration("CHAIN_CONFIRM_TIMEOUT", 90*time.Second),
		},
		Scraper: ScraperConfig{
			PythonBin:  getEnv("SCRAPER_PYTHON_BIN", "python"),
			ScriptPath: getEnv("SCRAPER_SCRIPT_PATH", "gofundme_scraper.py"),
			Timeout:    getEnvAsDuration("SCRAPER_TIMEOUT", 60*time.Second),
			RatePerMin: getEnvAsInt("SCRAPER_RATE_PER_MIN", 6),
		},
		Storage: StorageConfig{
			S3Bucket: getEnv("S3_BUCKET", ""),
			S3Region: getEnv("S3_REGION", "us-east-1"),
		},
		Auth: AuthConfig{
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Chain.RewardAmount <= 0 {
		return fmt.Errorf("REWARD_AMOUNT must be positive")
	}

	return nil
}

// DSN builds the Postgres connection string shared by pgx and lib/pq.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func splitEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
