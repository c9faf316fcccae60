package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Investment InvestmentConfig
	Jobs       JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL       string
	PASSWORD  string
	WalletTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BlockchainConfig holds the target network and the investing signer
type BlockchainConfig struct {
	RPCURL              string
	ChainID             int64
	ChainName           string
	CurrencySymbol      string
	ExplorerURL         string
	ContractAddress     string
	SignerPrivateKey    string
	ConfirmationTimeout time.Duration
}

// InvestmentConfig holds investment rail settings
type InvestmentConfig struct {
	OnchainIDStrategy     string
	OnchainIDMappingFloor int64
	ManualReferenceMinLen int
}

// JobsConfig holds background job settings
type JobsConfig struct {
	WalletSyncInterval    time.Duration
	WalletSyncMaxAttempts int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8080"),
			Env:      getEnv("SERVER_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ventureledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD:  getEnv("REDIS_PASSWORD", ""),
			WalletTTL: getEnvAsDuration("REDIS_WALLET_TTL", 24*time.Hour),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Blockchain: BlockchainConfig{
			RPCURL:              getEnv("TARGET_CHAIN_RPC_URL", "https://ethereum-sepolia-rpc.publicnode.com"),
			ChainID:             getEnvAsInt64("TARGET_CHAIN_ID", 11155111),
			ChainName:           getEnv("TARGET_CHAIN_NAME", "Sepolia"),
			CurrencySymbol:      getEnv("TARGET_CHAIN_CURRENCY", "ETH"),
			ExplorerURL:         getEnv("TARGET_CHAIN_EXPLORER_URL", "https://sepolia.etherscan.io"),
			ContractAddress:     getEnv("INVESTMENT_CONTRACT_ADDRESS", ""),
			SignerPrivateKey:    getEnv("INVESTOR_SIGNER_PRIVATE_KEY", getEnv("PRIVATE_KEY", "")),
			ConfirmationTimeout: getEnvAsDuration("CONFIRMATION_TIMEOUT", 2*time.Minute),
		},
		Investment: InvestmentConfig{
			OnchainIDStrategy:     getEnv("ONCHAIN_ID_STRATEGY", "hash"),
			OnchainIDMappingFloor: getEnvAsInt64("ONCHAIN_ID_MAPPING_FLOOR", 10000),
			ManualReferenceMinLen: getEnvAsInt("MANUAL_REFERENCE_MIN_LENGTH", 6),
		},
		Jobs: JobsConfig{
			WalletSyncInterval:    getEnvAsDuration("WALLET_SYNC_INTERVAL", 5*time.Second),
			WalletSyncMaxAttempts: getEnvAsInt("WALLET_SYNC_MAX_ATTEMPTS", 8),
		},
	}
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
