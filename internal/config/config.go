package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreFile = "file"
	StoreSQL  = "sql"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	BotToken       string
	BotDebug       bool
	OperatorChatID string

	HTTPPort string

	OrderStore string
	OrdersFile string

	RelayConfigDir string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RateLimit RateLimitConfig
}

// RateLimitConfig controls outbound pacing against the chat platform's flood limits.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PerChatRate  float64
	PerChatBurst int
	GlobalRate   float64
	GlobalBurst  int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:        getenv("APP_SERVICE", "orderrelay"),
		AppVersion:     getenv("APP_VERSION", "0.1.0"),
		Environment:    getenv("ENVIRONMENT", "development"),
		BotToken:       strings.TrimSpace(getenv("BOT_TOKEN", "")),
		BotDebug:       getenvBool("BOT_DEBUG", false),
		OperatorChatID: strings.TrimSpace(getenv("ADMIN_CHAT_ID", "")),
		HTTPPort:       getenv("PORT", "3000"),
		OrderStore:     normalizeStore(getenv("ORDER_STORE", StoreFile)),
		OrdersFile:     getenv("ORDERS_FILE", "data/orders.json"),
		RelayConfigDir: getenv("RELAY_CONFIG_DIR", "/etc/orderrelay"),
		OTLPEndpoint:   getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "orderrelay"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "orderrelay.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
			// Telegram allows roughly one message per second per chat and 30 per second overall.
			PerChatRate:  getenvFloat("RATE_LIMIT_PER_CHAT_RATE", 1),
			PerChatBurst: getenvInt("RATE_LIMIT_PER_CHAT_BURST", 3),
			GlobalRate:   getenvFloat("RATE_LIMIT_GLOBAL_RATE", 30),
			GlobalBurst:  getenvInt("RATE_LIMIT_GLOBAL_BURST", 30),
		},
	}

	return cfg
}

// OperatorConfigured reports whether operator forwarding has a destination.
func (c Config) OperatorConfigured() bool {
	return strings.TrimSpace(c.OperatorChatID) != ""
}

func normalizeStore(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case StoreSQL, "db", "database":
		return StoreSQL
	default:
		return StoreFile
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
