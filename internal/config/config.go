package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken      string
	DBUser        string
	DBPassword    string
	DBName        string
	DBHost        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	UsePostgres   bool
	UseRedis      bool

	BetResolveDelay    time.Duration
	ConfirmWindow      time.Duration
	DepositCreditDelay time.Duration
	DedupTTL           time.Duration
	DedupMaxEntries    int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "hashwheel_bot"),
		DBHost:        getEnv("DB_HOST", ""),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		UsePostgres:   getEnv("DB_HOST", "") != "",
		UseRedis:      getEnv("REDIS_HOST", "") != "",

		BetResolveDelay:    getEnvDuration("BET_RESOLVE_DELAY", 3*time.Second),
		ConfirmWindow:      getEnvDuration("CONFIRM_WINDOW", 30*time.Second),
		DepositCreditDelay: getEnvDuration("DEPOSIT_CREDIT_DELAY", 10*time.Second),
		DedupTTL:           getEnvDuration("DEDUP_TTL", time.Hour),
		DedupMaxEntries:    getEnvInt("DEDUP_MAX_ENTRIES", 10000),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}
