package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Diagnosis loop tuning.
	MaxClarifyingQuestions int     `mapstructure:"MAX_CLARIFYING_QUESTIONS"`
	TopNProblems           int     `mapstructure:"TOP_N_PROBLEMS"`
	MinMatchScore          float64 `mapstructure:"MIN_MATCH_SCORE"`
	StableTurns            int     `mapstructure:"STABLE_TURNS"`

	// Estimation fan-out bounds.
	EstimatePairTimeoutMs    int `mapstructure:"ESTIMATE_PAIR_TIMEOUT_MS"`
	EstimateOverallTimeoutMs int `mapstructure:"ESTIMATE_OVERALL_TIMEOUT_MS"`
	EstimateMaxConcurrent    int `mapstructure:"ESTIMATE_MAX_CONCURRENT"`

	// Catalog snapshot refresh interval, in minutes.
	CatalogRefreshMinutes int `mapstructure:"CATALOG_REFRESH_MINUTES"`

	// Hours before an unconfirmed service request triggers a customer
	// reminder. Zero disables the reminder queue.
	PendingReminderHours int `mapstructure:"PENDING_REMINDER_HOURS"`

	// Gemini API key for clarification question generation. Empty disables
	// the Gemini generator and falls back to static questions.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Firebase service account for booking push notifications. Empty disables
	// notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "autoserve")
	viper.SetDefault("MAX_CLARIFYING_QUESTIONS", 3)
	viper.SetDefault("TOP_N_PROBLEMS", 3)
	viper.SetDefault("MIN_MATCH_SCORE", 0.08)
	viper.SetDefault("STABLE_TURNS", 1)
	viper.SetDefault("ESTIMATE_PAIR_TIMEOUT_MS", 2000)
	viper.SetDefault("ESTIMATE_OVERALL_TIMEOUT_MS", 8000)
	viper.SetDefault("ESTIMATE_MAX_CONCURRENT", 16)
	viper.SetDefault("CATALOG_REFRESH_MINUTES", 5)
	viper.SetDefault("PENDING_REMINDER_HOURS", 24)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
