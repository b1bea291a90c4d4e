package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	DatabaseURL    string // empty means in-memory repositories
	EnableDBCheck  bool
	MigrationsPath string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	RedisURL          string

	// Google Sheets
	GoogleCredentials  string // service-account JSON; empty serves sample data
	DefaultSpreadsheet string
	SheetsCacheTTL     time.Duration
	SheetsCacheSize    int
	SheetsFetchTimeout time.Duration

	PasswordResetTTL time.Duration
	LoginRateLimit   string
	FrontendBaseURL  string
	PosthogAPIKey    string
}

const insecureDevSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", insecureDevSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "sheet-dashboard")
	viper.SetDefault("SESSION_SECRET", insecureDevSecret)
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("SESSION_COOKIE_NAME", "dashboard_session")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("GOOGLE_CREDENTIALS", "")
	viper.SetDefault("DEFAULT_SPREADSHEET_ID", "")
	viper.SetDefault("SHEETS_CACHE_TTL", "5m")
	viper.SetDefault("SHEETS_CACHE_SIZE", 256)
	viper.SetDefault("SHEETS_FETCH_TIMEOUT", "15s")
	viper.SetDefault("PASSWORD_RESET_TTL", "24h")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:8501")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:     viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTIssuer:          viper.GetString("JWT_ISSUER"),
		SessionSecret:      viper.GetString("SESSION_SECRET"),
		SessionCookieName:  viper.GetString("SESSION_COOKIE_NAME"),
		RedisURL:           viper.GetString("REDIS_URL"),
		GoogleCredentials:  viper.GetString("GOOGLE_CREDENTIALS"),
		DefaultSpreadsheet: viper.GetString("DEFAULT_SPREADSHEET_ID"),
		SheetsCacheSize:    viper.GetInt("SHEETS_CACHE_SIZE"),
		LoginRateLimit:     viper.GetString("LOGIN_RATE_LIMIT"),
		FrontendBaseURL:    viper.GetString("FRONTEND_BASE_URL"),
		PosthogAPIKey:      viper.GetString("POSTHOG_API_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL not set. Users and settings are kept in memory.")
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == insecureDevSecret {
		cfg.JWTSecret = insecureDevSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	if cfg.SessionSecret == "" || cfg.SessionSecret == insecureDevSecret {
		cfg.SessionSecret = insecureDevSecret
		log.Println("Warning: SESSION_SECRET not set. Using default insecure key.")
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "sheet-dashboard"
	}
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "dashboard_session"
	}
	if cfg.SheetsCacheSize <= 0 {
		cfg.SheetsCacheSize = 256
	}
	if cfg.LoginRateLimit == "" {
		cfg.LoginRateLimit = "5-M"
	}
	if cfg.GoogleCredentials == "" {
		log.Println("Warning: GOOGLE_CREDENTIALS not set. Pages will show sample data.")
	}

	cfg.JWTExpiryDuration = durationOr("JWT_EXPIRY_DURATION", time.Hour)
	cfg.SessionTTL = durationOr("SESSION_TTL", 24*time.Hour)
	cfg.SheetsCacheTTL = durationOr("SHEETS_CACHE_TTL", 5*time.Minute)
	cfg.SheetsFetchTimeout = durationOr("SHEETS_FETCH_TIMEOUT", 15*time.Second)
	cfg.PasswordResetTTL = durationOr("PASSWORD_RESET_TTL", 24*time.Hour)

	return cfg, nil
}

// durationOr parses a duration setting (e.g., "60m", "1h"), falling back on bad or non-positive values.
func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
