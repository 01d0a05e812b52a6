package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env string

	// Database
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	DBDSN           string
	DBRetryInterval time.Duration

	// Identity provider
	IdentityProvider string
	FirebaseProject  string
	IdentityJWKSURL  string
	IdentityHMAC     string
	IdentityTimeout  time.Duration

	// Anti-fraud
	RedisURL          string
	AntifraudAttempts int
	AntifraudWindow   time.Duration
	AntifraudKey      string

	// Super admin bootstrap
	SuperAdminEmails string

	// Server
	Port               string
	CORSOrigins        string
	RateLimitPerMinute int

	SeedPath  string
	SentryDSN string
}

func Load() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),

		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "voto_popular"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		DBDSN:           getEnv("DB_DSN", ""),
		DBRetryInterval: parseDuration(getEnv("DB_RETRY_INTERVAL", "5s"), 5*time.Second),

		IdentityProvider: getEnv("IDENTITY_PROVIDER", "firebase"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		IdentityJWKSURL:  getEnv("IDENTITY_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
		IdentityHMAC:     getEnv("IDENTITY_HMAC_SECRET", ""),
		IdentityTimeout:  parseDuration(getEnv("IDENTITY_TIMEOUT", "5s"), 5*time.Second),

		RedisURL:          getEnv("REDIS_URL", ""),
		AntifraudAttempts: parseInt(getEnv("ANTIFRAUD_MAX_ATTEMPTS", "5"), 5),
		AntifraudWindow:   parseDuration(getEnv("ANTIFRAUD_WINDOW", "15m"), 15*time.Minute),
		AntifraudKey:      getEnv("ANTIFRAUD_KEY", ""),

		SuperAdminEmails: getEnv("SUPER_ADMIN_EMAILS", ""),

		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		RateLimitPerMinute: parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "60"), 60),

		SeedPath:  getEnv("SEED_PATH", ""),
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// Validate reports configuration mistakes that make the process unusable.
// An unreachable store or identity service is not a configuration error.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of postgres, mysql, sqlite")
	}
	switch c.IdentityProvider {
	case "firebase":
		if c.FirebaseProject == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firebase identity provider")
		}
	case "hmac":
		if len(c.IdentityHMAC) < 16 {
			return errors.New("IDENTITY_HMAC_SECRET must be at least 16 characters for the hmac identity provider")
		}
	default:
		return errors.New("IDENTITY_PROVIDER must be firebase or hmac")
	}
	if c.Env == "production" && c.AntifraudKey == "" {
		return errors.New("ANTIFRAUD_KEY is required in production")
	}
	return nil
}

func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return c.DBUser + ":" + c.DBPassword +
			"@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return c.DBName + ".db"
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SuperAdminList returns the normalized bootstrap emails.
func (c *Config) SuperAdminList() []string {
	return ParseCSV(strings.ToLower(c.SuperAdminEmails))
}

func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
