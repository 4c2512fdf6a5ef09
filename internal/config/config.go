package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tribeboard/pkg/logger"
)

type Config struct {
	HTTPPort       string
	Env            string
	AllowedOrigins []string
	FamilyCode     FamilyCodeConfig
	DB             DBConfig
	Auth           AuthConfig
	Remote         RemoteConfig
}

// FamilyCodeConfig tunes unique family-code generation.
type FamilyCodeConfig struct {
	MaxAttempts            int
	CheckRemote            bool
	RemoteFailureThreshold int
	BackoffBase            time.Duration
	BackoffCap             time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig points at the external identity provider whose token-check
// endpoint the auth middleware consults.
type AuthConfig struct {
	URL            string
	APIKey         string
	Timeout        time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
	MockUserAvatar string
}

// RemoteConfig points at the cloud sync backend used for remote
// family-code uniqueness lookups. An empty BaseURL disables remote checks.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: splitList(getEnv("HTTP_ALLOWED_ORIGINS", "http://localhost:5173")),
		FamilyCode: FamilyCodeConfig{
			MaxAttempts:            getEnvInt("FAMILY_CODE_MAX_ATTEMPTS", 5),
			CheckRemote:            getEnvBool("FAMILY_CODE_CHECK_REMOTE", true),
			RemoteFailureThreshold: getEnvInt("FAMILY_CODE_REMOTE_FAILURE_THRESHOLD", 3),
			BackoffBase:            getEnvDuration("FAMILY_CODE_BACKOFF_BASE", 100*time.Millisecond),
			BackoffCap:             getEnvDuration("FAMILY_CODE_BACKOFF_CAP", 2*time.Second),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "tribeboard"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			URL:            getEnv("AUTH_URL", ""),
			APIKey:         getEnv("AUTH_API_KEY", ""),
			Timeout:        getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
			MockUserAvatar: getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("REMOTE_STORE_URL", ""),
			APIKey:  getEnv("REMOTE_STORE_API_KEY", ""),
			Timeout: getEnvDuration("REMOTE_STORE_TIMEOUT", 3*time.Second),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
