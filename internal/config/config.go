package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Smile ID hosts, selected by the sandbox flag unless a base URL is set explicitly.
const (
	SmileIDSandboxURL    = "https://testapi.usesmileid.com"
	SmileIDProductionURL = "https://api.usesmileid.com"
)

// Config is the full application configuration, built once at startup
// and handed to the components that need it.
type Config struct {
	Port           string
	AllowedOrigins string
	JWTSecret      string

	Database DatabaseConfig
	Redis    RedisConfig
	SmileID  SmileID
	SMTP     SMTPConfig
}

// DatabaseConfig holds the postgres DSN parts and connection pool settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SmileID is the vendor configuration shared by the vendor client and the
// verification service.
type SmileID struct {
	PartnerID   string
	APIKey      string
	Sandbox     bool
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
	// VerifyCallback rejects callbacks whose body signature does not match.
	VerifyCallback bool
}

// URL returns the vendor base URL without a trailing slash.
func (s SmileID) URL() string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}
	if s.Sandbox {
		return SmileIDSandboxURL
	}
	return SmileIDProductionURL
}

// SMTPConfig configures outgoing mail. An empty Host means dry run.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the whole configuration from the environment.
func Load() *Config {
	siteURL := strings.TrimRight(GetEnv("SITE_URL", "http://localhost:3000"), "/")

	return &Config{
		Port:           GetEnv("PORT", "3000"),
		AllowedOrigins: GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		JWTSecret:      GetEnv("JWT_SECRET", ""),
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "montoit"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		SmileID: SmileID{
			PartnerID: GetEnv("SMILE_ID_PARTNER_ID", "7685"),
			APIKey:    GetEnv("SMILE_ID_API_KEY", ""),
			// Anything but an explicit "false" keeps the sandbox on.
			Sandbox:        GetEnv("SMILE_ID_SANDBOX", "true") != "false",
			BaseURL:        GetEnv("SMILE_ID_BASE_URL", ""),
			CallbackURL:    GetEnv("SMILE_ID_CALLBACK_URL", siteURL+"/smile-id-callback"),
			Timeout:        GetDurationEnv("SMILE_ID_TIMEOUT", 30*time.Second),
			VerifyCallback: GetBoolEnv("SMILE_ID_VERIFY_CALLBACK", true),
		},
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST", ""),
			Port:     GetIntEnv("SMTP_PORT", 587),
			User:     GetEnv("SMTP_USER", ""),
			Password: GetEnv("SMTP_PASSWORD", ""),
			From:     GetEnv("SMTP_FROM", "no-reply@montoit.ci"),
		},
	}
}

// ErrUnsignedCallbacks is returned when callback signature checks are turned
// off in production.
var ErrUnsignedCallbacks = errors.New("SMILE_ID_VERIFY_CALLBACK=false is only allowed outside production")

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if IsProduction() && !c.SmileID.VerifyCallback {
		return ErrUnsignedCallbacks
	}
	return nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
