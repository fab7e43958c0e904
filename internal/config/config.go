package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds settings for the S3-compatible object store
// (Cloudflare R2, MinIO, AWS S3).
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string // stable public URL prefix for stored objects, e.g. https://pub-<account>.r2.dev
	PresignTTLSec int
}

// AuthConfig holds JWT session settings.
type AuthConfig struct {
	JWTSecret   string
	TokenTTLHrs int
	BcryptCost  int
}

// EmailConfig holds SMTP settings for verification-code delivery.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	Enabled      bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	MaxUploadBytes int64
	Database       DatabaseConfig
	Storage        StorageConfig
	Auth           AuthConfig
	Email          EmailConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"), // default only for non-sensitive value
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 250*1024*1024),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("R2_ENDPOINT", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:        getEnv("R2_BUCKET_NAME", ""),
			UseSSL:        getEnvBool("R2_USE_SSL", true),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
			PresignTTLSec: getEnvInt("R2_PRESIGN_TTL_SEC", 3600),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenTTLHrs: getEnvInt("JWT_TTL_HOURS", 168), // 7 days
			BcryptCost:  getEnvInt("BCRYPT_COST", 12),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", ""),
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
