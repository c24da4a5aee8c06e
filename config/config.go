package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

const devJWTSecret = "dev-only-secret"

// Config is the full application configuration surface.
type Config struct {
	Port string

	Storage    string
	DSN        string
	SQLitePath string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	UploadDir      string
	GCSBucket      string
	GCSCredentials string

	LegacyAPIURL   string
	LegacyAPIToken string

	MongoURI    string
	MongoDBName string
	ReportCron  string
	Timezone    string
}

// Load reads the environment (optionally from envFile, else ./.env when
// present) into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// a missing .env is fine, the environment may be set directly
		_ = godotenv.Load()
	}

	cfg := &Config{
		Port:           getenvWithDefault("PORT", "8080"),
		Storage:        os.Getenv("STORAGE"),
		DSN:            os.Getenv("DB_DSN"),
		SQLitePath:     getenvWithDefault("SQLITE_PATH", "gemstock.db"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AdminEmail:     getenvWithDefault("ADMIN_EMAIL", "admin@gemstock.local"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		UploadDir:      getenvWithDefault("UPLOAD_DIR", "./uploads"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		GCSCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		LegacyAPIURL:   os.Getenv("LEGACY_API_URL"),
		LegacyAPIToken: os.Getenv("LEGACY_API_TOKEN"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDBName:    getenvWithDefault("MONGODB_DB_NAME", "gemstock"),
		ReportCron:     getenvWithDefault("REPORT_CRON", "0 23 * * *"),
		Timezone:       getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
	}

	if cfg.Storage == "" {
		if cfg.DSN != "" {
			cfg.Storage = StoragePostgres
		} else {
			cfg.Storage = StorageMemory
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the settings are consistent. The memory backend is a demo
// mode and gets development defaults for secrets.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}

	switch c.Storage {
	case StoragePostgres:
		if c.DSN == "" {
			return errors.New("DB_DSN must be provided for postgres storage")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q (postgres, sqlite or memory)", c.Storage)
	}

	if c.JWTSecret == "" {
		if c.Storage != StorageMemory {
			return errors.New("JWT_SECRET must be provided")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.AdminPassword == "" {
		if c.Storage != StorageMemory {
			return errors.New("ADMIN_PASSWORD must be provided")
		}
		c.AdminPassword = "admin123"
	}

	if c.ReportCron == "" {
		return errors.New("REPORT_CRON must not be empty")
	}
	if c.MongoURI != "" && c.MongoDBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided with MONGODB_URI")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
