package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Mail driver names accepted in MAIL_DRIVER.
const (
	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Database
	DatabaseURL string

	// Mail
	MailDriver    string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFromEmail string
	SMTPFromName  string
}

func Load() (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", "planmailer.db"),

		MailDriver:    getEnv("MAIL_DRIVER", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@logicaloutcomes.com"),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "LogicalOutcomes Evaluation Planner"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.MailDriver {
	case "", MailDriverSMTP, MailDriverLog:
	default:
		return fmt.Errorf("MAIL_DRIVER must be %q or %q, got %q", MailDriverSMTP, MailDriverLog, c.MailDriver)
	}

	if c.MailDriver == MailDriverSMTP && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when MAIL_DRIVER=%s", MailDriverSMTP)
	}
	return nil
}

// ResolvedMailDriver returns the driver to use at startup. When MAIL_DRIVER is
// not set explicitly, SMTP is used if a host is configured, otherwise the
// logging sender.
func (c *Config) ResolvedMailDriver() string {
	if c.MailDriver != "" {
		return c.MailDriver
	}
	if c.SMTPHost != "" {
		return MailDriverSMTP
	}
	return MailDriverLog
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
