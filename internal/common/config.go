package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avigneron/winesync/constants"
)

// Config holds all application configuration
type Config struct {
	Mail   MailConfig
	LLM    LLMConfig
	Sheets SheetsConfig
	Sync   SyncConfig
}

// MailConfig holds IMAP mailbox configuration
type MailConfig struct {
	Addr       string // host:port of the IMAPS endpoint
	Username   string
	Password   string
	MaxResults int
}

// LLMConfig holds extraction-service configuration. An empty APIKey disables
// extraction instead of failing the run.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	MaxCalls    int
}

// SheetsConfig holds the tabular sink configuration. An empty SheetID routes
// exports to a local XLSX workbook instead.
type SheetsConfig struct {
	SheetID            string
	Worksheet          string
	ServiceAccountFile string
}

// SyncConfig holds the merchant allow-list and watermark location
type SyncConfig struct {
	MerchantDomains []string
	WatermarkPath   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Mail: MailConfig{
			Addr:       getEnv("MAIL_ADDR", "imap.gmail.com:993"),
			Username:   getEnv("MAIL_USERNAME", ""),
			Password:   getEnv("MAIL_PASSWORD", ""),
			MaxResults: getEnvAsInt("MAIL_MAX_RESULTS", 100),
		},
		LLM: LLMConfig{
			Model:       getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:     getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 2000),
			Temperature: 0,
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			MaxCalls:    getEnvAsInt("LLM_MAX_CALLS", 50),
		},
		Sheets: SheetsConfig{
			SheetID:            getEnv("SHEET_ID", ""),
			Worksheet:          getEnv("SHEET_WORKSHEET", "Sheet1"),
			ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		},
		Sync: SyncConfig{
			MerchantDomains: getEnvAsList("MERCHANT_DOMAINS", constants.DefaultMerchantDomains),
			WatermarkPath:   getEnv("WATERMARK_PATH", ".winesync_last_sync"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Mail.Addr == "" {
		return NewAppError("CONFIG_ERROR", "MAIL_ADDR is required", ErrInvalidInput)
	}
	if c.Mail.Username == "" || c.Mail.Password == "" {
		return NewAppError("CONFIG_ERROR", "MAIL_USERNAME and MAIL_PASSWORD are required", ErrInvalidInput)
	}
	if c.Sheets.SheetID != "" && c.Sheets.ServiceAccountFile == "" {
		return NewAppError("CONFIG_ERROR", "GOOGLE_SERVICE_ACCOUNT_FILE is required when SHEET_ID is set", ErrInvalidInput)
	}
	return nil
}
