package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Directories
	InputDir    string
	OutputDir   string
	ImageDir    string
	DownloadDir string

	// Database
	LedgerDBPath string

	// Invoice constants
	PayerCode         string
	VendorAccount     string
	FallbackGLCode    string
	DueDateOffsetDays int

	// Image collection
	RecencyWindow   time.Duration
	LauncherDelay   time.Duration
	LauncherTimeout time.Duration
	AutoLaunch      bool

	// AMQP (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets review export (optional; empty ID disables it)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		InputDir:    getEnv("INPUT_DIR", "./Input"),
		OutputDir:   getEnv("OUTPUT_DIR", "./Output"),
		ImageDir:    getEnv("IMAGE_DIR", "./Output/images"),
		DownloadDir: getEnv("DOWNLOAD_DIR", defaultDownloadDir()),

		LedgerDBPath: getEnv("LEDGER_DB_PATH", "./data/mdsconvert.db"),

		PayerCode:         getEnv("PAYER_CODE", "BLM"),
		VendorAccount:     getEnv("VENDOR_ACCOUNT", "AMEX"),
		FallbackGLCode:    getEnv("FALLBACK_GL_CODE", "4470"),
		DueDateOffsetDays: getEnvInt("DUE_DATE_OFFSET_DAYS", 8),

		RecencyWindow:   getEnvDuration("RECENCY_WINDOW", 30*time.Minute),
		LauncherDelay:   getEnvDuration("LAUNCHER_DELAY", 2*time.Second),
		LauncherTimeout: getEnvDuration("LAUNCHER_TIMEOUT", 30*time.Second),
		AutoLaunch:      getEnvBool("AUTO_LAUNCH", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "mdsconvert"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "batch_completed"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Invoice Batches"),
	}

	return cfg
}

// AMQPEnabled reports whether batch events should be published.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// SheetsEnabled reports whether the review export should run.
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errors []string

	if c.InputDir == "" {
		errors = append(errors, "input directory cannot be empty")
	}
	if c.OutputDir == "" {
		errors = append(errors, "output directory cannot be empty")
	}
	if c.ImageDir == "" {
		errors = append(errors, "image directory cannot be empty")
	}
	if c.DownloadDir == "" {
		errors = append(errors, "download directory cannot be empty")
	}

	if c.LedgerDBPath == "" {
		errors = append(errors, "ledger database path cannot be empty")
	} else {
		dir := filepath.Dir(c.LedgerDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create ledger database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.PayerCode == "" {
		errors = append(errors, "payer code cannot be empty")
	}
	if c.VendorAccount == "" {
		errors = append(errors, "vendor account cannot be empty")
	}
	if c.FallbackGLCode == "" {
		errors = append(errors, "fallback GL code cannot be empty")
	}
	if c.DueDateOffsetDays < 0 {
		errors = append(errors, fmt.Sprintf("invalid due date offset %d: must not be negative", c.DueDateOffsetDays))
	}

	if c.RecencyWindow < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid recency window %v: must be at least 1 minute", c.RecencyWindow))
	} else if c.RecencyWindow > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid recency window %v: must be at most 24 hours", c.RecencyWindow))
	}
	if c.LauncherDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid launcher delay %v: must not be negative", c.LauncherDelay))
	}
	if c.LauncherTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid launcher timeout %v: must be at least 1 second", c.LauncherTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./Downloads"
	}
	return filepath.Join(home, "Downloads")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
