package config

import (
	"fmt"
	"os"
	"strings"
)

// Settings carries environment-sourced process configuration. Limits that are
// not deployment-specific live in defaults.go instead.
type Settings struct {
	// Warehouse connection
	Driver  string // database/sql driver name ("bigquery" or "sqlite")
	DSN     string // driver-specific DSN, e.g. "bigquery://project/dataset"
	Dataset string // default analysis dataset for resource catalogs

	// SMTP report delivery. Empty Username/Password disables sending.
	SMTPHost  string
	SMTPPort  int
	Sender    string
	Password  string
	Recipient string
}

// FromEnv builds Settings from WMCP_* environment variables. The warehouse
// DSN is the only required value; everything else has a usable default.
func FromEnv() (Settings, error) {
	s := Settings{
		Driver:    envOr("WMCP_WAREHOUSE_DRIVER", "bigquery"),
		DSN:       strings.TrimSpace(os.Getenv("WMCP_WAREHOUSE_DSN")),
		Dataset:   envOr("WMCP_DATASET", "dev-im-platform.temp_fei_ai"),
		SMTPHost:  envOr("WMCP_SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  587,
		Sender:    strings.TrimSpace(os.Getenv("WMCP_EMAIL_SENDER")),
		Password:  os.Getenv("WMCP_EMAIL_PASSWORD"),
		Recipient: strings.TrimSpace(os.Getenv("WMCP_EMAIL_RECIPIENT")),
	}
	if s.DSN == "" {
		return s, fmt.Errorf("WMCP_WAREHOUSE_DSN is not set")
	}
	return s, nil
}

// EmailConfigured reports whether SMTP credentials are complete enough to
// attempt delivery.
func (s Settings) EmailConfigured() bool {
	return s.Sender != "" && s.Password != "" && s.Recipient != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
