// Package config loads runtime configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Senders    SendersConfig
	Accounts   AccountsConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	Taxonomy   TaxonomyConfig
	AI         AIConfig
	BigQuery   BigQueryConfig
}

// SendersConfig controls the sender allow-list.
type SendersConfig struct {
	Allowed []string
	Enabled bool
	Debug   bool
}

// AccountsConfig lists the user's own account identifiers, used to exclude
// self-transfers from expense totals.
type AccountsConfig struct {
	Own []string
}

// ExtractionConfig holds extraction settings.
type ExtractionConfig struct {
	DefaultCurrency string
	TemplatesPath   string // optional extra templates, merged after built-ins
	Concurrency     int
}

// CacheConfig holds merchant cache settings.
type CacheConfig struct {
	Path string
}

// TaxonomyConfig points at the category taxonomy file; empty means the
// built-in taxonomy.
type TaxonomyConfig struct {
	Path string
}

// AIConfig holds classifier settings.
type AIConfig struct {
	Enabled       bool
	Model         string
	TimeoutSec    int
	MaxConcurrent int
}

// BigQueryConfig holds storage settings.
type BigQueryConfig struct {
	ProjectID string
	DatasetID string
	Table     string
}

// Load reads configuration from file and env. Env var overrides use prefix
// SMSEXP_, e.g. SMSEXP_AI_ENABLED=true.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("senders.allowed", []string{})
	v.SetDefault("senders.enabled", true)
	v.SetDefault("senders.debug", false)
	v.SetDefault("accounts.own", []string{})
	v.SetDefault("extraction.default_currency", "SAR")
	v.SetDefault("extraction.templates_path", "")
	v.SetDefault("extraction.concurrency", 8)
	v.SetDefault("cache.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "sms-expense-tracker", "merchant_cache.json"))
	v.SetDefault("taxonomy.path", "")
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout_sec", 15)
	v.SetDefault("ai.max_concurrent", 4)
	v.SetDefault("bigquery.project_id", "")
	v.SetDefault("bigquery.dataset_id", "expenses")
	v.SetDefault("bigquery.table", "transactions")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SMSEXP_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "sms-expense-tracker"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SMSEXP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env apply.
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
