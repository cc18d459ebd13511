// Package config loads runtime settings from .env files, an optional YAML
// file, and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kamilpajak/automate/internal/vision"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the variable pointing at a YAML config file.
const ConfigFileEnv = "AUTOMATE_CONFIG"

// UnlimitedDiagnoses disables the monthly quota.
const UnlimitedDiagnoses = -1

var defaultEnvFiles = []string{".env", "config/.env"}

// Config holds all runtime settings.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	Provider     string        `yaml:"provider"`
	GoogleAPIKey string        `yaml:"google_api_key"`
	OpenAIAPIKey string        `yaml:"openai_api_key"`
	Model        string        `yaml:"model"`
	LabelTimeout time.Duration `yaml:"label_timeout"`
	MaxLabels    int           `yaml:"max_labels"`
	RateLimit    int           `yaml:"rate_limit"` // provider requests per minute

	MonthlyLimit   int   `yaml:"monthly_limit"` // diagnoses per user per month, -1 for unlimited
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	RetentionDays  int   `yaml:"retention_days"` // 0 keeps diagnoses forever

	AuthDomain   string `yaml:"auth_domain"`
	AuthAudience string `yaml:"auth_audience"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:           "8080",
		Provider:       vision.ProviderGoogle,
		LabelTimeout:   30 * time.Second,
		MaxLabels:      vision.DefaultMaxLabels,
		MonthlyLimit:   1000,
		MaxUploadBytes: 10 << 20,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Options controls where Load looks for settings.
type Options struct {
	EnvFiles   []string // loaded without overriding existing variables
	ConfigFile string   // YAML file; defaults to $AUTOMATE_CONFIG
}

// Load reads settings from the default .env locations, $AUTOMATE_CONFIG and
// the environment.
func Load() (*Config, error) {
	return LoadWith(Options{EnvFiles: defaultEnvFiles})
}

// LoadWith reads settings from the given sources and validates the result.
func LoadWith(opts Options) (*Config, error) {
	for _, path := range opts.EnvFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := Default()

	path := opts.ConfigFile
	if path == "" {
		path = getEnv(ConfigFileEnv, "")
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.Provider = getEnv("VISION_PROVIDER", c.Provider)
	c.GoogleAPIKey = getEnv("GOOGLE_VISION_API_KEY", getEnv("GOOGLE_API_KEY", c.GoogleAPIKey))
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.Model = getEnv("VISION_MODEL", c.Model)
	c.LabelTimeout = getEnvAsDuration("LABEL_TIMEOUT", c.LabelTimeout)
	c.MaxLabels = getEnvAsInt("MAX_LABELS", c.MaxLabels)
	c.RateLimit = getEnvAsInt("VISION_RATE_LIMIT", c.RateLimit)

	c.MonthlyLimit = getEnvAsInt("MONTHLY_DIAGNOSIS_LIMIT", c.MonthlyLimit)
	c.MaxUploadBytes = int64(getEnvAsInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.RetentionDays = getEnvAsInt("DIAGNOSIS_RETENTION_DAYS", c.RetentionDays)

	c.AuthDomain = getEnv("AUTH_DOMAIN", c.AuthDomain)
	c.AuthAudience = getEnv("AUTH_AUDIENCE", c.AuthAudience)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Provider) {
	case vision.ProviderGoogle, vision.ProviderOpenAI, vision.ProviderStatic, vision.ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown vision provider %q (want google, openai, static or none)", c.Provider))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.LabelTimeout <= 0 {
		errs = append(errs, errors.New("label timeout must be positive"))
	}
	if c.MaxLabels <= 0 {
		errs = append(errs, errors.New("max labels must be positive"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.MonthlyLimit < UnlimitedDiagnoses {
		errs = append(errs, fmt.Errorf("monthly limit must be %d (unlimited) or more", UnlimitedDiagnoses))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if c.RetentionDays < 0 {
		errs = append(errs, errors.New("retention days must not be negative"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Vision returns the labeling provider settings.
func (c *Config) Vision() vision.Config {
	return vision.Config{
		Provider:     c.Provider,
		GoogleAPIKey: c.GoogleAPIKey,
		OpenAIAPIKey: c.OpenAIAPIKey,
		Model:        c.Model,
		MaxLabels:    c.MaxLabels,
		RateLimit:    c.RateLimit,
	}
}

// String returns a summary with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("port=%s provider=%s google_key=%s openai_key=%s database=%t monthly_limit=%d log=%s/%s",
		c.Port, c.Provider, maskString(c.GoogleAPIKey), maskString(c.OpenAIAPIKey),
		c.DatabaseURL != "", c.MonthlyLimit, c.LogLevel, c.LogFormat)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func maskString(s string) string {
	if s == "" {
		return "<unset>"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
