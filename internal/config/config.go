package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath  string `yaml:"database_path"`
	ImageDir      string `yaml:"image_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"log_level"`

	// Identity tokens
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
	AdminUID  string `yaml:"admin_uid"`

	// Recipe import
	GhostURL        string `yaml:"ghost_url"`
	GhostContentKey string `yaml:"ghost_content_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
	GroqAPIKey      string `yaml:"groq_api_key"`
	GroqModel       string `yaml:"groq_model"`

	// Telegram Config
	TelegramBotToken      string `yaml:"telegram_bot_token"`
	TelegramWebhookSecret string `yaml:"telegram_webhook_secret"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		DatabasePath:  "data/tasteal.db",
		ImageDir:      "data/images",
		PublicBaseURL: "http://localhost:8080",
		Port:          "8080",
		LogLevel:      "info",
		JWTIssuer:     "tasteal",
		GeminiModel:   "gemini-1.5-flash",
	}
}

// NewFromEnv creates a new Config object from an optional YAML file
// (TASTEAL_CONFIG) overlaid with environment variables.
func NewFromEnv() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TASTEAL_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.DatabasePath, "TASTEAL_DB_PATH")
	setString(&c.ImageDir, "TASTEAL_IMAGE_DIR")
	setString(&c.PublicBaseURL, "TASTEAL_PUBLIC_URL")
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "TASTEAL_LOG_LEVEL")
	setString(&c.JWTSecret, "TASTEAL_JWT_SECRET")
	setString(&c.JWTIssuer, "TASTEAL_JWT_ISSUER")
	setString(&c.AdminUID, "TASTEAL_ADMIN_UID")
	setString(&c.GhostURL, "GHOST_API_URL")
	setString(&c.GhostContentKey, "GHOST_CONTENT_API_KEY")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")
	setString(&c.GroqAPIKey, "GROQ_API_KEY")
	setString(&c.GroqModel, "GROQ_MODEL")
	setString(&c.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.TelegramWebhookSecret, "TELEGRAM_WEBHOOK_SECRET")
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("TASTEAL_JWT_SECRET environment variable not set")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	return nil
}

// GhostEnabled reports whether the Ghost import source is configured.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostContentKey != ""
}
