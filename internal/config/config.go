package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Model    ModelConfig
	APIs     APIConfig
	Admin    AdminConfig
	Webhooks WebhookConfig
	Log      LogConfig
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	Mode           string   `mapstructure:"gin_mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"database_url"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"session_secret"`
	MaxAge time.Duration `mapstructure:"session_max_age"`
	Secure bool          `mapstructure:"session_secure"`
}

type ModelConfig struct {
	Path         string `mapstructure:"model_path"`
	EncodersPath string `mapstructure:"encoders_path"`
	ScalerPath   string `mapstructure:"scaler_path"`
}

type APIConfig struct {
	WeatherKey string        `mapstructure:"openweather_api_key"`
	AQIKey     string        `mapstructure:"aqi_api_key"`
	NewsKey    string        `mapstructure:"news_api_key"`
	WeatherURL string        `mapstructure:"openweather_url"`
	AQIURL     string        `mapstructure:"aqi_url"`
	NewsURL    string        `mapstructure:"news_url"`
	Timeout    time.Duration `mapstructure:"http_timeout"`
}

type AdminConfig struct {
	Email    string `mapstructure:"admin_email"`
	Password string `mapstructure:"admin_password"`
	Name     string `mapstructure:"admin_name"`
	City     string `mapstructure:"admin_city"`
}

type WebhookConfig struct {
	Discord string `mapstructure:"discord_webhook_url"`
	Slack   string `mapstructure:"slack_webhook_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"address":         ":5000",
	"gin_mode":        "release",
	"allowed_origins": "http://localhost:5000",
	"database_url":    "sqlite://carbontrack.db",
	"session_max_age": "168h",
	"session_secure":  false,
	"model_path":      "artifacts/model.json",
	"encoders_path":   "artifacts/label_encoders.json",
	"scaler_path":     "artifacts/scaler.json",
	"openweather_url": "https://api.openweathermap.org",
	"aqi_url":         "https://api.waqi.info",
	"news_url":        "https://newsdata.io",
	"http_timeout":    "10s",
	"admin_name":      "admin",
	"log_level":       "info",
	"log_format":      "text",
}

// Load reads .env (when present) and the process environment into a Config.
// Environment variables use the upper-cased key, e.g. DATABASE_URL.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"openweather_api_key", "aqi_api_key", "news_api_key",
		"session_secret", "admin_email", "admin_password", "admin_city",
		"discord_webhook_url", "slack_webhook_url",
	} {
		_ = v.BindEnv(key)
	}

	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	sections := []any{
		&cfg.Server, &cfg.Database, &cfg.Session, &cfg.Model,
		&cfg.APIs, &cfg.Admin, &cfg.Webhooks, &cfg.Log,
	}
	for _, section := range sections {
		if err := v.Unmarshal(section); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	cfg.Server.AllowedOrigins = splitList(v.GetString("allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET environment variable is not set")
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if c.Session.MaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
