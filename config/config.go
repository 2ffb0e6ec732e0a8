package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Media     MediaConfig     `yaml:"media"`
	Company   CompanyConfig   `yaml:"company"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	BodyLimit       string        `yaml:"body_limit"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MongoConfig struct {
	URI         string           `yaml:"uri"`
	Database    string           `yaml:"database"`
	Collections CollectionConfig `yaml:"collections"`
}

type CollectionConfig struct {
	Properties string `yaml:"properties"`
	Enquiries  string `yaml:"enquiries"`
	Analytics  string `yaml:"analytics"`
	Admins     string `yaml:"admins"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

// LLMConfig selects the text generation backend for the chatbot. An empty
// APIKey disables generation and the chatbot answers from templates only.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

type MediaConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

type CompanyConfig struct {
	Name     string `yaml:"name"`
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	Location string `yaml:"location"`
}

type LogConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	FluentHost   string `yaml:"fluent_host"`
	FluentPort   int    `yaml:"fluent_port"`
	FluentTag    string `yaml:"fluent_tag"`
	FluentEnable bool   `yaml:"fluent_enabled"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type DashboardConfig struct {
	Timezone string `yaml:"timezone"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			BodyLimit:       "50M",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "hitech",
			Collections: CollectionConfig{
				Properties: "properties",
				Enquiries:  "enquiries",
				Analytics:  "analytics",
				Admins:     "admins",
			},
		},
		Redis: RedisConfig{
			Enabled:  true,
			Addr:     "localhost:6379",
			Prefix:   "hitech:",
			CacheTTL: 5 * time.Minute,
		},
		Auth: AuthConfig{ExpiryHours: 24},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			BaseURL:     "https://api.openai.com/v1",
			MaxTokens:   800,
			Temperature: 0.7,
			Timeout:     30 * time.Second,
			MaxRetries:  2,
		},
		Media: MediaConfig{Folder: "hitech-homes"},
		Company: CompanyConfig{
			Name:     "Hi-Tech Homes",
			Phone:    "+91 98765 43210",
			Email:    "info@hitechhomes.com",
			Location: "Mumbai, Maharashtra",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			FluentHost: "localhost",
			FluentPort: 24224,
			FluentTag:  "hitech",
		},
		RateLimit: RateLimitConfig{Requests: 60, Window: time.Minute},
		Dashboard: DashboardConfig{Timezone: "UTC"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.BodyLimit, "BODY_LIMIT")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Mongo.URI, "MONGODB_URI")
	setString(&c.Mongo.Database, "MONGODB_DATABASE")
	setString(&c.Mongo.Collections.Properties, "MONGODB_COLLECTION_PROPERTIES")
	setString(&c.Mongo.Collections.Enquiries, "MONGODB_COLLECTION_ENQUIRIES")
	setString(&c.Mongo.Collections.Analytics, "MONGODB_COLLECTION_ANALYTICS")
	setString(&c.Mongo.Collections.Admins, "MONGODB_COLLECTION_ADMINS")

	setBool(&c.Redis.Enabled, "REDIS_ENABLED")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setInt(&c.Auth.ExpiryHours, "JWT_EXPIRY_HOURS")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	switch c.LLM.Provider {
	case "gemini":
		setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	default:
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	}

	setString(&c.Media.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&c.Media.APIKey, "CLOUDINARY_API_KEY")
	setString(&c.Media.APISecret, "CLOUDINARY_API_SECRET")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setBool(&c.Log.FluentEnable, "FLUENT_ENABLED")
	setString(&c.Log.FluentHost, "FLUENT_HOST")
	setInt(&c.Log.FluentPort, "FLUENT_PORT")

	setInt(&c.RateLimit.Requests, "RATE_LIMIT_REQUESTS")
	setString(&c.Dashboard.Timezone, "DASHBOARD_TIMEZONE")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo uri is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("dashboard timezone: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) DashboardLocation() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
