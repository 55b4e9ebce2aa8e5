package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`

	SeedFile  string `mapstructure:"seed_file"`
	OutputDir string `mapstructure:"output_dir"`

	// MaxPages <= 0 means unbounded.
	MaxPages   int64 `mapstructure:"max_pages"`
	MaxBytes   int64 `mapstructure:"max_bytes"`
	RotateSize int64 `mapstructure:"rotate_size"`

	Workers       int `mapstructure:"workers"`
	HopLimit      int `mapstructure:"hop_limit"`
	QueueCapacity int `mapstructure:"queue_capacity"`

	SubredditFetchLimit int `mapstructure:"subreddit_fetch_limit"`
	RateLimitRetries    int `mapstructure:"rate_limit_retries"`

	IdleTimeoutSeconds      int64         `mapstructure:"idle_timeout_seconds"`
	PollIntervalSeconds     int64         `mapstructure:"poll_interval_seconds"`
	RateLimitBackoffSeconds int64         `mapstructure:"rate_limit_backoff_seconds"`
	RequestTimeoutSeconds   int64         `mapstructure:"request_timeout_seconds"`
	IdleTimeout             time.Duration `mapstructure:"-"`
	PollInterval            time.Duration `mapstructure:"-"`
	RateLimitBackoff        time.Duration `mapstructure:"-"`
	RequestTimeout          time.Duration `mapstructure:"-"`

	VisitedStoreType      string        `mapstructure:"visited_store_type"`
	BBoltPath             string        `mapstructure:"bbolt_path"`
	VisitedTTLSeconds     int64         `mapstructure:"visited_ttl_seconds"`
	VisitedCleanupSeconds int64         `mapstructure:"visited_cleanup_interval_seconds"`
	VisitedTTL            time.Duration `mapstructure:"-"`
	VisitedCleanup        time.Duration `mapstructure:"-"`

	Credentials Credentials `mapstructure:"-"`
}

// Credentials are the Reddit API secrets, supplied out-of-band via the
// environment. ClientID, ClientSecret and UserAgent are mandatory; the
// account identity pair is optional (app-only grant when absent).
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Username     string
	Password     string
}

// Validate reports whether the mandatory secrets are present.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "CLIENT_SECRET")
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		missing = append(missing, "USER_AGENT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("USER_ID and USER_PASS must be set together")
	}
	return nil
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "reddit-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
	v.SetDefault("seed_file", "seeds.txt")
	v.SetDefault("output_dir", "output")
	v.SetDefault("max_pages", 0)
	v.SetDefault("max_bytes", int64(500*1024*1024))
	v.SetDefault("rotate_size", int64(10*1024*1024))
	v.SetDefault("workers", 16)
	v.SetDefault("hop_limit", 1)
	v.SetDefault("queue_capacity", 4096)
	v.SetDefault("subreddit_fetch_limit", 100)
	v.SetDefault("rate_limit_retries", 5)
	v.SetDefault("idle_timeout_seconds", 60)
	v.SetDefault("poll_interval_seconds", 15)
	v.SetDefault("rate_limit_backoff_seconds", 2)
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("visited_store_type", "memory")
	v.SetDefault("bbolt_path", "./data/visited.db")
	v.SetDefault("visited_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("visited_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("invalid max_bytes (must be positive)")
	}
	if cfg.RotateSize <= 0 {
		return nil, fmt.Errorf("invalid rotate_size (must be positive)")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("invalid workers (must be positive)")
	}
	if cfg.HopLimit < 0 {
		return nil, fmt.Errorf("invalid hop_limit (must not be negative)")
	}
	if cfg.QueueCapacity <= 0 {
		return nil, fmt.Errorf("invalid queue_capacity (must be positive)")
	}
	if cfg.IdleTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid idle_timeout_seconds (must be positive seconds)")
	}
	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_interval_seconds (must be positive seconds)")
	}
	if cfg.RateLimitBackoffSeconds <= 0 {
		return nil, fmt.Errorf("invalid rate_limit_backoff_seconds (must be positive seconds)")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.IdleTimeout = time.Duration(cfg.IdleTimeoutSeconds) * time.Second
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	cfg.RateLimitBackoff = time.Duration(cfg.RateLimitBackoffSeconds) * time.Second
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.VisitedTTL = time.Duration(cfg.VisitedTTLSeconds) * time.Second
	cfg.VisitedCleanup = time.Duration(cfg.VisitedCleanupSeconds) * time.Second

	cfg.Credentials = Credentials{
		ClientID:     v.GetString("client_id"),
		ClientSecret: v.GetString("client_secret"),
		UserAgent:    v.GetString("user_agent"),
		Username:     v.GetString("user_id"),
		Password:     v.GetString("user_pass"),
	}
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
