package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Export    ExportConfig    `mapstructure:"export"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite file path
	URL             string        `mapstructure:"url"`    // postgres DSN
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the driver-appropriate connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

type YouTubeConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	MaxRetries         int           `mapstructure:"max_retries"`
	BackoffBaseSeconds float64       `mapstructure:"backoff_base_seconds"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
}

type JobsConfig struct {
	Workers          int           `mapstructure:"workers"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	TimeoutSeconds   int           `mapstructure:"timeout_seconds"`
	ResultTTLSeconds int           `mapstructure:"result_ttl_seconds"`
}

// Timeout returns the per-job execution ceiling.
func (c *JobsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResultTTL returns how long terminal job records are retained.
func (c *JobsConfig) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLSeconds) * time.Second
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	Burst             int     `mapstructure:"burst"`
}

type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ExportConfig struct {
	UploadEnabled bool   `mapstructure:"upload_enabled"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	PublicURL     string `mapstructure:"public_url"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/videos.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.max_retries", 5)
	v.SetDefault("youtube.backoff_base_seconds", 0.5)
	v.SetDefault("youtube.connect_timeout", 3*time.Second+50*time.Millisecond)
	v.SetDefault("youtube.read_timeout", 15*time.Second)
	v.SetDefault("jobs.workers", 2)
	v.SetDefault("jobs.poll_interval", 2*time.Second)
	v.SetDefault("jobs.timeout_seconds", 7200)
	v.SetDefault("jobs.result_ttl_seconds", 86400)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("notify.enabled", true)
	v.SetDefault("export.upload_enabled", false)
	v.SetDefault("export.use_ssl", true)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data and the
	// operational tunables the pipeline reads.
	v.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")
	v.BindEnv("youtube.max_retries", "API_MAX_RETRIES")
	v.BindEnv("youtube.backoff_base_seconds", "API_BACKOFF_BASE_SECONDS")
	v.BindEnv("jobs.timeout_seconds", "CHANNEL_JOB_TIMEOUT_SECONDS")
	v.BindEnv("jobs.result_ttl_seconds", "CHANNEL_JOB_RESULT_TTL_SECONDS")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("export.endpoint", "EXPORT_S3_ENDPOINT")
	v.BindEnv("export.access_key", "EXPORT_S3_ACCESS_KEY")
	v.BindEnv("export.secret_key", "EXPORT_S3_SECRET_KEY")
	v.BindEnv("export.bucket", "EXPORT_S3_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
