package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	ReadTimeoutSeconds  int `env:"READ_TIMEOUT_SECONDS" envDefault:"180"`
	WriteTimeoutSeconds int `env:"WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	IdleTimeoutSeconds  int `env:"IDLE_TIMEOUT_SECONDS" envDefault:"180"`

	AcceptedOrigins []string `env:"ACCEPTED_ORIGINS" envSeparator:","`

	DB Database `envPrefix:"DB_"`

	// Auth
	JWTSecret          string `env:"JWT_SECRET"`
	JWTSecretParam     string `env:"JWT_SECRET_SSM_PARAM"` // SSM parameter holding the JWT secret
	TokenTTLMinutes    int    `env:"TOKEN_TTL_MINUTES" envDefault:"1440"`
	AdminUsername      string `env:"ADMIN_USERNAME"`
	AdminPassword      string `env:"ADMIN_PASSWORD"`
	AdminEmail         string `env:"ADMIN_EMAIL"`
	SessionLifetimeHrs int    `env:"SESSION_LIFETIME_HOURS" envDefault:"24"`

	// Cache
	RedisURL        string `env:"REDIS_URL"`
	CachePrefix     string `env:"CACHE_PREFIX" envDefault:"newsroom:"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	// Media
	MediaBackend string `env:"MEDIA_BACKEND" envDefault:"disk"`
	MediaDir     string `env:"MEDIA_DIR" envDefault:"./media"`
	MediaBaseURL string `env:"MEDIA_BASE_URL" envDefault:"/media"`
	S3Bucket     string `env:"S3_BUCKET"`
	S3Prefix     string `env:"S3_PREFIX" envDefault:"featured/"`
	S3PublicURL  string `env:"S3_PUBLIC_URL"` // CDN or bucket website URL; defaults to the bucket's virtual-hosted URL
	MaxUploadMB  int64  `env:"MAX_UPLOAD_MB" envDefault:"5"`

	// Public write endpoints (comments, newsletter, contact)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`

	PageSize int `env:"PAGE_SIZE" envDefault:"10"`

	GenerateModels       bool   `env:"GENERATE_MODELS"`
	GenerateColumnReport bool   `env:"GENERATE_COLUMN_REPORT"`
	GeneratedPath        string `env:"GENERATED_PATH" envDefault:"./generated"`
}

// Database selects and configures the store. TYPE is "postgres" (alias "supa") or "sqlite".
type Database struct {
	Type        string   `env:"TYPE" envDefault:"sqlite"`
	DSN         string   `env:"DSN"`
	Host        string   `env:"HOST"`
	User        string   `env:"USER"`
	Password    string   `env:"PASSWORD"`
	Name        string   `env:"NAME"`
	Port        string   `env:"PORT" envDefault:"5432"`
	SSLMode     string   `env:"SSLMODE" envDefault:"require"`
	Path        string   `env:"PATH" envDefault:"./data/newsroom.db"`
	ReplicaDSNs []string `env:"REPLICA_DSNS" envSeparator:","`

	SlowThresholdSeconds int `env:"SLOW_THRESHOLD_SECONDS" envDefault:"10"`
	MaxOpenConns         int `env:"MAX_OPEN_CONNS" envDefault:"25"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Address returns the listen address. Binds all interfaces for container use.
func (c Config) Address() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Validate rejects configurations that cannot run safely.
func (c Config) Validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET (or JWT_SECRET_SSM_PARAM) is required outside development")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	switch c.DB.Type {
	case "postgres", "supa", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DB.Type)
	}
	switch c.MediaBackend {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}
	if c.PageSize < 1 {
		return errors.New("PAGE_SIZE must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string from the individual DB_* fields
// unless DB_DSN is set.
func (d Database) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}
