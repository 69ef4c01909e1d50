package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TASKMANAGER"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AuthModeVerified   = "verified"
	AuthModeUnverified = "unverified"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Upload    UploadConfig    `mapstructure:"upload"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"` // "postgres" or "sqlite"
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ConnectRetries int           `mapstructure:"connect_retries"`
	SlowQuery      time.Duration `mapstructure:"slow_query"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type AuthConfig struct {
	// Mode "unverified" trusts the token's sub claim without checking the
	// signature. Only for local development against legacy clients.
	Mode                  string        `mapstructure:"mode"`
	JWTSecret             string        `mapstructure:"jwt_secret"`
	Issuer                string        `mapstructure:"issuer"`
	TokenTTL              time.Duration `mapstructure:"token_ttl"`
	ExternalPublicKeyFile string        `mapstructure:"external_public_key_file"`
	ExternalIssuer        string        `mapstructure:"external_issuer"`
}

type UploadConfig struct {
	Dir          string   `mapstructure:"dir"`
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

type SeedConfig struct {
	Demo bool `mapstructure:"demo"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.url", "taskmanager.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.slow_query", 100*time.Millisecond)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("logging.development", false)

	v.SetDefault("auth.mode", AuthModeVerified)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "taskmanager")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.external_public_key_file", "")
	v.SetDefault("auth.external_issuer", "")

	v.SetDefault("upload.dir", "uploads/images")
	v.SetDefault("upload.max_file_size", 5*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"})

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_minute", 100)
	v.SetDefault("seed.demo", false)
}

// Load reads the config file (config.yml in the working directory when path
// is empty), a .env file if present, and TASKMANAGER_* environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}

	switch c.Auth.Mode {
	case AuthModeVerified, AuthModeUnverified:
	default:
		return fmt.Errorf("auth.mode: unsupported mode %q", c.Auth.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	if c.Upload.MaxFileSize <= 0 {
		return errors.New("upload.max_file_size must be positive")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
