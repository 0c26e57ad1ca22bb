// Package config handles loading and parsing application configuration.
//
// Values come from a YAML file and can be overridden by environment
// variables (env:"..." tags). A .env file in the working directory is loaded
// into the environment first, so local secrets (GitHub client secret, Redis
// password) never need to live in the YAML file.
//
// The config path is supplied by the --config flag or CONFIG_PATH.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environments recognised in Config.Env.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable.
type Config struct {
	// Env controls log format, verbosity and whether 5xx responses carry
	// error detail. Valid values: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	Storage Storage `yaml:"storage"`

	HTTPServer `yaml:"http_server"`

	Auth Auth `yaml:"auth"`
}

// Storage selects the database. Driver may be left empty, in which case it
// is derived from the DSN ("postgres://..." means PostgreSQL, anything else
// is a SQLite file path).
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" validate:"omitempty,oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true" validate:"required"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr           string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_SERVER_REQUEST_TIMEOUT" env-default:"5s"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace" env:"HTTP_SERVER_SHUTDOWN_GRACE" env-default:"5s"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"HTTP_SERVER_CORS_ALLOWED_ORIGINS" env-separator:","`
}

// Auth configures the login gate.
type Auth struct {
	// Enabled turns the guard on. With it off every route is open and the
	// GitHub routes are not registered.
	Enabled bool `yaml:"enabled" env:"AUTH_ENABLED"`

	// GuardReads also protects GET /api/... routes.
	GuardReads bool `yaml:"guard_reads" env:"AUTH_GUARD_READS"`

	GitHub  GitHub  `yaml:"github"`
	Session Session `yaml:"session"`
}

// GitHub holds the OAuth app credentials.
type GitHub struct {
	ClientID     string `yaml:"client_id" env:"GITHUB_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GITHUB_CLIENT_SECRET"`
	CallbackURL  string `yaml:"callback_url" env:"CALLBACK_URL"`
}

// Session configures the session cookie and where sessions live.
// An empty RedisURL keeps sessions in process memory.
type Session struct {
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"college.sid"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	Secure     bool          `yaml:"secure" env:"SESSION_SECURE"`
	RedisURL   string        `yaml:"redis_url" env:"SESSION_REDIS_URL"`
}

// IsDevelopment reports whether internal error detail may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDev
}

// Validate checks struct tags and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Auth.Enabled {
		gh := c.Auth.GitHub
		if gh.ClientID == "" || gh.ClientSecret == "" || gh.CallbackURL == "" {
			return errors.New("invalid config: auth.enabled requires github client_id, client_secret and callback_url")
		}
	}
	if c.Auth.Session.TTL <= 0 {
		return errors.New("invalid config: auth.session.ttl must be positive")
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
