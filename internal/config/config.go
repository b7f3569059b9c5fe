package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Authorize AuthorizeConfig
	Cleanup   CleanupConfig
	App       AppConfig
}

type ServerConfig struct {
	ListenAddr   string        `env:"API_LISTEN" envDefault:"0.0.0.0:3000"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Host      string `env:"DB_HOST" envDefault:"localhost"`
	Port      int    `env:"DB_PORT" envDefault:"5432"`
	User      string `env:"DB_USER" envDefault:"meowv"`
	Password  string `env:"DB_PASSWORD" envDefault:"meowv"`
	Name      string `env:"DB_NAME" envDefault:"meowv_blog"`
	SSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns  int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	SocketDir string `env:"DB_SOCKET_DIR"` // Unix socket directory (e.g. /var/run/postgresql)
}

func (c DatabaseConfig) DSN() string {
	if c.SocketDir != "" {
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s sslmode=%s",
			c.SocketDir, c.User, c.Password, c.Name, c.SSLMode,
		)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host       string `env:"REDIS_HOST" envDefault:"localhost"`
	Port       int    `env:"REDIS_PORT" envDefault:"6379"`
	Password   string `env:"REDIS_PASSWORD"`
	DB         int    `env:"REDIS_DB" envDefault:"0"`
	SocketPath string `env:"REDIS_SOCKET"` // Unix socket path (e.g. /var/run/redis/redis.sock)
}

func (c RedisConfig) Addr() string {
	if c.SocketPath != "" {
		return c.SocketPath
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c RedisConfig) Network() string {
	if c.SocketPath != "" {
		return "unix"
	}
	return "tcp"
}

// JWTConfig holds the token signing settings. Issuer, Audience and SigningKey
// have no defaults; a missing value stops the server at boot.
type JWTConfig struct {
	Issuer         string        `env:"JWT_ISSUER"`
	Audience       string        `env:"JWT_AUDIENCE"`
	SigningKey     string        `env:"JWT_SIGNING_KEY"`
	// Expires takes a Go duration ("30m", "2h") or a bare number of minutes.
	Expires        time.Duration `env:"JWT_EXPIRES" envDefault:"30m"`
	DefaultSubject string        `env:"JWT_DEFAULT_SUBJECT" envDefault:"meowv"`
	DefaultName    string        `env:"JWT_DEFAULT_NAME" envDefault:"阿星Plus"`
	DefaultEmail   string        `env:"JWT_DEFAULT_EMAIL" envDefault:"123@meowv.com"`
}

const (
	StateBackendMemory = "memory"
	StateBackendRedis  = "redis"
)

type AuthorizeConfig struct {
	Account AccountConfig
	GitHub  ProviderConfig `envPrefix:"OAUTH_GITHUB_"`
	Gitee   ProviderConfig `envPrefix:"OAUTH_GITEE_"`

	// StateBackend selects where OAuth state tokens live: "memory" or "redis".
	StateBackend string        `env:"OAUTH_STATE_BACKEND" envDefault:"redis"`
	StateTTL     time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	HTTPTimeout  time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
}

// AccountConfig is the single static account allowed to log in with a password.
// PasswordHash (bcrypt) takes precedence over Password when both are set.
type AccountConfig struct {
	Username     string `env:"AUTHORIZE_ACCOUNT_USERNAME"`
	Password     string `env:"AUTHORIZE_ACCOUNT_PASSWORD"`
	PasswordHash string `env:"AUTHORIZE_ACCOUNT_PASSWORD_HASH"`
}

// ProviderConfig is an optional OAuth provider section. A provider is only
// enabled when both ClientID and ClientSecret are set. The URL fields
// override the provider's public endpoints.
type ProviderConfig struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURL  string   `env:"REDIRECT_URL"`
	Scopes       []string `env:"SCOPES" envSeparator:","`
	AuthorizeURL string   `env:"AUTHORIZE_URL"`
	TokenURL     string   `env:"TOKEN_URL"`
	UserinfoURL  string   `env:"USERINFO_URL"`
}

func (c ProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type CleanupConfig struct {
	Enabled       bool          `env:"CLEANUP_ENABLED" envDefault:"true"`
	Interval      time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`
	RetentionDays int           `env:"CLEANUP_RETENTION_DAYS" envDefault:"30"`
}

type AppConfig struct {
	Environment        string   `env:"APP_ENV" envDefault:"production"`
	BaseURL            string   `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	environ := env.ToMap(os.Environ())
	if v, ok := environ["JWT_EXPIRES"]; ok {
		environ["JWT_EXPIRES"] = minutesToDuration(v)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.App.CORSAllowedOrigins = trimCSV(cfg.App.CORSAllowedOrigins)
	cfg.Authorize.GitHub.Scopes = trimCSV(cfg.Authorize.GitHub.Scopes)
	cfg.Authorize.Gitee.Scopes = trimCSV(cfg.Authorize.Gitee.Scopes)
	return cfg, nil
}

// minutesToDuration turns a bare integer into a minutes duration string and
// leaves anything else for the duration parser.
func minutesToDuration(v string) string {
	v = strings.TrimSpace(v)
	if _, err := strconv.Atoi(v); err == nil {
		return v + "m"
	}
	return v
}

// Validate reports settings the server cannot start without. Signing key
// strength is checked again by token.NewIssuer.
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Issuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	if c.JWT.Audience == "" {
		missing = append(missing, "JWT_AUDIENCE")
	}
	if c.JWT.SigningKey == "" {
		missing = append(missing, "JWT_SIGNING_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	switch c.Authorize.StateBackend {
	case StateBackendMemory, StateBackendRedis:
	default:
		return fmt.Errorf("OAUTH_STATE_BACKEND must be %q or %q, got %q",
			StateBackendMemory, StateBackendRedis, c.Authorize.StateBackend)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.App.Environment == "development"
}

// trimCSV removes blank entries left over from splitting a comma list.
func trimCSV(values []string) []string {
	var result []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
