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

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// DefaultAllowedOrigins are the browser origins permitted when
// CORS_ALLOWED_ORIGINS is not set.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"https://inventory-management-system-pi-nine.vercel.app",
}

// Config is built once at startup and passed by pointer to whatever needs it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Driver                 string        `mapstructure:"driver"`
	MongoURI               string        `mapstructure:"mongo_uri"`
	Name                   string        `mapstructure:"name"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	// Family pins the IP address family used to dial the database: 4, 6,
	// or 0 for whatever the resolver returns.
	Family     int    `mapstructure:"family"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	ResetTTL   time.Duration `mapstructure:"reset_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings maps config keys to the exact environment variable names the
// service has always used.
var envBindings = map[string]string{
	"server.port":                       "PORT",
	"database.driver":                   "DB_DRIVER",
	"database.mongo_uri":                "MONGO_URI",
	"database.name":                     "DB_NAME",
	"database.server_selection_timeout": "DB_SERVER_SELECTION_TIMEOUT",
	"database.family":                   "DB_FAMILY",
	"database.sqlite_path":              "SQLITE_PATH",
	"cors.allowed_origins":              "CORS_ALLOWED_ORIGINS",
	"auth.jwt_secret":                   "JWT_SECRET",
	"auth.token_ttl":                    "JWT_TTL",
	"cache.redis_addr":                  "REDIS_ADDR",
	"cache.redis_password":              "REDIS_PASSWORD",
	"cache.redis_db":                    "REDIS_DB",
	"log.level":                         "LOG_LEVEL",
}

// Load reads a .env file from the working directory when one exists, then
// the optional YAML file at path, then overlays the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.mongo_uri", "")
	v.SetDefault("database.name", "inventory")
	v.SetDefault("database.server_selection_timeout", 10*time.Second)
	v.SetDefault("database.family", 4)
	v.SetDefault("database.sqlite_path", "./inventory.db")

	v.SetDefault("cors.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.reset_ttl", time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", time.Minute)

	v.SetDefault("log.level", "info")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Database.Family {
	case 0, 4, 6:
	default:
		return fmt.Errorf("invalid address family %d", c.Database.Family)
	}
	if c.Database.ServerSelectionTimeout <= 0 {
		return errors.New("server selection timeout must be positive")
	}
	return nil
}

// OriginSet returns the allowed origins as a set for constant-time lookups.
func (c CORSConfig) OriginSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		set[o] = struct{}{}
	}
	return set
}

// normalizeOrigins trims whitespace and trailing slashes, drops empties and
// duplicates, and keeps the configured order.
func normalizeOrigins(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		for _, o := range strings.Split(raw, ",") {
			o = strings.TrimRight(strings.TrimSpace(o), "/")
			if o == "" || seen[o] {
				continue
			}
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}
