package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const DevSecretKey = "dev"

type DB struct {
	Driver     string `toml:"driver"`
	DbHOST     string `toml:"host"`
	DbPORT     string `toml:"port"`
	DbUSER     string `toml:"user"`
	DbPASSWORD string `toml:"password"`
	DbNAME     string `toml:"name"`
	DbSSLMODE  string `toml:"sslmode"`
	SQLitePath string `toml:"sqlite_path"`
}

type Session struct {
	SecretKey  string        `toml:"secret_key"`
	CookieName string        `toml:"cookie_name"`
	Duration   time.Duration `toml:"-"`
	Secure     bool          `toml:"secure"`
}

type RateLimit struct {
	// Login is the number of login attempts allowed per Window and client IP.
	// Zero disables the limiter.
	Login     int           `toml:"login"`
	Window    time.Duration `toml:"-"`
	RedisAddr string        `toml:"redis_addr"`
	// TrustProxyHeaders keys clients on X-Forwarded-For / X-Real-IP instead of
	// the connection address. Only safe behind a proxy that sets them.
	TrustProxyHeaders bool `toml:"trust_proxy_headers"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	ServerPort   int       `toml:"server_port"`
	InstancePath string    `toml:"-"`
	DB           DB        `toml:"db"`
	Session      Session   `toml:"session"`
	RateLimit    RateLimit `toml:"rate_limit"`
	Log          Log       `toml:"log"`
}

// fileConfig mirrors Config for the instance file, where durations are
// written as strings ("24h").
type fileConfig struct {
	Config
	SessionDuration string `toml:"session_duration"`
	RateLimitWindow string `toml:"rate_limit_window"`
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		return parseDuration(value, fallback)
	}
	return fallback
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

// Default returns the built-in configuration used when neither the instance
// file nor the environment set a value.
func Default() *Config {
	return &Config{
		ServerPort:   8080,
		InstancePath: "instance",
		DB: DB{
			Driver:     "sqlite",
			DbHOST:     "localhost",
			DbPORT:     "5432",
			DbUSER:     "postgres",
			DbPASSWORD: "password",
			DbNAME:     "blogr",
			DbSSLMODE:  "disable",
			SQLitePath: filepath.Join("instance", "blogr.sqlite"),
		},
		Session: Session{
			SecretKey:  DevSecretKey,
			CookieName: "session",
			Duration:   168 * time.Hour,
		},
		RateLimit: RateLimit{
			Login:  5,
			Window: time.Minute,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile decodes the TOML instance file at path over cfg. A missing file is
// not an error.
func LoadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	fc := fileConfig{Config: *cfg}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return errors.Wrapf(err, "decode config file %s", path)
	}

	fc.Config.Session.Duration = parseDuration(fc.SessionDuration, cfg.Session.Duration)
	fc.Config.RateLimit.Window = parseDuration(fc.RateLimitWindow, cfg.RateLimit.Window)
	fc.Config.InstancePath = cfg.InstancePath
	*cfg = fc.Config
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnvAsInt("SERVER_PORT", cfg.ServerPort)

	cfg.DB = DB{
		Driver:     getEnv("DB_DRIVER", cfg.DB.Driver),
		DbHOST:     getEnv("DB_HOST", cfg.DB.DbHOST),
		DbPORT:     getEnv("DB_PORT", cfg.DB.DbPORT),
		DbUSER:     getEnv("DB_USER", cfg.DB.DbUSER),
		DbPASSWORD: getEnv("DB_PASSWORD", cfg.DB.DbPASSWORD),
		DbNAME:     getEnv("DB_NAME", cfg.DB.DbNAME),
		DbSSLMODE:  getEnv("DB_SSLMODE", cfg.DB.DbSSLMODE),
		SQLitePath: getEnv("SQLITE_PATH", cfg.DB.SQLitePath),
	}

	cfg.Session = Session{
		SecretKey:  getEnv("SECRET_KEY", cfg.Session.SecretKey),
		CookieName: getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName),
		Duration:   getEnvDuration("SESSION_DURATION", cfg.Session.Duration),
		Secure:     getEnvBool("SESSION_SECURE", cfg.Session.Secure),
	}

	cfg.RateLimit = RateLimit{
		Login:     getEnvAsInt("LOGIN_RATE_LIMIT", cfg.RateLimit.Login),
		Window:    getEnvDuration("LOGIN_RATE_WINDOW", cfg.RateLimit.Window),
		RedisAddr: getEnv("REDIS_ADDR", cfg.RateLimit.RedisAddr),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", cfg.RateLimit.TrustProxyHeaders),
	}

	cfg.Log = Log{
		Level:  getEnv("LOG_LEVEL", cfg.Log.Level),
		Format: getEnv("LOG_FORMAT", cfg.Log.Format),
	}
}

// LoadConfig builds the configuration in three layers: defaults, the optional
// instance/config.toml file, then environment variables (a .env file is read
// first if present).
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.InstancePath = getEnv("INSTANCE_PATH", cfg.InstancePath)
	cfg.DB.SQLitePath = filepath.Join(cfg.InstancePath, "blogr.sqlite")

	if err := LoadFile(cfg, filepath.Join(cfg.InstancePath, "config.toml")); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}
