package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	DB        DBConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Shortener ShortenerConfig
	Log       LogConfig
}

type AppConfig struct {
	Port            string
	BaseURL         string
	GinMode         string
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Driver string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32
	MinConns int32
}

type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// PoolSize и MinIdleConns: 0 оставляет значения go-redis по умолчанию
	PoolSize     int
	MinIdleConns int
}

type ShortenerConfig struct {
	CodeLength          int
	MaxCustomCodeLength int
	MaxURLLength        int
	MaxGenerateAttempts int
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("BASE_URL", "")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)

	v.SetDefault("STORE_DRIVER", DriverSQLite)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "shortn")
	v.SetDefault("DB_PASSWORD", "shortn")
	v.SetDefault("DB_NAME", "shortn")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)

	v.SetDefault("SQLITE_PATH", "./data/url_shortener.db")
	v.SetDefault("SQLITE_BUSY_TIMEOUT", 5*time.Second)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)

	v.SetDefault("SHORT_CODE_LENGTH", 6)
	v.SetDefault("MAX_CUSTOM_CODE_LENGTH", 20)
	v.SetDefault("MAX_URL_LENGTH", 2048)
	v.SetDefault("MAX_GENERATE_ATTEMPTS", 50)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
}

// Load читает .env (если он есть) и переменные окружения
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Отсутствующий .env не ошибка: значения берутся из окружения и умолчаний
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.BaseURL = v.GetString("BASE_URL")
	cfg.App.GinMode = v.GetString("GIN_MODE")
	cfg.App.ShutdownTimeout = v.GetDuration("SHUTDOWN_TIMEOUT")

	cfg.Store.Driver = v.GetString("STORE_DRIVER")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.MaxConns = v.GetInt32("DB_MAX_CONNS")
	cfg.DB.MinConns = v.GetInt32("DB_MIN_CONNS")

	cfg.SQLite.Path = v.GetString("SQLITE_PATH")
	cfg.SQLite.BusyTimeout = v.GetDuration("SQLITE_BUSY_TIMEOUT")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")

	cfg.Shortener.CodeLength = v.GetInt("SHORT_CODE_LENGTH")
	cfg.Shortener.MaxCustomCodeLength = v.GetInt("MAX_CUSTOM_CODE_LENGTH")
	cfg.Shortener.MaxURLLength = v.GetInt("MAX_URL_LENGTH")
	cfg.Shortener.MaxGenerateAttempts = v.GetInt("MAX_GENERATE_ATTEMPTS")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.File = v.GetString("LOG_FILE")
	cfg.Log.MaxSizeMB = v.GetInt("LOG_MAX_SIZE_MB")
	cfg.Log.MaxBackups = v.GetInt("LOG_MAX_BACKUPS")
	cfg.Log.MaxAgeDays = v.GetInt("LOG_MAX_AGE_DAYS")

	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.App.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s (must be 1-65535)", c.App.Port)
	}

	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("invalid store driver: %q (must be postgres, sqlite or redis)", c.Store.Driver)
	}

	if c.Store.Driver == DriverSQLite && c.SQLite.Path == "" {
		return errors.New("sqlite path cannot be empty")
	}

	if c.Redis.PoolSize < 0 || c.Redis.MinIdleConns < 0 {
		return errors.New("redis pool sizes cannot be negative")
	}

	s := c.Shortener
	if s.CodeLength <= 0 || s.MaxCustomCodeLength <= 0 || s.MaxURLLength <= 0 || s.MaxGenerateAttempts <= 0 {
		return errors.New("shortener limits must be positive")
	}

	return nil
}
