// Package config отвечает за:
// - чтение server.yaml (если он есть)
// - наложение переменных окружения поверх yaml (cleanenv)
// - проставление дефолтов
// - валидацию (чтобы сервер не стартовал с дырявыми настройками)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/IvanChernomyrdin/go-users-api/internal/shared/logger"
)

// DefaultPath — конфиг, который читается, если путь не передан ни флагом, ни CONFIG_PATH.
var DefaultPath = filepath.Join("configs", "server.yaml")

// Config — корневая структура всего конфига сервера.
type Config struct {
	Env           string              `yaml:"env" env:"APP_ENV" env-default:"dev"` // dev|stage|prod
	Server        ServerConfig        `yaml:"server"`
	DB            DBConfig            `yaml:"db"`
	Migrations    MigrationsConfig    `yaml:"migrations"`
	Password      PasswordConfig      `yaml:"password"`
	Health        HealthConfig        `yaml:"health"`
	CORS          CORSConfig          `yaml:"cors"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig — настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host" env:"APP_HOST" env-default:"0.0.0.0"`
	Port              int           `yaml:"port" env:"APP_PORT" env-default:"3000"`
	ReadTimeout       time.Duration `yaml:"read_timeout" env-default:"10s"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env-default:"5s"`
	WriteTimeout      time.Duration `yaml:"write_timeout" env-default:"15s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env-default:"10s"` // время на graceful shutdown
	RequestTimeout    time.Duration `yaml:"request_timeout" env-default:"10s"`  // дедлайн контекста одного запроса
	MaxHeaderBytes    int           `yaml:"max_header_bytes" env-default:"1048576"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" env-default:"1048576"` // лимит размера тела запроса
	APIPrefix         string        `yaml:"api_prefix" env-default:"/api/v1"`
}

// Addr возвращает адрес в формате host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	URL              string        `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	AdminURL         string        `yaml:"admin_url" env:"DATABASE_ADMIN_URL"` // учётка с правом CREATE DATABASE, опционально
	MaintenanceDB    string        `yaml:"maintenance_db" env-default:"postgres"`
	MaxOpenConns     int           `yaml:"max_open_conns" env-default:"10"`
	MaxIdleConns     int           `yaml:"max_idle_conns" env-default:"5"`
	ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
	ConnMaxIdleTime  time.Duration `yaml:"conn_max_idle_time" env-default:"5m"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" env-default:"5s"`
	ProvisionTimeout time.Duration `yaml:"provision_timeout" env-default:"10s"`
}

// MigrationsConfig — настройки миграций БД.
type MigrationsConfig struct {
	Enabled bool `yaml:"enabled" env:"MIGRATIONS_ENABLED" env-default:"true"`
}

// PasswordConfig — настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher string       `yaml:"hasher" env:"PASSWORD_HASHER" env-default:"bcrypt"` // argon2id|bcrypt
	Argon2 Argon2Config `yaml:"argon2"`
	Bcrypt BcryptConfig `yaml:"bcrypt"`
}

// Argon2Config — параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time" env-default:"1"`
	MemoryKiB uint32 `yaml:"memory_kib" env-default:"65536"`
	Threads   uint8  `yaml:"threads" env-default:"4"`
	KeyLen    uint32 `yaml:"key_len" env-default:"32"`
	SaltLen   uint32 `yaml:"salt_len" env-default:"16"`
}

// BcryptConfig — параметры bcrypt.
type BcryptConfig struct {
	Cost int `yaml:"cost" env:"BCRYPT_COST" env-default:"12"`
}

// HealthConfig — настройки readiness-пробы.
type HealthConfig struct {
	ProbeTimeout time.Duration `yaml:"probe_timeout" env-default:"2s"`
}

// CORSConfig — разрешённые источники для браузерных клиентов.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// LogConfig — настройки логирования (zap + lumberjack).
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`      // debug|info|warn|error
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"console"` // json|console
	File       string `yaml:"file" env:"LOG_FILE" env-default:"runtime/logs/http.log"`
	Stdout     bool   `yaml:"stdout" env:"LOG_STDOUT" env-default:"true"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"10"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
	Compress   bool   `yaml:"compress" env-default:"true"`
}

// Options переводит секцию log в опции логгера.
func (l LogConfig) Options() logger.Options {
	return logger.Options{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		Stdout:     l.Stdout,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// ObservabilityConfig — метрики и документация API.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Swagger SwaggerConfig `yaml:"swagger"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path" env-default:"/metrics"`
}

type SwaggerConfig struct {
	Enabled bool `yaml:"enabled" env:"SWAGGER_ENABLED" env-default:"true"`
}

// LoadDotEnv подгружает .env в окружение процесса. Отсутствие файла не ошибка.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("не удалось прочитать %s: %w", f, err)
		}
	}
	return nil
}

// Load читает конфиг по приоритету:
//  1. явный путь (файл обязан существовать);
//  2. CONFIG_PATH;
//  3. configs/server.yaml, если он есть;
//  4. только переменные окружения.
//
// Переменные окружения всегда перекрывают значения из yaml.
// После чтения проставляет дефолты и валидирует.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("конфиг не найден: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults — дефолтные значения для незаданных полей.
// Нужен, когда Config собирается вручную (тесты, встраивание), без cleanenv.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.APIPrefix == "" {
		cfg.Server.APIPrefix = "/api/v1"
	}
	if cfg.DB.MaintenanceDB == "" {
		cfg.DB.MaintenanceDB = "postgres"
	}
	if cfg.DB.ConnectTimeout == 0 {
		cfg.DB.ConnectTimeout = 5 * time.Second
	}
	if cfg.DB.ProvisionTimeout == 0 {
		cfg.DB.ProvisionTimeout = 10 * time.Second
	}
	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "bcrypt"
	}
	if cfg.Password.Bcrypt.Cost == 0 {
		cfg.Password.Bcrypt.Cost = 12
	}
	if cfg.Password.Argon2 == (Argon2Config{}) {
		cfg.Password.Argon2 = Argon2Config{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
	}
	if cfg.Health.ProbeTimeout == 0 {
		cfg.Health.ProbeTimeout = 2 * time.Second
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Observability.Metrics.Path == "" {
		cfg.Observability.Metrics.Path = "/metrics"
	}
}

// Validate проверяет, что конфиг заполнен корректно и безопасно.
// Если что-то не так — возвращаем ошибку и сервер НЕ стартует.
func (c *Config) Validate() error {
	// Базовая проверка сервера
	if c.Server.Host == "" {
		return errors.New("server.host обязателен")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port некорректен: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 || c.Server.RequestTimeout <= 0 {
		return errors.New("server.shutdown_timeout и server.request_timeout должны быть > 0")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes должен быть > 0")
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix должен начинаться с / (сейчас %q)", c.Server.APIPrefix)
	}

	// База данных
	if c.DB.URL == "" {
		return errors.New("db.url обязателен (DATABASE_URL)")
	}
	if err := checkPostgresURL("db.url", c.DB.URL); err != nil {
		return err
	}
	if c.DB.AdminURL != "" {
		if err := checkPostgresURL("db.admin_url", c.DB.AdminURL); err != nil {
			return err
		}
	}
	if c.DB.ConnectTimeout <= 0 || c.DB.ProvisionTimeout <= 0 {
		return errors.New("db.connect_timeout и db.provision_timeout должны быть > 0")
	}
	if c.DB.MaxOpenConns < 0 || c.DB.MaxIdleConns < 0 {
		return errors.New("db.max_open_conns и db.max_idle_conns не могут быть отрицательными")
	}

	// Хэширование паролей
	switch strings.ToLower(c.Password.Hasher) {
	case "argon2id":
		a := c.Password.Argon2
		if a.Time == 0 || a.MemoryKiB == 0 || a.Threads == 0 || a.KeyLen == 0 || a.SaltLen == 0 {
			return errors.New("password.argon2 должен быть настроен для argon2id")
		}
	case "bcrypt":
		if c.Password.Bcrypt.Cost < bcrypt.MinCost || c.Password.Bcrypt.Cost > bcrypt.MaxCost {
			return fmt.Errorf("password.bcrypt.cost должен быть в диапазоне %d..%d (сейчас %d)",
				bcrypt.MinCost, bcrypt.MaxCost, c.Password.Bcrypt.Cost)
		}
	default:
		return fmt.Errorf("password.hasher должен быть argon2id|bcrypt (сейчас %q)", c.Password.Hasher)
	}

	if c.Health.ProbeTimeout <= 0 {
		return errors.New("health.probe_timeout должен быть > 0")
	}

	// Логи
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level должен быть debug|info|warn|error (сейчас %q)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format должен быть json|console (сейчас %q)", c.Log.Format)
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		return fmt.Errorf("observability.metrics.path должен начинаться с / (сейчас %q)", c.Observability.Metrics.Path)
	}

	return nil
}

func checkPostgresURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s не является URL", field)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%s должен иметь схему postgres:// или postgresql:// (сейчас %q)", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: не указан хост", field)
	}
	return nil
}
