// Package config загружает конфигурацию вебхука из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
// Конфигурация читается один раз при старте и передаётся по указателю.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	// В образе облачной функции может не быть системной базы часовых поясов.
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- VK Callback API ---
	// Строка, которую VK ждёт в ответ на событие confirmation.
	// Может быть пустой: тогда ответ на confirmation будет пустым.
	VerificationCode string `envconfig:"VERIFICATION_CODE"`
	// Argon2id-хеш секретного ключа из настроек Callback API.
	// Пусто — секрет не проверяется.
	CallbackSecretHash string `envconfig:"CALLBACK_SECRET_HASH"`

	// --- Database ---
	DBName     string `envconfig:"POSTGRES_DB" required:"true"`
	DBUser     string `envconfig:"POSTGRES_USER" required:"true"`
	DBPassword string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBHost     string `envconfig:"POSTGRES_HOST" required:"true"`
	DBPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	DBSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	// В облачной функции один инстанс обрабатывает одно событие за раз,
	// поэтому большой пул не нужен.
	DBMaxConns int32 `envconfig:"DB_MAX_CONNS" default:"4"`
	DBMinConns int32 `envconfig:"DB_MIN_CONNS" default:"0"`

	// --- Application ---
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- HTTP server mode ---
	ServerAddr         string        `envconfig:"SERVER_ADDR" default:":8080"`
	ServerReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`

	// --- Jobs ---
	SummaryCron string `envconfig:"SUMMARY_CRON" default:"0 0 * * *"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате URL.
// Логин и пароль экранируются: в паролях часто бывают '@' и '/'.
func (c *Config) DatabaseDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// SecretCheckEnabled сообщает, нужно ли сверять поле secret входящих событий.
func (c *Config) SecretCheckEnabled() bool {
	return c.CallbackSecretHash != ""
}

func (c *Config) Validate() error {
	// required:"true" в envconfig пропускает пустые значения, проверяем сами
	for name, v := range map[string]string{
		"POSTGRES_DB":       c.DBName,
		"POSTGRES_USER":     c.DBUser,
		"POSTGRES_PASSWORD": c.DBPassword,
		"POSTGRES_HOST":     c.DBHost,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s не задан", name)
		}
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		return fmt.Errorf("POSTGRES_PORT вне диапазона: %d", c.DBPort)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.CallbackSecretHash != "" && !strings.HasPrefix(c.CallbackSecretHash, "$argon2id$") {
		return fmt.Errorf("CALLBACK_SECRET_HASH должен быть в формате argon2id")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	cfg.CallbackSecretHash = strings.TrimSpace(cfg.CallbackSecretHash)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
