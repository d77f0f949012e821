// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозиторий, сервис и обработчик
// событий. Используется и облачной функцией, и HTTP-сервером.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/callback"
	"make-them-rich/internal/config"
	"make-them-rich/internal/db/postgres"
	"make-them-rich/internal/features/scoring"
	"make-them-rich/internal/metrics"
)

// App содержит все компоненты приложения.
type App struct {
	Handler *callback.Handler
	Repo    *scoring.Repository
	DB      *pgxpool.Pool
	Config  *config.Config
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// === 2. Метрики ===
	metrics.Init()

	// === 3. Репозиторий и сервис ===
	repo := scoring.NewRepository(pool)
	scoringService := scoring.NewService(repo)

	// === 4. Обработчик событий ===
	handler := callback.NewHandler(scoringService, cfg)

	if cfg.VerificationCode == "" {
		log.Warn("VERIFICATION_CODE не задан: ответ на confirmation будет пустым")
	}
	if cfg.SecretCheckEnabled() {
		log.Info("Проверка secret включена")
	}

	return &App{
		Handler: handler,
		Repo:    repo,
		DB:      pool,
		Config:  cfg,
	}, nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.DB.Close()
}

// SetupLogging настраивает формат логов.
// В облаке логи читает сборщик, ему удобнее JSON.
func SetupLogging(jsonFormat bool) {
	if jsonFormat {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// ApplyLogLevel устанавливает уровень логирования из конфига.
func ApplyLogLevel(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err != nil {
		log.WithError(err).Warnf("Неизвестный APP_LOG_LEVEL %q, оставляем %s", cfg.AppLogLevel, log.GetLevel())
		return
	}
	log.SetLevel(level)
}
