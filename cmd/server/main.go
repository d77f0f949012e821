// Package main — запуск вебхука как обычного HTTP-сервера.
// Загружает конфигурацию (в том числе из .env), поднимает HTTP-сервер
// и планировщик сводок. Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/app"
	"make-them-rich/internal/common"
	"make-them-rich/internal/config"
	"make-them-rich/internal/jobs"
	"make-them-rich/internal/server"
)

func main() {
	app.SetupLogging(false)

	log.Info("=== Вебхук запускается ===")

	// .env нужен только для локальной разработки, в контейнере его нет
	if err := godotenv.Load(); err != nil {
		log.Debug(".env не найден, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}
	app.ApplyLogLevel(cfg)

	// Контекст отменяется по Ctrl+C или docker stop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}
	defer application.Close()

	scheduler := jobs.NewScheduler(application.Repo, cfg.SummaryCron, common.LoadLocation(cfg.AppTimezone))
	if err := scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Не удалось запустить планировщик")
	}
	defer scheduler.Stop()

	srv := server.New(cfg.ServerAddr, application.Handler, application.Repo, cfg.ServerReadTimeout, cfg.ServerWriteTimeout)

	log.Info("=== Вебхук готов к работе ===")

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("HTTP-сервер завершился с ошибкой")
	}

	log.Info("=== Вебхук остановлен ===")
}
