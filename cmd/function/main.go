// Package main — точка входа облачной функции.
// Конфигурация и пул соединений создаются при холодном старте,
// дальше каждое событие VK обрабатывается отдельным вызовом.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/app"
	"make-them-rich/internal/config"
)

func main() {
	app.SetupLogging(true)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}
	app.ApplyLogLevel(cfg)

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}

	log.Info("Функция готова к приёму событий")

	lambda.StartWithOptions(
		application.Handler.Handle,
		lambda.WithEnableSIGTERM(func() {
			log.Info("Получен SIGTERM, закрываем пул соединений")
			application.Close()
		}),
	)
}
