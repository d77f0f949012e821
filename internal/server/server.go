// Package server поднимает HTTP-сервер для запуска вебхука вне облачной функции.
// Сырое тело POST-запроса от VK упаковывается в триггер и отдаётся
// тому же обработчику, что и в облаке.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/callback"
	"make-them-rich/internal/metrics"
)

// Максимальный размер тела события. События VK — единицы килобайт.
const maxBodyBytes = 1 << 20

// EventHandler обрабатывает триггер. Реализуется *callback.Handler.
type EventHandler interface {
	Handle(ctx context.Context, req *callback.Request) (callback.Response, error)
}

// Pinger проверяет доступность БД.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server — HTTP-обёртка над обработчиком событий.
type Server struct {
	handler EventHandler
	db      Pinger
	srv     *http.Server
}

// New создаёт сервер. Маршруты:
//   - POST /callback — события VK
//   - GET /healthz — проверка БД
//   - GET /metrics — метрики Prometheus
func New(addr string, handler EventHandler, db Pinger, readTimeout, writeTimeout time.Duration) *Server {
	s := &Server{handler: handler, db: db}
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Router собирает chi-роутер со всеми маршрутами.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Recoverer)

	r.Post("/callback", s.handleCallback)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// Run запускает сервер и блокируется до ошибки или отмены контекста.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", s.srv.Addr).Info("HTTP-сервер запущен")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("HTTP-сервер остановлен")
		return nil
	}
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeText(w, http.StatusUnprocessableEntity, callback.MsgPayloadWrong)
		return
	}

	ctx := callback.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	resp, err := s.handler.Handle(ctx, callback.NewRequest(raw))
	if err != nil {
		// В облаке это была бы ошибка вызова функции; VK повторит доставку
		writeText(w, http.StatusInternalServerError, "Internal error")
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.WithError(err).Warn("Healthcheck: БД недоступна")
		writeText(w, http.StatusServiceUnavailable, "db unavailable")
		return
	}
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
