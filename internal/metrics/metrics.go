// Package metrics описывает счётчики Prometheus для вебхука.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsHandled — обработанные события по типу и коду ответа.
	EventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "callback_events_total",
		Help: "Total number of callback events by type and response status",
	}, []string{"type", "status"})

	// TransactionsRecorded — записанные начисления по типу активности.
	TransactionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "score_transactions_recorded_total",
		Help: "Total number of score transactions written",
	}, []string{"activity"})

	// SettingsMissing — события, пропущенные из-за отсутствия настроек группы.
	SettingsMissing = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "score_settings_missing_total",
		Help: "Total number of events dropped because group settings were not found",
	})

	// PersistenceErrors — ошибки чтения настроек или записи начисления.
	PersistenceErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "score_persistence_errors_total",
		Help: "Total number of database failures while recording scores",
	})

	// HandleLatency — время обработки одного события.
	HandleLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "callback_handle_latency_seconds",
		Help:    "Time to handle a single callback event",
		Buckets: prometheus.DefBuckets,
	})
)

var once sync.Once

// Init регистрирует счётчики в реестре по умолчанию. Повторный вызов ничего не делает.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(EventsHandled, TransactionsRecorded, SettingsMissing, PersistenceErrors, HandleLatency)
	})
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
