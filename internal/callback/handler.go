// Package callback — handler.go разбирает событие, выбирает ветку по типу
// и начисляет очки через сервис scoring.
package callback

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/common"
	"make-them-rich/internal/config"
	"make-them-rich/internal/features/scoring"
	"make-them-rich/internal/metrics"
)

// Recorder начисляет очки. Реализуется *scoring.Service.
type Recorder interface {
	Record(ctx context.Context, activity scoring.ActivityType, groupID, userID int64) (scoring.Outcome, error)
}

// Handler обрабатывает события Callback API.
type Handler struct {
	recorder Recorder
	cfg      *config.Config
	verify   func(secret, encodedHash string) bool
}

// NewHandler создаёт обработчик событий.
func NewHandler(recorder Recorder, cfg *config.Config) *Handler {
	return &Handler{recorder: recorder, cfg: cfg, verify: VerifySecret}
}

// Handle обрабатывает один триггер.
//
// Код ответа всегда 200 или 422. Ошибка возвращается только если не удалось
// записать начисление в БД; ответ при этом уже выбран и тоже возвращается.
func (h *Handler) Handle(ctx context.Context, req *Request) (Response, error) {
	start := time.Now()
	logger := log.WithField("trace_id", traceID(ctx))

	resp, eventType, err := h.handle(ctx, logger, req)

	metrics.HandleLatency.Observe(time.Since(start).Seconds())
	metrics.EventsHandled.WithLabelValues(eventType, strconv.Itoa(resp.StatusCode)).Inc()
	if err != nil {
		metrics.PersistenceErrors.Inc()
		logger.WithError(err).Error("Не удалось записать начисление")
	}
	return resp, err
}

func (h *Handler) handle(ctx context.Context, logger *log.Entry, req *Request) (Response, string, error) {
	if req == nil || req.empty() {
		logger.Warn("Пустой триггер")
		return textResponse(http.StatusUnprocessableEntity, MsgUnexpectedEvent), "invalid", nil
	}
	if req.Body == nil {
		logger.WithError(common.ErrEmptyBody).Warn("Триггер отклонён")
		return textResponse(http.StatusUnprocessableEntity, MsgPayloadWrong), "invalid", nil
	}

	ev, err := decodeBody(*req.Body)
	if err != nil {
		logger.WithError(err).WithField("body", common.Truncate(*req.Body, 100)).Warn("Не удалось разобрать событие")
		return textResponse(http.StatusUnprocessableEntity, MsgInvalidJSON), "invalid", nil
	}

	eventType := ev.Type()
	logger = logger.WithFields(log.Fields{
		"type":     eventType,
		"event_id": ev.String("event_id"),
	})

	switch eventType {
	case EventConfirmation, EventLikeAdd, EventWallReplyNew:
	default:
		logger.Warn("Неизвестный тип события")
		return textResponse(http.StatusUnprocessableEntity, MsgPayloadWrong), typeLabel(eventType), nil
	}

	// Хеш считаем только для известных типов событий
	if h.cfg.SecretCheckEnabled() && !h.verify(ev.String("secret"), h.cfg.CallbackSecretHash) {
		logger.WithError(common.ErrSecretMismatch).Warn("Событие отклонено")
		return textResponse(http.StatusUnprocessableEntity, MsgPayloadWrong), eventType, nil
	}

	object := ev.Object()
	switch eventType {
	case EventConfirmation:
		logger.Info("Подтверждение адреса сервера")
		return textResponse(http.StatusOK, h.cfg.VerificationCode), eventType, nil

	case EventLikeAdd:
		if objectType := object.String("object_type"); objectType != ObjectTypePost {
			logger.WithField("object_type", objectType).Debug("Лайк не посту, пропускаем")
			return textResponse(http.StatusOK, MsgOK), eventType, nil
		}
		return h.record(ctx, logger, ev, object, scoring.ActivityLike, "liker_id")

	default: // EventWallReplyNew
		return h.record(ctx, logger, ev, object, scoring.ActivityComment, "from_id")
	}
}

// record начисляет очки и возвращает "ok" независимо от того,
// нашлись ли настройки группы. userKey — поле объекта с автором действия.
func (h *Handler) record(ctx context.Context, logger *log.Entry, ev, object Event, activity scoring.ActivityType, userKey string) (Response, string, error) {
	eventType := ev.Type()
	groupID, okGroup := ev.Int64("group_id")
	userID, okUser := object.Int64(userKey)
	if !okGroup || !okUser {
		logger.WithError(common.ErrMissingField).Warnf("Событие без group_id или %s", userKey)
		return textResponse(http.StatusUnprocessableEntity, MsgPayloadWrong), eventType, nil
	}

	resp := textResponse(http.StatusOK, MsgOK)
	outcome, err := h.recorder.Record(ctx, activity, groupID, userID)
	if err != nil {
		return resp, eventType, fmt.Errorf("начисление %s группе %d: %w", activity, groupID, err)
	}
	logger.WithField("outcome", outcome).Debug("Событие обработано")
	return resp, eventType, nil
}

// typeLabel ограничивает набор значений метки type в метриках.
func typeLabel(t string) string {
	switch t {
	case EventConfirmation, EventLikeAdd, EventWallReplyNew:
		return t
	}
	return "other"
}

type traceKey struct{}

// WithTraceID кладёт в контекст идентификатор запроса для логов.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// traceID достаёт идентификатор запроса: сначала наш, потом от платформы.
// Если нет ни того ни другого — генерируем.
func traceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey{}).(string); ok && id != "" {
		return id
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
