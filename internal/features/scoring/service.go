// Package scoring — service.go содержит бизнес-логику начисления очков.
package scoring

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/common"
	"make-them-rich/internal/metrics"
)

// Service начисляет очки по настройкам группы.
type Service struct {
	store Store
	now   func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithNow подменяет часы (для тестов).
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService создаёт сервис начислений.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: common.UTCNow}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record начисляет пользователю очки за активность в группе.
//
// Если для группы нет настроек, событие пропускается: пишем ошибку в лог
// и возвращаем OutcomeSkipped без ошибки. Ошибка возвращается только
// когда не удалось прочитать настройки или записать начисление.
func (s *Service) Record(ctx context.Context, activity ActivityType, groupID, userID int64) (Outcome, error) {
	if !activity.Valid() {
		return OutcomeSkipped, fmt.Errorf("%w: %q", common.ErrUnknownActivity, activity)
	}

	logger := log.WithFields(log.Fields{
		"group_id": groupID,
		"user_id":  userID,
		"activity": activity,
	})

	settings, found, err := s.store.GetGroupSettings(ctx, groupID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if !found {
		logger.Errorf("Настройки группы %d не найдены, событие пропущено", groupID)
		metrics.SettingsMissing.Inc()
		return OutcomeSkipped, nil
	}

	now := s.now().UTC()
	tx := Transaction{
		UserID:       userID,
		GroupID:      groupID,
		ActivityType: activity,
		Score:        settings.ScoreFor(activity),
		Created:      now,
		Updated:      now,
	}
	if err := s.store.InsertScoreTransaction(ctx, tx); err != nil {
		return OutcomeSkipped, err
	}

	metrics.TransactionsRecorded.WithLabelValues(string(activity)).Inc()
	logger.WithField("score", tx.Score).Info("Очки начислены")
	return OutcomeRecorded, nil
}
