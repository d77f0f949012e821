// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает ежедневную сводку по журналу начислений.
// Задачи запускаются только в режиме HTTP-сервера: у облачной функции
// нет долгоживущего процесса.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"make-them-rich/internal/features/scoring"
)

// Summarizer отдаёт агрегаты по журналу начислений.
type Summarizer interface {
	SummarizeSince(ctx context.Context, since time.Time) ([]scoring.Summary, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	summarizer Summarizer
	now        func() time.Time
}

// NewScheduler создаёт планировщик в заданном часовом поясе.
func NewScheduler(summarizer Summarizer, spec string, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		spec:       spec,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// Start регистрирует задачи и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Info("[CRON] Сводка начислений за сутки")
		if err := s.RunSummary(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка сводки")
		}
	}); err != nil {
		return fmt.Errorf("некорректное расписание %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.WithField("spec", s.spec).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// RunSummary пишет в лог начисления за последние 24 часа по группам.
func (s *Scheduler) RunSummary(ctx context.Context) error {
	since := s.now().Add(-24 * time.Hour)
	rows, err := s.summarizer.SummarizeSince(ctx, since)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		log.Info("[CRON] За сутки начислений не было")
		return nil
	}

	for _, r := range rows {
		log.WithFields(log.Fields{
			"group_id":    r.GroupID,
			"activity":    r.ActivityType,
			"count":       r.Count,
			"total_score": r.TotalScore,
		}).Info("[CRON] Начисления за сутки")
	}
	return nil
}
