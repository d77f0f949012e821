package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"make-them-rich/internal/features/scoring"
)

type fakeSummarizer struct {
	rows  []scoring.Summary
	err   error
	since time.Time
}

func (f *fakeSummarizer) SummarizeSince(_ context.Context, since time.Time) ([]scoring.Summary, error) {
	f.since = since
	return f.rows, f.err
}

func TestRunSummaryLogsEveryRow(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeSummarizer{rows: []scoring.Summary{
		{GroupID: 1, ActivityType: scoring.ActivityLike, Count: 4, TotalScore: 12},
		{GroupID: 1, ActivityType: scoring.ActivityComment, Count: 1, TotalScore: 7},
	}}
	s := NewScheduler(fake, "0 0 * * *", time.UTC)
	s.now = func() time.Time { return now }

	if err := s.RunSummary(context.Background()); err != nil {
		t.Fatalf("RunSummary() error = %v", err)
	}
	if !fake.since.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("since = %v, want %v", fake.since, now.Add(-24*time.Hour))
	}
	if got := len(hook.AllEntries()); got != 2 {
		t.Fatalf("log entries = %d, want 2", got)
	}
	last := hook.LastEntry()
	if last.Data["total_score"] != int64(7) {
		t.Fatalf("total_score = %v, want 7", last.Data["total_score"])
	}
}

func TestRunSummaryPropagatesError(t *testing.T) {
	boom := errors.New("db down")
	s := NewScheduler(&fakeSummarizer{err: boom}, "0 0 * * *", time.UTC)
	if err := s.RunSummary(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("RunSummary() error = %v, want %v", err, boom)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeSummarizer{}, "not a cron spec", time.UTC)
	if err := s.Start(context.Background()); err == nil {
		s.Stop()
		t.Fatal("Start() error = nil, want invalid spec error")
	}
}
