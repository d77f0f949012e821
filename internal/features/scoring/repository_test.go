package scoring_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"make-them-rich/internal/features/scoring"
)

// Схема в проде создаётся админкой; здесь — минимальная копия для теста.
const testSchema = `
CREATE TABLE IF NOT EXISTS api_groupsettings (
    id BIGSERIAL PRIMARY KEY,
    group_id BIGINT UNIQUE NOT NULL,
    score_by_likes INTEGER NOT NULL DEFAULT 0,
    score_by_comments INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS api_scoretransaction (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    group_id BIGINT NOT NULL,
    activity_type VARCHAR(16) NOT NULL,
    score INTEGER NOT NULL,
    created TIMESTAMP NOT NULL,
    updated TIMESTAMP NOT NULL
);
`

func openPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN не задан, пропускаем интеграционный тест")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if _, err := pool.Exec(ctx, testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return pool
}

func TestRepositoryRoundTrip(t *testing.T) {
	pool := openPostgres(t)
	ctx := context.Background()
	groupID := time.Now().UnixNano()

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM api_scoretransaction WHERE group_id = $1`, groupID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM api_groupsettings WHERE group_id = $1`, groupID)
	})

	repo := scoring.NewRepository(pool)

	if _, found, err := repo.GetGroupSettings(ctx, groupID); err != nil || found {
		t.Fatalf("GetGroupSettings(missing) = found %v, err %v", found, err)
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO api_groupsettings (group_id, score_by_likes, score_by_comments) VALUES ($1, 3, 7)`,
		groupID,
	); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	svc := scoring.NewService(repo)
	for _, activity := range []scoring.ActivityType{scoring.ActivityLike, scoring.ActivityComment, scoring.ActivityLike} {
		if _, err := svc.Record(ctx, activity, groupID, 343298673); err != nil {
			t.Fatalf("Record(%s) error = %v", activity, err)
		}
	}

	var rows int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM api_scoretransaction WHERE group_id = $1`, groupID,
	).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 3 {
		t.Fatalf("rows = %d, want 3", rows)
	}

	summary, err := repo.SummarizeSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("SummarizeSince() error = %v", err)
	}
	var likes, comments scoring.Summary
	for _, s := range summary {
		if s.GroupID != groupID {
			continue
		}
		switch s.ActivityType {
		case scoring.ActivityLike:
			likes = s
		case scoring.ActivityComment:
			comments = s
		}
	}
	if likes.Count != 2 || likes.TotalScore != 6 {
		t.Fatalf("likes summary = %+v, want 2 rows / 6 points", likes)
	}
	if comments.Count != 1 || comments.TotalScore != 7 {
		t.Fatalf("comments summary = %+v, want 1 row / 7 points", comments)
	}
}
