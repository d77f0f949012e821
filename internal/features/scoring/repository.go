// Package scoring — repository.go выполняет операции с таблицами
// api_groupsettings и api_scoretransaction.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"make-them-rich/internal/db/postgres"
)

// Store — всё, что сервису нужно от хранилища.
// Реализуется Repository поверх PostgreSQL, в тестах подменяется фейком.
type Store interface {
	// GetGroupSettings возвращает настройки группы. found=false, если строки нет.
	GetGroupSettings(ctx context.Context, groupID int64) (settings GroupSettings, found bool, err error)
	// InsertScoreTransaction добавляет запись в журнал начислений.
	InsertScoreTransaction(ctx context.Context, tx Transaction) error
}

// Repository работает с таблицами настроек и журнала начислений.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий начислений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// GetGroupSettings возвращает настройки начисления очков для группы.
func (r *Repository) GetGroupSettings(ctx context.Context, groupID int64) (GroupSettings, bool, error) {
	query := `
		SELECT group_id, score_by_likes, score_by_comments
		FROM api_groupsettings
		WHERE group_id = $1
		LIMIT 1
	`
	var s GroupSettings
	err := r.db.QueryRow(ctx, query, groupID).Scan(&s.GroupID, &s.ScoreByLikes, &s.ScoreByComments)
	if errors.Is(err, pgx.ErrNoRows) {
		return GroupSettings{}, false, nil
	}
	if err != nil {
		return GroupSettings{}, false, fmt.Errorf("ошибка получения настроек группы %d: %w", groupID, err)
	}
	return s, true, nil
}

// InsertScoreTransaction записывает начисление.
// Вставка идёт в транзакции: коммит только после успешного INSERT.
func (r *Repository) InsertScoreTransaction(ctx context.Context, t Transaction) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO api_scoretransaction
				(user_id, group_id, activity_type, score, created, updated)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.UserID, t.GroupID, string(t.ActivityType), t.Score, t.Created, t.Updated)
		if err != nil {
			return fmt.Errorf("ошибка записи начисления: %w", err)
		}
		return nil
	})
}

// SummarizeSince считает начисления по группам и типам активности начиная с since.
func (r *Repository) SummarizeSince(ctx context.Context, since time.Time) ([]Summary, error) {
	query := `
		SELECT group_id, activity_type, COUNT(*), COALESCE(SUM(score), 0)::bigint
		FROM api_scoretransaction
		WHERE created >= $1
		GROUP BY group_id, activity_type
		ORDER BY group_id, activity_type
	`
	rows, err := r.db.Query(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сводки: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s        Summary
			activity string
		)
		if err := rows.Scan(&s.GroupID, &activity, &s.Count, &s.TotalScore); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сводки: %w", err)
		}
		s.ActivityType = ActivityType(activity)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping проверяет, что база доступна. Используется в /healthz.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
