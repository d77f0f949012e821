// Package scoring начисляет очки участникам сообщества за активность.
// models.go описывает настройки группы и записи журнала начислений.
package scoring

import "time"

// ActivityType — за что начисляются очки.
type ActivityType string

// Допустимые типы активности
const (
	ActivityLike    ActivityType = "like"    // Лайк поста
	ActivityComment ActivityType = "comment" // Комментарий на стене
)

// Valid сообщает, известен ли тип активности.
func (a ActivityType) Valid() bool {
	return a == ActivityLike || a == ActivityComment
}

// GroupSettings — настройки начисления очков для одного сообщества.
// Таблица api_groupsettings ведётся админкой, мы её только читаем.
type GroupSettings struct {
	GroupID         int64 `db:"group_id"`
	ScoreByLikes    int64 `db:"score_by_likes"`    // Очков за лайк
	ScoreByComments int64 `db:"score_by_comments"` // Очков за комментарий
}

// ScoreFor возвращает количество очков за активность данного типа.
func (s GroupSettings) ScoreFor(activity ActivityType) int64 {
	switch activity {
	case ActivityLike:
		return s.ScoreByLikes
	case ActivityComment:
		return s.ScoreByComments
	}
	return 0
}

// Transaction — одна запись журнала api_scoretransaction.
// Записи только добавляются: никогда не обновляются и не удаляются.
type Transaction struct {
	UserID       int64        `db:"user_id"`       // Кто совершил действие (VK user id)
	GroupID      int64        `db:"group_id"`      // В каком сообществе
	ActivityType ActivityType `db:"activity_type"` // like / comment
	Score        int64        `db:"score"`         // Сколько очков начислено
	Created      time.Time    `db:"created"`
	Updated      time.Time    `db:"updated"`
}

// Outcome — чем закончилась попытка начисления.
type Outcome int

const (
	// OutcomeRecorded — запись добавлена в журнал
	OutcomeRecorded Outcome = iota
	// OutcomeSkipped — настроек для группы нет, ничего не записано
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Summary — агрегат по журналу для ежедневного отчёта.
type Summary struct {
	GroupID      int64        `db:"group_id"`
	ActivityType ActivityType `db:"activity_type"`
	Count        int64        `db:"count"`
	TotalScore   int64        `db:"total_score"`
}
