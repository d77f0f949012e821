// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с часовыми поясами и время для записей в БД.
package common

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// LoadLocation возвращает часовой пояс по имени.
// Если загрузить не удалось — используем UTC+3 вручную, как для Москвы.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC+3", name)
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// UTCNow возвращает текущее время в UTC.
// Колонки created/updated в api_scoretransaction хранят время без зоны,
// поэтому пишем всегда UTC.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// Truncate обрезает строку до n символов (рун) и добавляет многоточие.
// Используется, чтобы не писать в лог огромные тела запросов.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
