// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях вебхука.
// Эти ошибки позволяют обработчику различать типы проблем
// и выбирать текст ответа для VK.
package common

import "errors"

// Ошибки разбора входящего события
var (
	// ErrEmptyBody — в триггере нет поля body
	ErrEmptyBody = errors.New("в запросе нет тела")
	// ErrInvalidPayload — тело не base64 или не JSON-объект
	ErrInvalidPayload = errors.New("тело запроса не является корректным JSON")
	// ErrMissingField — в событии нет обязательного поля (group_id, liker_id, from_id)
	ErrMissingField = errors.New("в событии нет обязательного поля")
	// ErrSecretMismatch — поле secret не совпало с настроенным хешем
	ErrSecretMismatch = errors.New("секретный ключ события не совпадает")
)

// Ошибки начисления очков
var (
	// ErrUnknownActivity — тип активности не like и не comment
	ErrUnknownActivity = errors.New("неизвестный тип активности")
)
