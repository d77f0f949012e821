// Package callback обрабатывает события VK Callback API.
// event.go описывает триггер облачной функции, ответ и само событие.
package callback

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/aws/aws-lambda-go/events"

	"make-them-rich/internal/common"
)

// Типы событий VK, которые мы обрабатываем.
const (
	EventConfirmation = "confirmation"
	EventLikeAdd      = "like_add"
	EventWallReplyNew = "wall_reply_new"
)

// ObjectTypePost — лайк поставлен посту (а не фото, видео, комментарию).
const ObjectTypePost = "post"

// Тексты ответов.
const (
	MsgOK              = "ok"
	MsgUnexpectedEvent = "Unexpected event"
	MsgPayloadWrong    = "Request payload seems wrong"
	MsgInvalidJSON     = "Request payload contains invalid JSON"
)

// Request — триггер облачной функции. Body приходит в base64.
// Body — указатель: отсутствие поля и пустая строка обрабатываются по-разному.
type Request struct {
	HTTPMethod      string            `json:"httpMethod,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
	Body            *string           `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`

	// сколько ключей было в JSON триггера
	keys int
}

// UnmarshalJSON разбирает триггер по точным именам ключей.
// Поля с неожиданным типом пропускаются, а не роняют вызов.
func (r *Request) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = Request{keys: len(fields)}
	var body string
	if raw, ok := fields["body"]; ok && json.Unmarshal(raw, &body) == nil && string(raw) != "null" {
		r.Body = &body
	}
	if raw, ok := fields["httpMethod"]; ok {
		_ = json.Unmarshal(raw, &r.HTTPMethod)
	}
	if raw, ok := fields["headers"]; ok {
		_ = json.Unmarshal(raw, &r.Headers)
	}
	if raw, ok := fields["isBase64Encoded"]; ok {
		_ = json.Unmarshal(raw, &r.IsBase64Encoded)
	}
	return nil
}

// empty сообщает, что триггер пустой: ни одного ключа и ни одного поля.
func (r *Request) empty() bool {
	return r.keys == 0 && r.Body == nil && r.HTTPMethod == "" && len(r.Headers) == 0 && !r.IsBase64Encoded
}

// NewRequest собирает триггер из сырого тела запроса.
func NewRequest(raw []byte) *Request {
	body := base64.StdEncoding.EncodeToString(raw)
	return &Request{Body: &body, IsBase64Encoded: true}
}

// Response — ответ функции в формате HTTP-интеграции.
type Response = events.APIGatewayProxyResponse

func textResponse(status int, body string) Response {
	return Response{
		StatusCode:      status,
		IsBase64Encoded: false,
		Body:            body,
		Headers:         map[string]string{"Content-Type": "text/plain"},
	}
}

// Event — декодированное событие VK.
// Храним сырые поля и достаём только те, что нужны выбранной ветке:
// поле неожиданного типа, которое ветка не читает, не ломает запрос.
// Ключи сравниваются точно, "TYPE" — это не "type".
type Event struct {
	fields map[string]json.RawMessage
}

// Type возвращает тип события или "", если поля нет или оно не строка.
func (e Event) Type() string {
	return e.String("type")
}

// String возвращает строковое поле или "", если его нет или тип другой.
func (e Event) String(key string) string {
	raw, ok := e.fields[key]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// Int64 возвращает целочисленное поле. ok=false, если поля нет или это не целое число.
func (e Event) Int64(key string) (int64, bool) {
	raw, ok := e.fields[key]
	if !ok || string(raw) == "null" {
		return 0, false
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// Object возвращает вложенный объект события. Если его нет или это не объект — пустой.
func (e Event) Object() Event {
	raw, ok := e.fields["object"]
	if !ok {
		return Event{}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Event{}
	}
	return Event{fields: fields}
}

// decodeBody декодирует base64 и разбирает JSON-объект события.
// Переносы строк внутри base64 допускаются, паддинг необязателен.
// Ошибка возвращается только если тело не base64 или не JSON-объект;
// JSON null даёт пустое событие.
func decodeBody(body string) (Event, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, body)

	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(cleaned)
		if err != nil {
			return Event{}, fmt.Errorf("%w: base64: %v", common.ErrInvalidPayload, err)
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Event{}, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return Event{fields: fields}, nil
}
