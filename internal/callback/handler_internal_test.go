package callback

import (
	"context"
	"encoding/base64"
	"testing"

	"make-them-rich/internal/config"
	"make-them-rich/internal/features/scoring"
)

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, scoring.ActivityType, int64, int64) (scoring.Outcome, error) {
	return scoring.OutcomeRecorded, nil
}

func TestSecretVerifiedOnlyForKnownTypes(t *testing.T) {
	tests := []struct {
		raw   string
		calls int
	}{
		{raw: `{"type": "message_new", "secret": "s"}`, calls: 0},
		{raw: `{"type": 123, "secret": "s"}`, calls: 0},
		{raw: `{"secret": "s"}`, calls: 0},
		{raw: `not json`, calls: 0},
		{raw: `{"type": "confirmation", "secret": "s"}`, calls: 1},
		{raw: `{"type": "like_add", "secret": "s", "object": {"object_type": "photo"}}`, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			h := NewHandler(nopRecorder{}, &config.Config{CallbackSecretHash: "$argon2id$stub"})
			calls := 0
			h.verify = func(secret, _ string) bool {
				calls++
				return secret == "s"
			}

			body := base64.StdEncoding.EncodeToString([]byte(tt.raw))
			if _, err := h.Handle(context.Background(), &Request{Body: &body}); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if calls != tt.calls {
				t.Fatalf("verify calls = %d, want %d", calls, tt.calls)
			}
		})
	}
}

func TestEventAccessors(t *testing.T) {
	ev, err := decodeBody(base64.StdEncoding.EncodeToString([]byte(
		`{"type": "like_add", "group_id": 5, "neg": -7, "float": 1.5, "str": "9", "null": null, "object": {"liker_id": 3}}`)))
	if err != nil {
		t.Fatalf("decodeBody() error = %v", err)
	}

	if got := ev.Type(); got != EventLikeAdd {
		t.Fatalf("Type() = %q", got)
	}
	if v, ok := ev.Int64("group_id"); !ok || v != 5 {
		t.Fatalf("Int64(group_id) = %d, %v", v, ok)
	}
	if v, ok := ev.Int64("neg"); !ok || v != -7 {
		t.Fatalf("Int64(neg) = %d, %v", v, ok)
	}
	for _, key := range []string{"float", "str", "null", "missing", "object"} {
		if _, ok := ev.Int64(key); ok {
			t.Fatalf("Int64(%s) ok = true, want false", key)
		}
	}
	if got := ev.String("group_id"); got != "" {
		t.Fatalf("String(group_id) = %q, want empty", got)
	}
	if v, ok := ev.Object().Int64("liker_id"); !ok || v != 3 {
		t.Fatalf("Object().Int64(liker_id) = %d, %v", v, ok)
	}
	if _, ok := ev.Object().Object().Int64("liker_id"); ok {
		t.Fatal("nested missing object should be empty")
	}
}
