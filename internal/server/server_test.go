package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"make-them-rich/internal/callback"
	"make-them-rich/internal/config"
	"make-them-rich/internal/features/scoring"
)

type fakeStore struct {
	inserted []scoring.Transaction
}

func (f *fakeStore) GetGroupSettings(_ context.Context, groupID int64) (scoring.GroupSettings, bool, error) {
	return scoring.GroupSettings{GroupID: groupID, ScoreByLikes: 2, ScoreByComments: 5}, true, nil
}

func (f *fakeStore) InsertScoreTransaction(_ context.Context, tx scoring.Transaction) error {
	f.inserted = append(f.inserted, tx)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type panicHandler struct{}

func (panicHandler) Handle(context.Context, *callback.Request) (callback.Response, error) {
	panic("boom")
}

type failingHandler struct{}

func (failingHandler) Handle(context.Context, *callback.Request) (callback.Response, error) {
	return callback.Response{StatusCode: 200, Body: "ok"}, errors.New("insert failed")
}

func newTestServer(h EventHandler, db Pinger) *httptest.Server {
	s := New(":0", h, db, time.Second, time.Second)
	return httptest.NewServer(s.Router())
}

func post(t *testing.T, url, body string) (int, string, http.Header) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func(Body io.ReadCloser) { _ = Body.Close() }(resp.Body)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(data), resp.Header
}

func TestCallbackConfirmation(t *testing.T) {
	store := &fakeStore{}
	h := callback.NewHandler(scoring.NewService(store), &config.Config{VerificationCode: "123456"})
	ts := newTestServer(h, fakePinger{})
	defer ts.Close()

	status, body, header := post(t, ts.URL+"/callback", `{"type":"confirmation","group_id":1}`)
	if status != http.StatusOK || body != "123456" {
		t.Fatalf("got %d %q, want 200 123456", status, body)
	}
	if ct := header.Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestCallbackRecordsComment(t *testing.T) {
	store := &fakeStore{}
	h := callback.NewHandler(scoring.NewService(store), &config.Config{})
	ts := newTestServer(h, fakePinger{})
	defer ts.Close()

	status, body, _ := post(t, ts.URL+"/callback",
		`{"type":"wall_reply_new","group_id":7,"object":{"from_id":11,"text":"hi"}}`)
	if status != http.StatusOK || body != "ok" {
		t.Fatalf("got %d %q, want 200 ok", status, body)
	}
	if len(store.inserted) != 1 || store.inserted[0].Score != 5 {
		t.Fatalf("inserted = %+v", store.inserted)
	}
}

func TestCallbackInvalidJSON(t *testing.T) {
	h := callback.NewHandler(scoring.NewService(&fakeStore{}), &config.Config{})
	ts := newTestServer(h, fakePinger{})
	defer ts.Close()

	status, body, _ := post(t, ts.URL+"/callback", `{oops`)
	if status != http.StatusUnprocessableEntity || body != callback.MsgInvalidJSON {
		t.Fatalf("got %d %q", status, body)
	}
}

func TestCallbackPersistenceErrorIs500(t *testing.T) {
	ts := newTestServer(failingHandler{}, fakePinger{})
	defer ts.Close()

	status, _, _ := post(t, ts.URL+"/callback", `{}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
}

func TestCallbackRecoversFromPanic(t *testing.T) {
	ts := newTestServer(panicHandler{}, fakePinger{})
	defer ts.Close()

	status, _, _ := post(t, ts.URL+"/callback", `{}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "db down", err: errors.New("refused"), status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(failingHandler{}, fakePinger{err: tt.err})
			defer ts.Close()

			resp, err := http.Get(ts.URL + "/healthz")
			if err != nil {
				t.Fatalf("GET /healthz: %v", err)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestCallbackRejectsGet(t *testing.T) {
	ts := newTestServer(failingHandler{}, fakePinger{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/callback")
	if err != nil {
		t.Fatalf("GET /callback: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
