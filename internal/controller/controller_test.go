package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"admin-console/internal/backend"
	"admin-console/internal/broker"
	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/ui"
)

// Shared fakes for the controller tests. The backend is a real
// httptest server; everything else is an in-memory double.

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	kinds    []notify.Kind
}

func (f *fakeNotifier) Show(message string, kind notify.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	f.kinds = append(f.kinds, kind)
}

func (f *fakeNotifier) last() (string, notify.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return "", ""
	}
	return f.messages[len(f.messages)-1], f.kinds[len(f.kinds)-1]
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type stubConfirmer struct {
	answer bool
	asked  int
}

func (s *stubConfirmer) Confirm(ctx context.Context, cfg ui.PopupConfig) (bool, error) {
	s.asked++
	return s.answer, nil
}

type recordingAnnouncer struct {
	configs []ui.PopupConfig
}

func (r *recordingAnnouncer) Show(cfg ui.PopupConfig) {
	r.configs = append(r.configs, cfg)
}

type recordingWriter struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *recordingWriter) PublishEvent(ctx context.Context, key string, event interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingWriter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]string
	themes map[string]models.Theme
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		tokens: make(map[string]string),
		themes: make(map[string]models.Theme),
	}
}

func (f *fakeSessions) Token(ctx context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[sessionID], nil
}

func (f *fakeSessions) SetToken(ctx context.Context, sessionID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[sessionID] = token
	return nil
}

func (f *fakeSessions) ClearToken(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, sessionID)
	return nil
}

func (f *fakeSessions) Theme(ctx context.Context, sessionID string) (models.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if theme, ok := f.themes[sessionID]; ok {
		return theme, nil
	}
	return models.DefaultTheme, nil
}

func (f *fakeSessions) SetTheme(ctx context.Context, sessionID string, theme models.Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themes[sessionID] = theme
	return nil
}

// newTestBackend spins up an httptest server and a client pointed at it.
func newTestBackend(t *testing.T, handler http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL, 5*time.Second, backend.StaticToken("test-token"))
}

func newTestPublisher() (*broker.AuditPublisher, *recordingWriter) {
	writer := &recordingWriter{}
	return broker.NewAuditPublisher(writer), writer
}

// newUnreachableBackend returns a client pointed at a closed port.
func newUnreachableBackend() *backend.Client {
	return backend.NewClient("http://127.0.0.1:1", time.Second, backend.StaticToken(""))
}
