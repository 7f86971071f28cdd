package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"admin-console/internal/models"
	"admin-console/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginBackend is a scripted login endpoint.
type loginBackend struct {
	token string
	fail  bool
	calls int64
}

func (b *loginBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&b.calls, 1)
	if b.fail {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}
	var creds models.Credentials
	json.NewDecoder(r.Body).Decode(&creds)
	json.NewEncoder(w).Encode(map[string]string{"token": b.token})
}

func newLoginController(t *testing.T, srv *loginBackend) (*LoginController, *fakeSessions, *fakeNotifier, *recordingWriter) {
	t.Helper()
	client := newTestBackend(t, srv)
	sessions := newFakeSessions()
	notifier := &fakeNotifier{}
	publisher, writer := newTestPublisher()
	c := NewLoginController(client, sessions, notifier, publisher, "sid-1", time.Second)
	return c, sessions, notifier, writer
}

func TestLoginSuccessStoresTokenAndRedirects(t *testing.T) {
	srv := &loginBackend{token: "jwt-abc"}
	c, sessions, notifier, writer := newLoginController(t, srv)

	redirect, err := c.Submit(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Equal(t, HomePath, redirect.Location)
	assert.Equal(t, int64(1000), redirect.DelayMS)

	token, _ := sessions.Token(context.Background(), "sid-1")
	assert.Equal(t, "jwt-abc", token)
	assert.Equal(t, 1, writer.count())

	message, kind := notifier.last()
	assert.Equal(t, "Login successful!", message)
	assert.Equal(t, notify.KindSuccess, kind)
}

func TestLoginMissingFieldsBlocksNetworkCall(t *testing.T) {
	srv := &loginBackend{token: "jwt-abc"}
	c, sessions, notifier, _ := newLoginController(t, srv)

	for _, creds := range []models.Credentials{
		{Email: "", Password: "secret"},
		{Email: "admin@example.com", Password: ""},
		{Email: "   ", Password: "secret"},
	} {
		redirect, err := c.Submit(context.Background(), creds.Email, creds.Password)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, redirect)
	}

	assert.Equal(t, int64(0), atomic.LoadInt64(&srv.calls))
	token, _ := sessions.Token(context.Background(), "sid-1")
	assert.Empty(t, token)

	message, kind := notifier.last()
	assert.Equal(t, "Please enter both email and password", message)
	assert.Equal(t, notify.KindWarning, kind)
}

func TestLoginRejectionToastsServerMessage(t *testing.T) {
	srv := &loginBackend{fail: true}
	c, sessions, notifier, writer := newLoginController(t, srv)

	redirect, err := c.Submit(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, redirect)

	token, _ := sessions.Token(context.Background(), "sid-1")
	assert.Empty(t, token, "no token stored on failure")
	assert.Equal(t, 0, writer.count())

	message, kind := notifier.last()
	assert.Equal(t, "Invalid credentials", message)
	assert.Equal(t, notify.KindError, kind)

	assert.False(t, c.State().InFlight, "control re-enables after failure")
	assert.Equal(t, "Login", c.State().ButtonLabel)
}

func TestLoginNetworkFailureToastsGenericMessage(t *testing.T) {
	c, _, notifier, _ := newLoginController(t, &loginBackend{})
	// Point at a closed port to force a transport error.
	c.backend = newUnreachableBackend()

	_, err := c.Submit(context.Background(), "admin@example.com", "secret")
	require.Error(t, err)

	message, kind := notifier.last()
	assert.Equal(t, "Network error. Please try again.", message)
	assert.Equal(t, notify.KindError, kind)
}

func TestLoginEmptyTokenIsFailure(t *testing.T) {
	srv := &loginBackend{token: ""}
	c, sessions, notifier, _ := newLoginController(t, srv)

	redirect, err := c.Submit(context.Background(), "admin@example.com", "secret")
	require.Error(t, err)
	assert.Nil(t, redirect)

	token, _ := sessions.Token(context.Background(), "sid-1")
	assert.Empty(t, token)

	message, _ := notifier.last()
	assert.Equal(t, "Login failed", message)
}

func TestLoginStateDefaults(t *testing.T) {
	c, _, _, _ := newLoginController(t, &loginBackend{})

	state := c.State()
	assert.False(t, state.InFlight)
	assert.Equal(t, "Login", state.ButtonLabel)
}
