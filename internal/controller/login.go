package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"admin-console/internal/backend"
	"admin-console/internal/broker"
	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/session"
	"admin-console/internal/util"
	"admin-console/internal/view"

	"go.uber.org/zap"
)

// HomePath is where a fresh login lands.
const HomePath = "/products"

// LoginController handles credential submission and token persistence.
type LoginController struct {
	backend       *backend.Client
	sessions      session.State
	notifier      notify.Notifier
	audit         *broker.AuditPublisher
	sessionID     string
	redirectDelay time.Duration
	logger        *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewLoginController creates the controller for one session.
func NewLoginController(client *backend.Client, sessions session.State, notifier notify.Notifier, audit *broker.AuditPublisher, sessionID string, redirectDelay time.Duration) *LoginController {
	return &LoginController{
		backend:       client,
		sessions:      sessions,
		notifier:      notifier,
		audit:         audit,
		sessionID:     sessionID,
		redirectDelay: redirectDelay,
		logger:        util.NamedLogger("login"),
	}
}

// LoginState drives the submit control.
type LoginState struct {
	InFlight    bool   `json:"in_flight"`
	ButtonLabel string `json:"button_label"`
}

// State returns the current submit-control state.
func (c *LoginController) State() LoginState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return LoginState{InFlight: true, ButtonLabel: "Login..."}
	}
	return LoginState{ButtonLabel: "Login"}
}

// Submit validates presence of both fields, exchanges credentials for
// a token, persists it, and returns a delayed redirect. On any failure
// no token is stored, no redirect happens, and the control re-enables.
func (c *LoginController) Submit(ctx context.Context, email, password string) (*view.Redirect, error) {
	ctx, span := util.StartSpan(ctx, "LoginController.Submit")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		c.notifier.Show("Please enter both email and password", notify.KindWarning)
		return nil, ErrValidation
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, errors.New("login already in flight")
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	resp, err := c.backend.Login(ctx, &models.Credentials{Email: email, Password: password})
	if err != nil {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		c.logger.Warn("Login failed", zap.String("email", email), zap.Error(err))

		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			c.notifier.Show(backend.UserMessage(err, "Login failed"), notify.KindError)
		} else {
			c.notifier.Show("Network error. Please try again.", notify.KindError)
		}
		return nil, err
	}

	if resp.Token == "" {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		c.notifier.Show("Login failed", notify.KindError)
		return nil, errors.New("login response carried no token")
	}

	if err := c.sessions.SetToken(ctx, c.sessionID, resp.Token); err != nil {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		c.logger.Error("Failed to persist session token", zap.Error(err))
		c.notifier.Show("Login failed. Please try again.", notify.KindError)
		return nil, err
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.notifier.Show("Login successful!", notify.KindSuccess)

	if err := c.audit.PublishAdminLoggedIn(ctx, c.sessionID, email); err != nil {
		c.logger.Error("Failed to publish AdminLoggedIn event", zap.Error(err))
	}

	return &view.Redirect{Location: HomePath, DelayMS: c.redirectDelay.Milliseconds()}, nil
}
