package ui

import (
	"context"
	"path"
	"time"

	"admin-console/internal/broker"
	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/session"
	"admin-console/internal/util"
	"admin-console/internal/view"

	"go.uber.org/zap"
)

// LoginPath is where unauthenticated sessions are sent.
const LoginPath = "/login"

// NavLink is one navigation entry.
type NavLink struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// NavEntry is a NavLink resolved against the current path.
type NavEntry struct {
	NavLink
	Active bool `json:"active"`
}

// defaultNav mirrors the admin pages the console serves.
var defaultNav = []NavLink{
	{Href: "/products", Label: "List Items"},
	{Href: "/intake", Label: "Add Items"},
	{Href: "/orders", Label: "Orders"},
}

// HeaderState is the render model of the page chrome.
type HeaderState struct {
	Theme models.Theme `json:"theme"`
	Nav   []NavEntry   `json:"nav"`
}

// Header applies the theme, marks the active nav entry, and gates
// protected pages behind the session token. The guard runs before any
// controller fetch so sensitive content is never rendered for an
// unauthenticated session.
type Header struct {
	sessions      session.State
	sessionID     string
	notifier      notify.Notifier
	confirmer     Confirmer
	audit         *broker.AuditPublisher
	redirectDelay time.Duration
	logger        *zap.Logger
}

// NewHeader creates the header component for one session.
func NewHeader(sessions session.State, sessionID string, notifier notify.Notifier, confirmer Confirmer, audit *broker.AuditPublisher, redirectDelay time.Duration) *Header {
	return &Header{
		sessions:      sessions,
		sessionID:     sessionID,
		notifier:      notifier,
		confirmer:     confirmer,
		audit:         audit,
		redirectDelay: redirectDelay,
		logger:        util.NamedLogger("header"),
	}
}

// RequireAuth returns a redirect to the login page when the session
// has no token, nil otherwise.
func (h *Header) RequireAuth(ctx context.Context) (*view.Redirect, error) {
	token, err := h.sessions.Token(ctx, h.sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return &view.Redirect{Location: LoginPath}, nil
	}
	return nil, nil
}

// Load resolves the chrome for a protected page. The auth guard runs
// first; when it redirects, no state is returned.
func (h *Header) Load(ctx context.Context, currentPath string) (*HeaderState, *view.Redirect, error) {
	redirect, err := h.RequireAuth(ctx)
	if err != nil {
		return nil, nil, err
	}
	if redirect != nil {
		return nil, redirect, nil
	}

	theme, err := h.sessions.Theme(ctx, h.sessionID)
	if err != nil {
		theme = models.DefaultTheme
	}

	current := path.Clean(currentPath)
	nav := make([]NavEntry, 0, len(defaultNav))
	for _, link := range defaultNav {
		nav = append(nav, NavEntry{
			NavLink: link,
			Active:  link.Href == current,
		})
	}

	return &HeaderState{Theme: theme, Nav: nav}, nil, nil
}

// ToggleTheme flips and persists the theme preference.
func (h *Header) ToggleTheme(ctx context.Context) (models.Theme, error) {
	current, err := h.sessions.Theme(ctx, h.sessionID)
	if err != nil {
		return models.DefaultTheme, err
	}

	next := models.ThemeDark
	if current == models.ThemeDark {
		next = models.ThemeLight
	}

	if err := h.sessions.SetTheme(ctx, h.sessionID, next); err != nil {
		return current, err
	}
	return next, nil
}

// Logout asks for confirmation, clears the token (theme persists),
// and returns a delayed redirect to the login page. A declined
// confirmation is a no-op.
func (h *Header) Logout(ctx context.Context) (*view.Redirect, error) {
	confirmed, err := h.confirmer.Confirm(ctx, PopupConfig{
		Title:   "Confirm Logout",
		Message: "Are you sure you want to log out?",
	})
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, nil
	}

	if err := h.sessions.ClearToken(ctx, h.sessionID); err != nil {
		h.notifier.Show("Failed to log out. Please try again.", notify.KindError)
		return nil, err
	}

	if err := h.audit.PublishAdminLoggedOut(ctx, h.sessionID); err != nil {
		h.logger.Error("Failed to publish AdminLoggedOut event", zap.Error(err))
	}

	h.notifier.Show("Logged out!", notify.KindSuccess)
	return &view.Redirect{Location: LoginPath, DelayMS: h.redirectDelay.Milliseconds()}, nil
}
