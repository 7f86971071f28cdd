// Package console assembles the per-session controller set. Each admin
// browser session gets its own console: controllers, toast slot, popup,
// and an authenticated backend client bound to the session's token.
package console

import (
	"context"
	"sync"
	"time"

	"admin-console/config"
	"admin-console/internal/backend"
	"admin-console/internal/broker"
	"admin-console/internal/controller"
	"admin-console/internal/notify"
	"admin-console/internal/scanner"
	"admin-console/internal/session"
	"admin-console/internal/ui"
	"admin-console/internal/util"

	"go.uber.org/zap"
)

// Deps are the process-wide collaborators consoles are built from.
type Deps struct {
	Cfg      *config.Config
	Sessions *session.Store
	Audit    *broker.AuditPublisher
	Engine   *scanner.Engine
}

// Console is the aggregate of one session's components.
type Console struct {
	SessionID string
	Toaster   *notify.Toaster
	Popup     *ui.Popup
	Header    *ui.Header
	Products  *controller.ProductListController
	Intake    *controller.IntakeController
	Orders    *controller.OrdersController
	Login     *controller.LoginController

	lastSeen time.Time
}

func newConsole(deps Deps, sessionID string) *Console {
	tokens := &session.TokenSource{Store: deps.Sessions, SessionID: sessionID}
	client := backend.NewClient(deps.Cfg.Backend.BaseURL, deps.Cfg.Backend.Timeout, tokens)

	toaster := notify.NewToaster(deps.Cfg.UI.ToastTTL, deps.Cfg.UI.ToastExitDuration)
	popup := ui.NewPopup()

	c := &Console{
		SessionID: sessionID,
		Toaster:   toaster,
		Popup:     popup,
		Header:    ui.NewHeader(deps.Sessions, sessionID, toaster, popup, deps.Audit, deps.Cfg.UI.RedirectDelay),
		Products:  controller.NewProductListController(client, toaster, popup, deps.Audit, sessionID),
		Intake: controller.NewIntakeController(client, toaster, deps.Audit, deps.Engine, sessionID,
			deps.Cfg.Intake.SerialPrefix, deps.Cfg.Intake.DedupeWindow),
		Orders:   controller.NewOrdersController(client, toaster, popup, deps.Audit, sessionID),
		Login:    controller.NewLoginController(client, deps.Sessions, toaster, deps.Audit, sessionID, deps.Cfg.UI.RedirectDelay),
		lastSeen: time.Now(),
	}

	c.Products.Init()
	c.Orders.Init()
	return c
}

// Teardown releases every component, including any live scanner.
func (c *Console) Teardown() {
	c.Intake.Teardown()
	c.Products.Teardown()
	c.Orders.Teardown()
	c.Popup.Close()
	c.Toaster.Stop()
}

// Manager creates consoles lazily per session id and tears down idle
// ones so abandoned sessions cannot hold the scanner.
type Manager struct {
	deps   Deps
	idle   time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	consoles map[string]*Console
}

// NewManager creates a console manager.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		idle:     deps.Cfg.UI.ConsoleIdleTimeout,
		logger:   util.NamedLogger("console"),
		consoles: make(map[string]*Console),
	}
}

// Get returns the console for a session, creating it on first use.
func (m *Manager) Get(sessionID string) *Console {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.consoles[sessionID]
	if !ok {
		c = newConsole(m.deps, sessionID)
		m.consoles[sessionID] = c
		m.logger.Info("Console created", zap.String("session_id", sessionID))
	}
	c.lastSeen = time.Now()
	return c
}

// Drop tears down and removes one console.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	c, ok := m.consoles[sessionID]
	if ok {
		delete(m.consoles, sessionID)
	}
	m.mu.Unlock()

	if ok {
		c.Teardown()
	}
}

// Run sweeps idle consoles until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.teardownAll()
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idle)

	m.mu.Lock()
	var expired []*Console
	for id, c := range m.consoles {
		if c.lastSeen.Before(cutoff) {
			expired = append(expired, c)
			delete(m.consoles, id)
		}
	}
	m.mu.Unlock()

	for _, c := range expired {
		m.logger.Info("Console expired", zap.String("session_id", c.SessionID))
		c.Teardown()
	}
}

func (m *Manager) teardownAll() {
	m.mu.Lock()
	all := make([]*Console, 0, len(m.consoles))
	for _, c := range m.consoles {
		all = append(all, c)
	}
	m.consoles = make(map[string]*Console)
	m.mu.Unlock()

	for _, c := range all {
		c.Teardown()
	}
}
