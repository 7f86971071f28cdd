// Package api exposes the console over HTTP. The browser shell is
// thin: it forwards user events (clicks, form submits, pointer moves,
// scanner toggles) to these routes and renders the JSON state the
// controllers hand back.
package api

import (
	"net/http"
	"strconv"
	"time"

	"admin-console/internal/audit"
	"admin-console/internal/console"
	"admin-console/internal/controller"
	"admin-console/internal/session"
	"admin-console/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookie = "admin_sid"

// Handler contains HTTP handlers
type Handler struct {
	consoles *console.Manager
	sessions *session.Store
	audit    *audit.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(consoles *console.Manager, sessions *session.Store, auditStore *audit.Store) *Handler {
	return &Handler{
		consoles: consoles,
		sessions: sessions,
		audit:    auditStore,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", h.sessionMiddleware())
	{
		api.POST("/login", h.login)
		api.GET("/login/state", h.loginState)

		uiGroup := api.Group("/ui")
		{
			uiGroup.GET("/header", h.header)
			uiGroup.POST("/theme/toggle", h.toggleTheme)
			uiGroup.POST("/logout", h.logout)
			uiGroup.GET("/toast", h.toast)
			uiGroup.GET("/popup", h.popupState)
			uiGroup.POST("/popup/accept", h.popupAccept)
			uiGroup.POST("/popup/close", h.popupClose)
			uiGroup.POST("/popup/pointer", h.popupPointer)
		}

		protected := api.Group("", h.authGuard())
		{
			protected.GET("/products", h.refreshProducts)
			protected.GET("/products/state", h.productsState)
			protected.POST("/products/:id/edit/open", h.openEdit)
			protected.POST("/products/:id/edit/close", h.closeEdit)
			protected.POST("/products/:id/edit", h.submitEdit)
			protected.POST("/products/:id/delete", h.deleteProduct)

			protected.POST("/intake/open/:productId", h.openIntake)
			protected.GET("/intake/state", h.intakeState)
			protected.POST("/intake/quantity", h.setQuantity)
			protected.POST("/intake/same-barcode", h.toggleSameBarcode)
			protected.POST("/intake/input", h.setIntakeInput)
			protected.POST("/intake/detect", h.detect)
			protected.POST("/intake/submit", h.submitIntake)
			protected.POST("/intake/close", h.closeIntake)

			protected.GET("/orders", h.refreshOrders)
			protected.GET("/orders/state", h.ordersState)
			protected.POST("/orders/:id/status", h.updateOrderStatus)

			protected.GET("/audit/recent", h.recentAudit)
		}
	}
}

// sessionMiddleware assigns a session id cookie and binds the
// session's console to the request.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			sid = uuid.New().String()
			c.SetCookie(sessionCookie, sid, 0, "/", "", false, true)
		}

		_ = h.sessions.Touch(c.Request.Context(), sid)
		c.Set("console", h.consoles.Get(sid))
		c.Next()
	}
}

// authGuard redirects unauthenticated sessions to the login page
// before any controller work runs.
func (h *Handler) authGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		cons := h.console(c)
		redirect, err := cons.Header.RequireAuth(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if redirect != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"redirect": redirect})
			return
		}
		c.Next()
	}
}

func (h *Handler) console(c *gin.Context) *console.Console {
	return c.MustGet("console").(*console.Console)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// login handles credential submission
func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cons := h.console(c)
	redirect, err := cons.Login.Submit(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// The controller already surfaced the failure via toast; the
		// shell re-reads state.
		c.JSON(http.StatusOK, gin.H{"state": cons.Login.State()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":    cons.Login.State(),
		"redirect": redirect,
	})
}

// loginState returns the submit-control state
func (h *Handler) loginState(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Login.State())
}

// header resolves the page chrome for a protected page
func (h *Handler) header(c *gin.Context) {
	path := c.DefaultQuery("path", "/products")

	state, redirect, err := h.console(c).Header.Load(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load header"})
		return
	}
	if redirect != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"redirect": redirect})
		return
	}
	c.JSON(http.StatusOK, state)
}

// toggleTheme flips and persists the theme preference
func (h *Handler) toggleTheme(c *gin.Context) {
	theme, err := h.console(c).Header.ToggleTheme(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle theme"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// logout runs the confirmed logout flow
func (h *Handler) logout(c *gin.Context) {
	redirect, err := h.console(c).Header.Logout(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": redirect})
}

// toast returns the currently visible toast, if any
func (h *Handler) toast(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"toast": h.console(c).Toaster.Current()})
}

// popupState returns a popup render snapshot
func (h *Handler) popupState(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Popup.State())
}

// popupAccept resolves a pending confirmation affirmatively
func (h *Handler) popupAccept(c *gin.Context) {
	h.console(c).Popup.Accept()
	c.Status(http.StatusNoContent)
}

// popupClose dismisses the popup
func (h *Handler) popupClose(c *gin.Context) {
	h.console(c).Popup.Close()
	c.Status(http.StatusNoContent)
}

// popupPointer forwards drag pointer events
func (h *Handler) popupPointer(c *gin.Context) {
	var req struct {
		Phase    string  `json:"phase"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		RectLeft float64 `json:"rect_left"`
		RectTop  float64 `json:"rect_top"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	popup := h.console(c).Popup
	switch req.Phase {
	case "down":
		popup.PointerDown(req.X, req.Y, req.RectLeft, req.RectTop)
	case "move":
		popup.PointerMove(req.X, req.Y)
	case "up":
		popup.PointerUp()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pointer phase"})
		return
	}
	c.JSON(http.StatusOK, popup.State())
}

// refreshProducts fetches and renders the product list
func (h *Handler) refreshProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Products.Refresh(c.Request.Context()))
}

// productsState returns the last rendered product list
func (h *Handler) productsState(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Products.Page())
}

// openEdit populates the edit form from the product index
func (h *Handler) openEdit(c *gin.Context) {
	form, err := h.console(c).Products.OpenEdit(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, form)
}

// closeEdit dismisses the edit modal
func (h *Handler) closeEdit(c *gin.Context) {
	h.console(c).Products.CloseEdit()
	c.Status(http.StatusNoContent)
}

// submitEdit sends a full product update
func (h *Handler) submitEdit(c *gin.Context) {
	var req controller.EditInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.ID = c.Param("id")

	cons := h.console(c)
	if err := cons.Products.SubmitEdit(c.Request.Context(), req); err != nil {
		// Surfaced via toast; hand back the unchanged page.
		c.JSON(http.StatusOK, cons.Products.Page())
		return
	}
	c.JSON(http.StatusOK, cons.Products.Page())
}

// deleteProduct runs the confirmed delete flow
func (h *Handler) deleteProduct(c *gin.Context) {
	cons := h.console(c)
	_ = cons.Products.Delete(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, cons.Products.Page())
}

// openIntake opens the intake form for a product
func (h *Handler) openIntake(c *gin.Context) {
	cons := h.console(c)
	cons.Intake.Open(c.Param("productId"))
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// intakeState returns the intake form snapshot
func (h *Handler) intakeState(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Intake.Form())
}

// setQuantity regenerates the input pairs
func (h *Handler) setQuantity(c *gin.Context) {
	var req struct {
		Quantity string `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// The quantity input arrives as the raw field value; anything that
	// does not parse counts as invalid, same as a non-positive number.
	n, err := strconv.Atoi(req.Quantity)
	if err != nil {
		n = 0
	}

	cons := h.console(c)
	cons.Intake.SetQuantity(n)
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// toggleSameBarcode flips the same-barcode mode
func (h *Handler) toggleSameBarcode(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cons := h.console(c)
	cons.Intake.ToggleSameBarcode(req.Enabled)
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// setIntakeInput records manual barcode/serial entry
func (h *Handler) setIntakeInput(c *gin.Context) {
	var req struct {
		Index   int     `json:"index"`
		Barcode *string `json:"barcode"`
		Serial  *string `json:"serial"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cons := h.console(c)
	if req.Barcode != nil {
		cons.Intake.SetBarcode(req.Index, *req.Barcode)
	}
	if req.Serial != nil {
		cons.Intake.SetSerial(req.Index, *req.Serial)
	}
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// detect injects a detection, e.g. from a USB scanner bridge
func (h *Handler) detect(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cons := h.console(c)
	cons.Intake.HandleDetection(req.Code)
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// submitIntake submits the batch
func (h *Handler) submitIntake(c *gin.Context) {
	cons := h.console(c)
	_ = cons.Intake.Submit(c.Request.Context())
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// closeIntake dismisses the form and releases the scanner
func (h *Handler) closeIntake(c *gin.Context) {
	cons := h.console(c)
	cons.Intake.Close()
	c.JSON(http.StatusOK, cons.Intake.Form())
}

// refreshOrders fetches and renders the order list
func (h *Handler) refreshOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Orders.Refresh(c.Request.Context()))
}

// ordersState returns the last rendered order list
func (h *Handler) ordersState(c *gin.Context) {
	c.JSON(http.StatusOK, h.console(c).Orders.Page())
}

// updateOrderStatus issues an immediate status update
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cons := h.console(c)
	_ = cons.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	c.JSON(http.StatusOK, cons.Orders.Page())
}

// recentAudit returns the most recent audit log entries
func (h *Handler) recentAudit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}

	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
