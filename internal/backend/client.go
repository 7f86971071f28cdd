// Package backend is the authenticated HTTP client for the remote
// e-commerce admin API. Every protected call carries the session's
// bearer token; failures surface a single user-facing message with the
// server-provided one preferred. No call is retried here — the caller
// decides how to surface failure.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"admin-console/internal/models"
	"admin-console/internal/util"

	"go.uber.org/zap"
)

// genericFailureMessage is used when the server did not provide one.
const genericFailureMessage = "Request failed. Please try again."

// TokenSource yields the bearer token for the current session. An
// empty token means the request goes out unauthenticated (login).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed-token TokenSource, used by tests and tooling.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("admin api: %d: %s", e.StatusCode, e.Message)
}

// UserMessage extracts the user-facing message from an error returned
// by the client: the server message for API errors, a generic fallback
// for transport failures.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return genericFailureMessage
}

// Client calls the remote admin API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient creates a client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  util.NamedLogger("backend"),
	}
}

// MessageResponse is the `{message}` success shape of mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse is the login success shape.
type LoginResponse struct {
	Token string `json:"token"`
}

// errorBody covers both error shapes the API uses.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do issues one request and decodes the response into out (may be nil).
func (c *Client) do(ctx context.Context, operation, method, path string, body, out interface{}) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		util.BackendRequestLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		util.BackendRequestsTotal.WithLabelValues(operation, outcome).Inc()
	}()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("operation", operation),
			zap.Error(err))
		return fmt.Errorf("network failure: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		message := eb.Error
		if message == "" {
			message = eb.Message
		}
		if message == "" {
			message = genericFailureMessage
		}
		c.logger.Warn("Backend request rejected",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	outcome = "success"
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListProducts fetches all products.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Backend.ListProducts")
	defer span.End()

	var products []models.Product
	if err := c.do(ctx, "list_products", http.MethodGet, "/api/admin/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct sends a full field update for one product.
func (c *Client) UpdateProduct(ctx context.Context, id string, update *models.ProductUpdate) (*MessageResponse, error) {
	ctx, span := util.StartSpan(ctx, "Backend.UpdateProduct")
	defer span.End()

	var resp MessageResponse
	if err := c.do(ctx, "update_product", http.MethodPut, "/api/admin/products/"+id, update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteProduct deletes one product.
func (c *Client) DeleteProduct(ctx context.Context, id string) (*MessageResponse, error) {
	ctx, span := util.StartSpan(ctx, "Backend.DeleteProduct")
	defer span.End()

	var resp MessageResponse
	if err := c.do(ctx, "delete_product", http.MethodDelete, "/api/admin/products/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddInventory submits an intake batch for a product.
func (c *Client) AddInventory(ctx context.Context, productID string, items []models.InventoryItem) (*MessageResponse, error) {
	ctx, span := util.StartSpan(ctx, "Backend.AddInventory")
	defer span.End()

	var resp MessageResponse
	if err := c.do(ctx, "add_inventory", http.MethodPost, "/api/admin/products/"+productID+"/items", items, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrders fetches all orders.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Backend.ListOrders")
	defer span.End()

	var orders []models.Order
	if err := c.do(ctx, "list_orders", http.MethodGet, "/api/admin/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus updates the status of one order.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*MessageResponse, error) {
	ctx, span := util.StartSpan(ctx, "Backend.UpdateOrderStatus")
	defer span.End()

	body := map[string]string{"status": string(status)}
	var resp MessageResponse
	if err := c.do(ctx, "update_order_status", http.MethodPut, "/api/admin/orders/"+id+"/status", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a session token. The call goes out
// without a bearer header.
func (c *Client) Login(ctx context.Context, creds *models.Credentials) (*LoginResponse, error) {
	ctx, span := util.StartSpan(ctx, "Backend.Login")
	defer span.End()

	var resp LoginResponse
	if err := c.doUnauthenticated(ctx, "login", http.MethodPost, "/api/admin/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doUnauthenticated is do with the token source bypassed.
func (c *Client) doUnauthenticated(ctx context.Context, operation, method, path string, body, out interface{}) error {
	unauth := *c
	unauth.tokens = StaticToken("")
	return unauth.do(ctx, operation, method, path, body, out)
}
