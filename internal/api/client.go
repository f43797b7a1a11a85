package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenFunc supplies the current bearer token, if any. It is read on every
// request, the same way the original terminal read its token store before
// each call.
type TokenFunc func(ctx context.Context) (string, bool)

// Client talks to the SiBubur POS backend. All resource bindings share one
// underlying HTTP client and its unauthorized hook.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
	logger     *slog.Logger

	mu             sync.Mutex
	onUnauthorized func()

	Auth           *AuthService
	Orders         *OrdersService
	Transactions   *TransactionsService
	Products       *ProductsService
	Attendances    *AttendancesService
	Roles          *RolesService
	Permissions    *PermissionsService
	Stores         *StoresService
	PaymentMethods *PaymentMethodsService
}

func New(baseURL string, timeout time.Duration, token TokenFunc, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
		logger:     logger,
	}
	c.Auth = &AuthService{client: c}
	c.Orders = &OrdersService{client: c}
	c.Transactions = &TransactionsService{client: c}
	c.Products = &ProductsService{client: c}
	c.Attendances = &AttendancesService{client: c}
	c.Roles = &RolesService{client: c}
	c.Permissions = &PermissionsService{client: c}
	c.Stores = &StoresService{client: c}
	c.PaymentMethods = &PaymentMethodsService{client: c}
	return c
}

// SetOnUnauthorized registers the forced-logout hook. A single subscriber is
// supported; the last registration wins.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) notifyUnauthorized() {
	c.mu.Lock()
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

const profilePath = "/auth/profile"

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != nil {
		if token, ok := c.token(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(method, path, err)
	}
	defer resp.Body.Close()

	// A 401 anywhere, or a 404 on the profile endpoint specifically, means
	// the session is no longer valid on the backend.
	if resp.StatusCode == http.StatusUnauthorized ||
		(resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, profilePath)) {
		c.logger.Warn("session rejected by backend", "method", method, "path", path, "status", resp.StatusCode)
		c.notifyUnauthorized()
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Err
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) classifyTransportError(method string, path string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%s %s: %w", method, path, ErrConnection)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
