package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lodgekeep/concierge/pkg/observability"
	"github.com/lodgekeep/concierge/pkg/token"
)

const defaultTimeout = 15 * time.Second

// Client talks to the backend auth endpoints. It carries no session state;
// callers supply credentials and tokens explicitly.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *observability.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.http = httpClient }
}

// WithClientLogger sets the structured logger.
func WithClientLogger(logger *observability.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the auth backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.logger == nil {
		c.logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return c
}

// Login exchanges credentials for a token pair and user record. Backend
// rejections come back as *APIError with the backend's message intact.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Tokens: token.Pair{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
		},
		TokenType: resp.TokenType,
		ExpiresAt: resp.ExpiresAt,
		User:      resp.User,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. Its signature matches
// token.ExchangeFunc so it can be handed to the token manager directly.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	var resp refreshResponse
	err := c.post(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return token.Pair{}, err
	}
	return token.Pair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Logout tells the backend to invalidate the session. The access token is
// passed explicitly; the session is cleared locally regardless of the
// backend's answer, so callers treat errors as advisory.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, "/auth/logout", nil)
	if err != nil {
		return err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	var resp logoutResponse
	return c.do(req, &resp)
}

// post issues a JSON POST and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, path string, body interface{}) (*http.Request, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError builds an *APIError from a non-2xx response, falling back
// to the raw body when it is not the standard error shape.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		apiErr.Message = resp.Status
		return apiErr
	}

	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			apiErr.Message = parsed.Error
		}
	}
	if apiErr.Message == "" {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		apiErr.Message = msg
	}
	return apiErr
}
