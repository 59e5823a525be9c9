package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Session is the slice of the gateway's checkout-session object we care
// about. The gateway owns the full record; we only keep references.
type Session struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Status     string `json:"status,omitempty"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

type CreateSessionParams struct {
	AmountCents    int64
	Currency       string
	Description    string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
}

// Client is the one capability any gateway adapter has to provide.
type Client interface {
	CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error)
	CancelSession(ctx context.Context, sessionID string) error
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

// HTTPClient talks to the hosted-checkout JSON API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	loggerf func(format string, args ...interface{})
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, loggerf func(format string, args ...interface{})) *HTTPClient {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
		loggerf: loggerf,
	}
}

type createSessionBody struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (c *HTTPClient) CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(createSessionBody{
		AmountCents: p.AmountCents,
		Currency:    strings.ToUpper(p.Currency),
		Description: p.Description,
		SuccessURL:  p.SuccessURL,
		CancelURL:   p.CancelURL,
		Metadata:    p.Metadata,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if p.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", p.IdempotencyKey)
	}

	var s Session
	if err := c.do(req, &s); err != nil {
		return nil, err
	}
	c.loggerf("level=info msg=checkout session created session_id=%s", s.ID)
	return &s, nil
}

func (c *HTTPClient) CancelSession(ctx context.Context, sessionID string) error {
	if c.baseURL == "" || c.apiKey == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions/"+sessionID+"/expire", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.do(req, nil)
}

func (c *HTTPClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	var s Session
	if err := c.do(req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("checkout gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		c.loggerf("level=error msg=checkout gateway error status=%d body=%s", resp.StatusCode, string(raw))
		return fmt.Errorf("checkout gateway status %d: %w", resp.StatusCode, ErrGatewayError)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("checkout gateway response decode failed: %w", err)
	}
	return nil
}
