package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_CreateSession(t *testing.T) {
	var gotPath, gotAuth, gotIdemKey string
	var gotBody createSessionBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Session{ID: "cs_123", URL: "https://pay.example/cs_123"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second, nil)

	sess, err := c.CreateSession(context.Background(), CreateSessionParams{
		AmountCents:    4500,
		Currency:       "eur",
		SuccessURL:     "https://app.example/ok",
		CancelURL:      "https://app.example/cancel",
		Metadata:       map[string]string{"booking_id": "b-1"},
		IdempotencyKey: "deposit_checkout-abc",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_123", sess.ID)
	assert.Equal(t, "https://pay.example/cs_123", sess.URL)

	assert.Equal(t, "/v1/checkout/sessions", gotPath)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "deposit_checkout-abc", gotIdemKey)
	assert.Equal(t, int64(4500), gotBody.AmountCents)
	assert.Equal(t, "EUR", gotBody.Currency)
	assert.Equal(t, "b-1", gotBody.Metadata["booking_id"])
}

func TestHTTPClient_CreateSession_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second, nil)
	_, err := c.CreateSession(context.Background(), CreateSessionParams{AmountCents: 100, Currency: "EUR"})

	assert.ErrorIs(t, err, ErrGatewayError)
}

func TestHTTPClient_NotConfigured(t *testing.T) {
	c := NewHTTPClient("", "", 5*time.Second, nil)

	_, err := c.CreateSession(context.Background(), CreateSessionParams{AmountCents: 100, Currency: "EUR"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = c.CancelSession(context.Background(), "cs_123")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHTTPClient_CancelSession(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second, nil)
	err := c.CancelSession(context.Background(), "cs_123")

	require.NoError(t, err)
	assert.Equal(t, "/v1/checkout/sessions/cs_123/expire", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestHTTPClient_RetrieveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Session{ID: "cs_123", Status: "complete", PaymentRef: "pm_9"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sk_test", 5*time.Second, nil)
	sess, err := c.RetrieveSession(context.Background(), "cs_123")

	require.NoError(t, err)
	assert.Equal(t, "complete", sess.Status)
	assert.Equal(t, "pm_9", sess.PaymentRef)
}
