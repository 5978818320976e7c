package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

// createTestClient creates a client pointed at serverURL
func createTestClient(t *testing.T, serverURL string, mockFallback bool, opts ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		MockFallback: mockFallback,
	}, opts...)
	require.NoError(t, err)
	return client
}

// closedServerURL returns the URL of a server that no longer accepts connections
func closedServerURL() string {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()
	return url
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "valid", config: Config{APIKey: "k", BaseURL: "https://api.example.com/"}},
		{name: "missing key", config: Config{BaseURL: "https://api.example.com"}, wantErr: ErrConfigMissingAPIKey},
		{name: "missing base url", config: Config{APIKey: "k", BaseURL: "  "}, wantErr: ErrConfigMissingBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://api.example.com", tt.config.BaseURL)
			assert.Equal(t, DefaultTimeoutSeconds, tt.config.TimeoutSeconds)
		})
	}
}

// ---------------------------------------------------------------------------
// Request Tests
// ---------------------------------------------------------------------------

func TestClient_Headers(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	t.Run("without token", func(t *testing.T) {
		client := createTestClient(t, server.URL, false)
		require.NoError(t, client.Get(context.Background(), "/x", nil))

		assert.Equal(t, "application/json", got.Get("Content-Type"))
		assert.Equal(t, "test-key", got.Get("X-API-Key"))
		assert.Empty(t, got.Get("Authorization"))
	})

	t.Run("with token", func(t *testing.T) {
		client := createTestClient(t, server.URL, false, WithTokenSource(staticTokens("tok-123")))
		require.NoError(t, client.Get(context.Background(), "/x", nil))

		assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	})
}

func TestClient_Methods(t *testing.T) {
	type seen struct {
		method string
		path   string
		body   string
	}
	var last seen
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		last = seen{method: r.Method, path: r.URL.Path, body: string(body)}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := createTestClient(t, server.URL, false)
	ctx := context.Background()
	var out struct {
		OK bool `json:"ok"`
	}

	require.NoError(t, client.Put(ctx, "/put", map[string]int{"a": 1}, &out))
	assert.Equal(t, seen{http.MethodPut, "/put", `{"a":1}`}, last)
	assert.True(t, out.OK)

	require.NoError(t, client.Patch(ctx, "/patch", map[string]int{"quantity": 0}, nil))
	assert.Equal(t, seen{http.MethodPatch, "/patch", `{"quantity":0}`}, last)

	require.NoError(t, client.Delete(ctx, "/delete", nil, nil))
	assert.Equal(t, seen{http.MethodDelete, "/delete", ""}, last)

	raw, err := client.GetRaw(ctx, "/raw")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestClient_RemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "message field", status: 422, body: `{"message":"Item unavailable"}`, wantMessage: "Item unavailable"},
		{name: "error string", status: 400, body: `{"error":"Bad cart"}`, wantMessage: "Bad cart"},
		{name: "nested error", status: 409, body: `{"error":{"message":"Cart closed"}}`, wantMessage: "Cart closed"},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, wantMessage: ""},
		{name: "not found", status: 404, body: ``, wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := createTestClient(t, server.URL, true)
			err := client.Post(context.Background(), "/api/v1/locations/l/carts", nil, nil)

			var remoteErr *shared.RemoteError
			require.ErrorAs(t, err, &remoteErr, "remote errors are never mocked")
			assert.Equal(t, tt.status, remoteErr.StatusCode)
			assert.Equal(t, tt.wantMessage, remoteErr.Message)
			assert.Equal(t, tt.status == 404, remoteErr.NotFound())
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := createTestClient(t, server.URL, false)
	var out map[string]any
	err := client.Get(context.Background(), "/x", &out)
	assert.ErrorContains(t, err, "failed to parse response")
}

// ---------------------------------------------------------------------------
// Mock Fallback Tests
// ---------------------------------------------------------------------------

func TestClient_MockFallback(t *testing.T) {
	url := closedServerURL()
	ctx := context.Background()

	t.Run("disabled propagates the transport error", func(t *testing.T) {
		client := createTestClient(t, url, false)
		err := client.Post(ctx, "/api/v1/locations/l/carts", map[string]string{}, nil)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("cart creation", func(t *testing.T) {
		client := createTestClient(t, url, true)
		client.now = func() time.Time { return time.UnixMilli(1700000000000) }

		var out map[string]any
		require.NoError(t, client.Post(ctx, "/api/v1/locations/l/carts", map[string]string{"fulfillmentMethod": "takeout"}, &out))

		assert.Equal(t, "mock-cart-1700000000000", out["cartId"])
		assert.Equal(t, "active", out["status"])
		assert.Equal(t, []any{}, out["items"])
		assert.EqualValues(t, 0, out["total"])
	})

	t.Run("cart item", func(t *testing.T) {
		client := createTestClient(t, url, true)

		var out struct {
			CartID string `json:"cartId"`
			Items  []struct {
				ProductID string  `json:"productId"`
				Quantity  int     `json:"quantity"`
				Price     float64 `json:"price"`
				ItemTotal float64 `json:"itemTotal"`
			} `json:"items"`
			Subtotal float64 `json:"subtotal"`
			Tax      float64 `json:"tax"`
			Total    float64 `json:"total"`
		}
		body := map[string]any{"productId": "p1", "quantity": 2}
		require.NoError(t, client.Post(ctx, "/api/v1/locations/l/carts/c/cart-item", body, &out))

		assert.Equal(t, "mock-cart-123", out.CartID)
		require.Len(t, out.Items, 1)
		assert.Equal(t, "p1", out.Items[0].ProductID)
		assert.Equal(t, 2, out.Items[0].Quantity)
		assert.InDelta(t, 5.0, out.Items[0].Price, 1e-9)
		assert.InDelta(t, 10.0, out.Subtotal, 1e-9)
		assert.InDelta(t, 0.8, out.Tax, 1e-9)
		assert.InDelta(t, 10.8, out.Total, 1e-9)
	})

	t.Run("discount", func(t *testing.T) {
		client := createTestClient(t, url, true)

		var out map[string]any
		require.NoError(t, client.Post(ctx, "/api/v1/locations/l/carts/c/discounts/apply-discount", map[string]string{"discountCode": "SAVE2"}, &out))

		assert.Equal(t, true, out["discountApplied"])
		assert.EqualValues(t, 2, out["discountAmount"])
		assert.Equal(t, "SAVE2", out["discountCode"])
	})

	t.Run("anything else", func(t *testing.T) {
		client := createTestClient(t, url, true)

		var out map[string]any
		require.NoError(t, client.Post(ctx, "/api/v1/other", map[string]string{"a": "b"}, &out))

		assert.Equal(t, true, out["success"])
		assert.Equal(t, "Mock response for local development", out["message"])
		assert.Equal(t, map[string]any{"a": "b"}, out["data"])
	})

	t.Run("only POST is mocked", func(t *testing.T) {
		client := createTestClient(t, url, true)
		assert.ErrorIs(t, client.Get(ctx, "/api/v1/locations/l/carts/c", nil), ErrUnavailable)
		assert.ErrorIs(t, client.Patch(ctx, "/api/v1/locations/l/carts/c/cart-item/x/quantity", nil, nil), ErrUnavailable)
	})

	t.Run("cancelled context is not mocked", func(t *testing.T) {
		client := createTestClient(t, url, true)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := client.Post(cancelled, "/api/v1/locations/l/carts", nil, nil)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable) || errors.Is(err, context.Canceled))
	})
}

func TestMockPostResponse_DefaultsQuantity(t *testing.T) {
	raw, err := mockPostResponse("/carts/c/cart-item", nil, time.Now())
	require.NoError(t, err)

	var out struct {
		Subtotal json.Number `json:"subtotal"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "5", out.Subtotal.String())
}
