package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCoinGeckoClient_Fetch(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"pi-network":{"php":41.25,"usd":0.72}}`)
	client := NewCoinGeckoClient(srv.URL, "", time.Second)

	quote, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 41.25, quote.PHP)
	assert.Equal(t, 0.72, quote.USD)
}

func TestCoinGeckoClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"rate limited", http.StatusTooManyRequests, ``},
		{"invalid json", http.StatusOK, `not json`},
		{"missing asset", http.StatusOK, `{"bitcoin":{"php":1,"usd":1}}`},
		{"missing php", http.StatusOK, `{"pi-network":{"usd":0.72}}`},
		{"non-numeric usd", http.StatusOK, `{"pi-network":{"php":41.25,"usd":"n/a"}}`},
		{"null php", http.StatusOK, `{"pi-network":{"php":null,"usd":0.72}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := feedServer(t, tt.status, tt.body)
			client := NewCoinGeckoClient(srv.URL, DefaultAssetID, time.Second)

			_, err := client.Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCoinGeckoClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := NewCoinGeckoClient(srv.URL, "", 50*time.Millisecond)

	start := time.Now()
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCache_WithCoinGeckoFeed(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"pi-network":{"php":41.25,"usd":0.72}}`)
	cache := NewCache(NewCoinGeckoClient(srv.URL, "", time.Second), newClock(), time.Minute)

	quote := cache.GetPrice(context.Background())
	assert.Equal(t, 41.25, quote.PHP)
}
