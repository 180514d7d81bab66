package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"menu-extractor/internal/types"
)

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond
	config.NavigationTimeout = 5 * time.Second
	return config
}

// statusSequence answers with the given status codes in order, then 200 with body
func statusSequence(body string, statuses ...int) (http.HandlerFunc, *int32) {
	var calls int32
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		w.Write([]byte(body))
	}, &calls
}

func TestHTTPClient_Get(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantBody   string
		wantErr    string
		wantCalls  int32
	}{
		{name: "first attempt", maxRetries: 3, wantBody: "menu", wantCalls: 1},
		{name: "recovers after 503", statuses: []int{503}, maxRetries: 3, wantBody: "menu", wantCalls: 2},
		{name: "recovers on last attempt", statuses: []int{502, 503}, maxRetries: 2, wantBody: "menu", wantCalls: 3},
		{name: "gives up after retries", statuses: []int{404, 404, 404}, maxRetries: 1, wantErr: "unexpected status code: 404", wantCalls: 2},
		{name: "no retries configured", statuses: []int{500}, maxRetries: 0, wantErr: "all retry attempts failed", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, calls := statusSequence("menu", tt.statuses...)
			server := httptest.NewServer(handler)
			defer server.Close()

			config := testConfig()
			config.MaxRetries = tt.maxRetries
			client := NewHTTPClient(config, logrus.New())
			defer client.Close()

			body, err := client.Get(context.Background(), server.URL)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestHTTPClient_SendsBrowserHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
	}))
	defer server.Close()

	config := testConfig()
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	_, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	got := <-headers
	assert.Equal(t, config.UserAgent, got.Get("User-Agent"))
	assert.Contains(t, got.Get("Accept"), "text/html")
	assert.NotEmpty(t, got.Get("Accept-Language"))
}

func TestHTTPClient_RateLimitsRequests(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
	}))
	defer server.Close()

	config := testConfig()
	config.RequestDelay = 50 * time.Millisecond
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, times, 3)
	// ticker jitter is tolerated, back-to-back requests are not
	assert.GreaterOrEqual(t, times[2].Sub(times[0]), 80*time.Millisecond)
}

func TestHTTPClient_CancelledBeforeFirstTick(t *testing.T) {
	config := types.DefaultConfig()
	config.RequestDelay = time.Hour
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "http://ordering.invalid/menu")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClient_GetDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><section data-testid="store-content"><h2 data-testid="list-title">Pizza</h2></section></body></html>`))
	}))
	defer server.Close()

	client := NewHTTPClient(testConfig(), logrus.New())
	defer client.Close()

	doc, err := client.GetDocument(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(`[data-testid="store-content"]`).Length())
	assert.Equal(t, "Pizza", doc.Find(`[data-testid="list-title"]`).Text())
}

func TestHTTPClient_GetDocumentServerError(t *testing.T) {
	handler, _ := statusSequence("", 500, 500)
	server := httptest.NewServer(handler)
	defer server.Close()

	config := testConfig()
	config.MaxRetries = 1
	client := NewHTTPClient(config, logrus.New())
	defer client.Close()

	doc, err := client.GetDocument(context.Background(), server.URL)

	assert.Nil(t, doc)
	assert.ErrorContains(t, err, "unexpected status code: 500")
}
