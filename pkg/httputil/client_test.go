package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draeangela/industry-data-visualizer/pkg/config"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

func testLogger() *logger.Logger {
	cfg := &config.Config{
		Env:      "development",
		LogLevel: "error", // Reduce log noise
	}
	return logger.New(cfg)
}

func TestNew(t *testing.T) {
	client := New(testLogger())
	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.httpClient == nil {
		t.Error("Expected http.Client to be initialized")
	}

	if client.logger == nil {
		t.Error("Expected logger to be set")
	}

	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}
}

func TestNewWithTimeout(t *testing.T) {
	timeout := 5 * time.Second
	client := NewWithTimeout(testLogger(), timeout)

	if client.httpClient.Timeout != timeout {
		t.Errorf("Expected timeout=%v, got %v", timeout, client.httpClient.Timeout)
	}
}

func TestNewForBackend(t *testing.T) {
	client := NewForBackend(config.BackendConfig{
		BaseURL:   "http://localhost:9000",
		RateLimit: 5,
		Burst:     0,
		Timeout:   7 * time.Second,
	}, testLogger())

	if client.retryConfig.Enabled {
		t.Error("Expected backend client to never retry")
	}
	if client.httpClient.Timeout != 7*time.Second {
		t.Errorf("Expected timeout=7s, got %v", client.httpClient.Timeout)
	}
	if client.limiter == nil {
		t.Error("Expected limiter to be set when RateLimit > 0")
	}

	unlimited := NewForBackend(config.BackendConfig{BaseURL: "http://localhost:8000"}, testLogger())
	if unlimited.limiter != nil {
		t.Error("Expected no limiter when RateLimit is 0")
	}
	if unlimited.httpClient.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout=30s, got %v", unlimited.httpClient.Timeout)
	}
}

func TestWithRetry(t *testing.T) {
	client := New(testLogger()).WithRetry(5, 2*time.Second)

	if client.retryConfig.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got %d", client.retryConfig.MaxRetries)
	}

	if client.retryConfig.InitialDelay != 2*time.Second {
		t.Errorf("Expected InitialDelay=2s, got %v", client.retryConfig.InitialDelay)
	}
}

func TestDisableRetry(t *testing.T) {
	client := New(testLogger()).DisableRetry()

	if client.retryConfig.Enabled {
		t.Error("Expected retry to be disabled")
	}
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Expected Accept=application/json, got %s", got)
		}
		if got := r.Header.Get("X-Viewer"); got != "1" {
			t.Errorf("Expected X-Viewer=1, got %s", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(testLogger()).WithHeader("X-Viewer", "1")

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GET request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(testLogger()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Request failed after retries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestNoRetryWhenDisabled(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(testLogger()).DisableRetry()

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected response, got error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected 1 attempt, got %d", got)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(testLogger()).WithRetry(5, time.Second)

	start := time.Now()
	_, err := client.Get(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Errorf("Expected retry wait to stop on cancel, took %v", time.Since(start))
	}
}

type countingLimiter struct {
	calls int
	err   error
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.calls++
	return l.err
}

func TestLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	client := New(testLogger()).DisableRetry().WithLimiter(limiter)

	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("GET request failed: %v", err)
		}
		resp.Body.Close()
	}

	if limiter.calls != 3 {
		t.Errorf("Expected limiter to be consulted 3 times, got %d", limiter.calls)
	}

	limiter.err = errors.New("limiter closed")
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("Expected limiter error to abort the request")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{201, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			got := IsRetryableError(tt.statusCode)
			if got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}
