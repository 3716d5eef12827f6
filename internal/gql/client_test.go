package gql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestClientDoDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", req.Method)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var body request
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !strings.Contains(body.Query, "getSuggestion") {
			t.Errorf("query = %q", body.Query)
		}
		if body.Variables["input"] != "Bay" {
			t.Errorf("variables = %v", body.Variables)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"getSuggestion":"Bayern München"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	var out struct {
		GetSuggestion *string `json:"getSuggestion"`
	}
	err := c.Do(context.Background(), "query { getSuggestion(input: $input) }", map[string]any{"input": "Bay"}, &out)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if out.GetSuggestion == nil || *out.GetSuggestion != "Bayern München" {
		t.Errorf("unexpected data: %v", out.GetSuggestion)
	}
}

func TestClientDoJoinsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"first"},{"message":"second"}]}`))
	}))
	defer server.Close()

	err := NewClient(server.URL).Do(context.Background(), "query", nil, nil)
	var re *ResponseError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if err.Error() != "first\nsecond" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClientDoHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL).Do(context.Background(), "query", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestClientDoEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))
	defer server.Close()

	var out map[string]any
	err := NewClient(server.URL).Do(context.Background(), "query", nil, &out)
	if !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}

func TestClientDoMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	if err := NewClient(server.URL).Do(context.Background(), "query", nil, &out); err == nil {
		t.Error("expected parse error")
	}
}

func TestClientDoDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_ = NewClient(server.URL).Do(context.Background(), "query", nil, nil)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
}

func TestClientDoRespectsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewClient(server.URL).Do(ctx, "query", nil, nil)
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestWithRateLimitDisabled(t *testing.T) {
	c := NewClient("http://example.invalid", WithRateLimit(0, 0))
	if c.limiter.Limit() != rate.Inf {
		t.Errorf("expected unlimited limiter, got %v", c.limiter.Limit())
	}

	c = NewClient("http://example.invalid", WithRateLimit(20, 0))
	if c.limiter.Limit() != 20 || c.limiter.Burst() != 1 {
		t.Errorf("limiter = %v/%d, want 20/1", c.limiter.Limit(), c.limiter.Burst())
	}
}
