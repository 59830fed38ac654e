package encoder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

func TestOAIHTTPEncodeSendsSpaceForEmpty(t *testing.T) {
	var got embeddingsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("auth header: got=%q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{0.1, 0.2}}},
		})
	}))
	defer srv.Close()

	e, err := NewOAIHTTP(logger.Nop(), OAIConfig{BaseURL: srv.URL, Model: "all-MiniLM-L6-v2", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOAIHTTP: %v", err)
	}
	v, err := e.Encode(context.Background(), "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(got.Input) != 1 || got.Input[0] != " " || got.Model != "all-MiniLM-L6-v2" {
		t.Fatalf("request: got=%+v", got)
	}
	if len(v) != 2 {
		t.Fatalf("vector: got=%v", v)
	}
}

func TestOAIHTTPBatchUsesIndices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{2}},
				{"index": 0, "embedding": []float64{1}},
			},
		})
	}))
	defer srv.Close()
	e, _ := NewOAIHTTP(logger.Nop(), OAIConfig{BaseURL: srv.URL, Model: "m"})
	out, err := e.EncodeBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	if out[0][0] != 1 || out[1][0] != 2 {
		t.Fatalf("realigned: got=%v", out)
	}
}

func TestOAIHTTPBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	e, _ := NewOAIHTTP(logger.Nop(), OAIConfig{BaseURL: srv.URL, Model: "m", BreakerFailures: 2})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := e.Encode(ctx, "q")
		var he *HTTPError
		if !errors.As(err, &he) || he.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("attempt %d: want HTTPError 503 got=%v", i, err)
		}
	}
	if _, err := e.Encode(ctx, "q"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("want ErrOpenState got=%v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("upstream hits: want=2 got=%d", hits.Load())
	}
}

func TestOAIHTTPClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()
	e, _ := NewOAIHTTP(logger.Nop(), OAIConfig{BaseURL: srv.URL, Model: "m", BreakerFailures: 1})
	for i := 0; i < 3; i++ {
		if _, err := e.Encode(context.Background(), "q"); errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("breaker opened on 4xx")
		}
	}
}
