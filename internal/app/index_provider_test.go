package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/index"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/platform/qdrant"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testLoaded(t *testing.T) *index.Loaded {
	t.Helper()
	loaded, err := index.FromArtifacts(&index.Artifacts{
		Manifest: index.Manifest{Model: "hashing-3", Dims: 3},
		Vectors:  []float32{1, 0, 0, 0, 1, 0},
		IDs:      []int64{7, 8},
	})
	if err != nil {
		t.Fatalf("FromArtifacts: %v", err)
	}
	return loaded
}

func qdrantEnvelope(result any) *http.Response {
	raw, _ := json.Marshal(map[string]any{"status": "ok", "result": result})
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(raw)),
	}
}

// stubQdrant swaps the client constructor for one that talks to fn.
func stubQdrant(t *testing.T, fn roundTripFunc) {
	t.Helper()
	prev := newQdrantClient
	newQdrantClient = func(log *logger.Logger, cfg qdrant.Config) (*qdrant.Client, error) {
		return qdrant.NewWithHTTPClient(log, cfg, &http.Client{Transport: fn})
	}
	t.Cleanup(func() { newQdrantClient = prev })
}

func fakeQdrant(size int, count int) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/readyz":
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil))}, nil
		case "/collections/games":
			return qdrantEnvelope(map[string]any{
				"config": map[string]any{"params": map[string]any{"vectors": map[string]any{"size": size, "distance": "Dot"}}},
			}), nil
		case "/collections/games/points/count":
			return qdrantEnvelope(map[string]any{"count": count}), nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}
}

func qdrantIndexConfig() config.IndexConfig {
	return config.IndexConfig{
		Backend: config.IndexBackendQdrant,
		Qdrant:  config.QdrantConfig{URL: "http://qdrant.test:6333", Collection: "games"},
	}
}

func TestResolveIndexFlat(t *testing.T) {
	loaded := testLoaded(t)
	s, backend, err := resolveIndex(context.Background(), logger.Nop(), config.IndexConfig{}, loaded, nil)
	if err != nil {
		t.Fatalf("resolveIndex: %v", err)
	}
	if backend != config.IndexBackendFlat || s.Len() != 2 {
		t.Fatalf("want flat/2 got=%s/%d", backend, s.Len())
	}
}

func TestResolveIndexInvalidBackend(t *testing.T) {
	_, _, err := resolveIndex(context.Background(), logger.Nop(), config.IndexConfig{Backend: "pinecone"}, testLoaded(t), nil)
	var be *IndexBootstrapError
	if !errors.As(err, &be) || be.Code != IndexBootstrapErrorInvalidBackend {
		t.Fatalf("want invalid_backend got=%v", err)
	}
}

func TestResolveIndexQdrant(t *testing.T) {
	stubQdrant(t, fakeQdrant(3, 2))
	s, backend, err := resolveIndex(context.Background(), logger.Nop(), qdrantIndexConfig(), testLoaded(t), nil)
	if err != nil {
		t.Fatalf("resolveIndex: %v", err)
	}
	if backend != config.IndexBackendQdrant || s.Dims() != 3 || s.Len() != 2 {
		t.Fatalf("qdrant searcher: backend=%s dims=%d len=%d", backend, s.Dims(), s.Len())
	}
}

func TestResolveIndexQdrantErrors(t *testing.T) {
	cases := []struct {
		name   string
		cfg    func() config.IndexConfig
		server roundTripFunc
		code   IndexBootstrapErrorCode
	}{
		{
			name: "missing url",
			cfg: func() config.IndexConfig {
				c := qdrantIndexConfig()
				c.Qdrant.URL = ""
				return c
			},
			server: fakeQdrant(3, 2),
			code:   IndexBootstrapErrorMissingQdrantURL,
		},
		{
			name:   "vector size",
			cfg:    qdrantIndexConfig,
			server: fakeQdrant(384, 2),
			code:   IndexBootstrapErrorCollectionMismatch,
		},
		{
			name:   "row count",
			cfg:    qdrantIndexConfig,
			server: fakeQdrant(3, 1),
			code:   IndexBootstrapErrorRowCountMismatch,
		},
	}
	for _, tc := range cases {
		stubQdrant(t, tc.server)
		_, _, err := resolveIndex(context.Background(), logger.Nop(), tc.cfg(), testLoaded(t), nil)
		var be *IndexBootstrapError
		if !errors.As(err, &be) || be.Code != tc.code {
			t.Fatalf("%s: want code=%s got=%v", tc.name, tc.code, err)
		}
	}
}

func TestIndexBootstrapErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := classifyIndexBootstrapError("qdrant", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("want wrapped cause got=%v", err)
	}
	if indexBootstrapErrorCode(err) != IndexBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%s got=%s", IndexBootstrapErrorConnectFailed, indexBootstrapErrorCode(err))
	}
}
