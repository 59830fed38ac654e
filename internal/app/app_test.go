package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/catalog"
	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/encoder"
	"github.com/yungbote/gamerec-backend/internal/index"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

const testDims = 64

const testCatalog = `{"appid": 10, "name": "Stardew Farm", "short_description": "Relaxing farming life sim", "genres": ["Simulation", "RPG"], "tags": ["Farming", "Cozy"], "pct_pos_total": 95, "num_reviews_total": 50000, "price": 14.99}
{"appid": 20, "name": "Harvest Valley", "short_description": "Farming and village life", "genres": ["Simulation"], "tags": ["Farming"], "pct_pos_total": 80, "num_reviews_total": 1200, "price": 9.99}
{"appid": 30, "name": "Dread Manor", "short_description": "Horror survival in a haunted manor", "genres": ["Action"], "tags": ["Horror", "Survival"], "pct_pos_total": 70, "num_reviews_total": 800}
{"appid": 40, "name": "Velvet Nights", "short_description": "Farming dating sim", "genres": ["Simulation"], "tags": ["Sexual Content", "Nudity"], "pct_pos_total": 60, "num_reviews_total": 300}
{"appid": 50, "name": "Mars Farm Tycoon", "short_description": "Farming on mars", "genres": ["Strategy"], "tags": ["Farming", "Space"], "pct_pos_total": 85, "num_reviews_total": 10}
`

func init() {
	gin.SetMode(gin.TestMode)
}

// writeFixture lays out a catalog and matching hashing-encoder artifacts.
func writeFixture(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "games.jsonl")
	if err := os.WriteFile(catalogPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := catalog.Load(context.Background(), logger.Nop(), catalogPath)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("config.LoadFile: %v", err)
	}
	cfg.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = filepath.Join(dir, "gamerec.db")
	cfg.Catalog.Path = catalogPath
	cfg.Index.Backend = config.IndexBackendFlat
	cfg.Index.Dir = filepath.Join(dir, "artifacts")
	cfg.Encoder.Backend = config.EncoderBackendHashing
	cfg.Encoder.Dims = testDims
	cfg.Cache.Backend = config.CacheBackendBadger
	cfg.Cache.BadgerDir = ""
	cfg.Telemetry.Enabled = false
	cfg.Auth.JWTSecret = ""

	enc, err := NewEncoder(logger.Nop(), cfg.Encoder, testDims)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	ids := make([]int64, 0, store.Len())
	texts := make([]string, 0, store.Len())
	for _, g := range store.All() {
		ids = append(ids, g.ID)
		texts = append(texts, g.CorpusText())
	}
	vecs, err := encoder.EncodeAll(context.Background(), enc, texts)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	flat := make([]float32, 0, len(vecs)*testDims)
	for _, v := range vecs {
		flat = append(flat, v...)
	}
	if err := index.WriteArtifacts(cfg.Index.Dir, &index.Artifacts{
		Manifest: index.Manifest{Model: enc.Model(), Dims: testDims},
		Vectors:  flat,
		IDs:      ids,
	}); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	return *cfg
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := NewWithConfig(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func do(t *testing.T, a *App, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

type resultIDs struct {
	Results []struct {
		ID             int64   `json:"id"`
		CompositeScore float64 `json:"composite_score"`
		Reason         string  `json:"reason"`
	} `json:"results"`
	Count int `json:"count"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestNewWithConfigReady(t *testing.T) {
	a := newTestApp(t, writeFixture(t))
	if a.CatalogSize() != 5 || a.IndexRows() != 5 {
		t.Fatalf("sizes: want=5/5 got=%d/%d", a.CatalogSize(), a.IndexRows())
	}
	if a.IndexBackend() != config.IndexBackendFlat {
		t.Fatalf("backend: want=flat got=%s", a.IndexBackend())
	}
	w := do(t, a, http.MethodGet, "/readyz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("readyz: want=200 got=%d", w.Code)
	}
	if w := do(t, a, http.MethodGet, "/metrics", "", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "gamerec") {
		t.Fatalf("metrics: code=%d", w.Code)
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	a := newTestApp(t, writeFixture(t))

	w := do(t, a, http.MethodPost, "/api/recommendations", "alice", map[string]any{"query": "farming life", "k": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("want=200 got=%d body=%s", w.Code, w.Body.String())
	}
	var res resultIDs
	decode(t, w, &res)
	if res.Count != len(res.Results) || res.Count == 0 || res.Count > 3 {
		t.Fatalf("count: got=%d results=%d", res.Count, len(res.Results))
	}
	for i, r := range res.Results {
		if r.ID == 40 || r.ID == 30 {
			t.Fatalf("unsafe or avoided game %d in results", r.ID)
		}
		if i > 0 && res.Results[i-1].CompositeScore < r.CompositeScore {
			t.Fatalf("not sorted at %d", i)
		}
		if !strings.HasPrefix(r.Reason, `Related to "farming life"`) {
			t.Fatalf("reason: got=%q", r.Reason)
		}
	}

	if w := do(t, a, http.MethodPost, "/api/recommendations", "alice", map[string]any{"query": "farming", "k": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("k=0: want=400 got=%d", w.Code)
	}
}

func TestPreferencesShapeRecommendations(t *testing.T) {
	a := newTestApp(t, writeFixture(t))

	w := do(t, a, http.MethodPut, "/api/preferences", "bob", map[string]any{
		"liked_genres":    []string{},
		"disliked_genres": []string{"strategy"},
		"avoid_tags":      []string{},
		"min_num_reviews": 1000,
		"avoid_nsfw":      true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put prefs: want=200 got=%d body=%s", w.Code, w.Body.String())
	}

	w = do(t, a, http.MethodPost, "/api/recommendations", "bob", map[string]any{"query": "farming", "k": 5})
	var res resultIDs
	decode(t, w, &res)
	for _, r := range res.Results {
		if r.ID == 50 || r.ID == 40 || r.ID == 30 {
			t.Fatalf("game %d should have been filtered", r.ID)
		}
	}

	// Another user still sees defaults.
	w = do(t, a, http.MethodGet, "/api/preferences", "carol", nil)
	var got struct {
		Preferences struct {
			AvoidTags     []string `json:"avoid_tags"`
			MinNumReviews int64    `json:"min_num_reviews"`
		} `json:"preferences"`
	}
	decode(t, w, &got)
	if got.Preferences.MinNumReviews != 0 || len(got.Preferences.AvoidTags) != 2 {
		t.Fatalf("carol defaults: got=%+v", got.Preferences)
	}
}

func TestLikesAndLibrary(t *testing.T) {
	a := newTestApp(t, writeFixture(t))

	if w := do(t, a, http.MethodPost, "/api/likes/10", "dana", nil); w.Code != http.StatusOK {
		t.Fatalf("like: want=200 got=%d", w.Code)
	}
	if w := do(t, a, http.MethodPost, "/api/likes/20/star", "dana", nil); w.Code != http.StatusOK {
		t.Fatalf("star: want=200 got=%d", w.Code)
	}
	if w := do(t, a, http.MethodPost, "/api/likes/999", "dana", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown game: want=404 got=%d", w.Code)
	}
	w := do(t, a, http.MethodGet, "/api/likes?starred=true", "dana", nil)
	var likes struct {
		Count int `json:"count"`
	}
	decode(t, w, &likes)
	if likes.Count != 1 {
		t.Fatalf("starred likes: want=1 got=%d", likes.Count)
	}
	if w := do(t, a, http.MethodDelete, "/api/likes/10", "dana", nil); w.Code != http.StatusNoContent {
		t.Fatalf("unlike: want=204 got=%d", w.Code)
	}

	w = do(t, a, http.MethodGet, "/api/games?q=farm", "dana", nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "Velvet Nights") {
		t.Fatalf("library search leaked unsafe game: %s", w.Body.String())
	}
	if w := do(t, a, http.MethodGet, "/api/games/10/similar?k=2", "dana", nil); w.Code != http.StatusOK || strings.Contains(w.Body.String(), `"id":10,`) {
		t.Fatalf("similar: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestModelMismatchIsFatal(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Encoder.Dims = testDims * 2
	if _, err := NewCore(context.Background(), logger.Nop(), cfg); err == nil {
		t.Fatalf("want dims mismatch error")
	}
}

func TestMissingArtifactsIsFatal(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Index.Dir = t.TempDir()
	_, err := NewCore(context.Background(), logger.Nop(), cfg)
	var le *index.LoadError
	if err == nil || !errors.As(err, &le) {
		t.Fatalf("want LoadError got=%v", err)
	}
}
