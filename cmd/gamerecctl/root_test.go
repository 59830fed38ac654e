package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cliCatalog = `{"appid": 1, "name": "Cozy Farm", "short_description": "farming and fishing", "genres": ["Simulation"], "tags": ["Farming"], "pct_pos_total": 92, "num_reviews_total": 4000, "price": 9.99}
{"appid": 2, "name": "Deep Space", "short_description": "space trading", "genres": ["Strategy"], "tags": ["Space"], "pct_pos_total": 75, "num_reviews_total": 900}
{"appid": 3, "name": "Night Club", "short_description": "farming nightlife", "genres": ["Simulation"], "tags": ["Nudity"], "pct_pos_total": 50, "num_reviews_total": 100}
`

// writeCLIConfig lays out a catalog and a config file pointing every path
// into a temp dir.
func writeCLIConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "games.jsonl")
	if err := os.WriteFile(catalogPath, []byte(cliCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf(`database:
  driver: sqlite
  dsn: %s
catalog:
  path: %s
index:
  backend: flat
  dir: %s
encoder:
  backend: hashing
  dims: 32
cache:
  backend: none
telemetry:
  enabled: false
`, filepath.Join(dir, "gamerec.db"), catalogPath, filepath.Join(dir, "artifacts"))
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogStats(t *testing.T) {
	cfg := writeCLIConfig(t)
	out, err := run(t, "--config", cfg, "catalog", "stats")
	if err != nil {
		t.Fatalf("catalog stats: %v", err)
	}
	if !strings.Contains(out, "games: 3") || !strings.Contains(out, "short_description") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	out, err = run(t, "--config", cfg, "catalog", "stats", "--json")
	if err != nil || !strings.Contains(out, `"total": 3`) {
		t.Fatalf("json output: err=%v\n%s", err, out)
	}
}

func TestIndexBuildThenRecommend(t *testing.T) {
	cfg := writeCLIConfig(t)
	out, err := run(t, "--config", cfg, "index", "build", "--batch", "2", "--workers", "2")
	if err != nil {
		t.Fatalf("index build: %v", err)
	}
	if !strings.Contains(out, "wrote 3 rows (dims=32 model=hashing-32)") {
		t.Fatalf("build output: %s", out)
	}

	out, err = run(t, "--config", cfg, "recommend", "farming", "--k", "2")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !strings.Contains(out, "Cozy Farm") || strings.Contains(out, "Night Club") {
		t.Fatalf("recommend output:\n%s", out)
	}

	out, err = run(t, "--config", cfg, "recommend", "farming", "--k", "3", "--unsafe")
	if err != nil {
		t.Fatalf("recommend --unsafe: %v", err)
	}
	if !strings.Contains(out, "Night Club") {
		t.Fatalf("--unsafe should include flagged games:\n%s", out)
	}
}

func TestRecommendWithoutArtifactsFails(t *testing.T) {
	cfg := writeCLIConfig(t)
	if _, err := run(t, "--config", cfg, "recommend", "farming"); err == nil {
		t.Fatalf("want error without artifacts")
	}
}

func TestPrefsSetThenShow(t *testing.T) {
	cfg := writeCLIConfig(t)
	if _, err := run(t, "--config", cfg, "prefs", "set", "--user", "erin", "--liked", "Simulation,RPG", "--max-price", "20"); err != nil {
		t.Fatalf("prefs set: %v", err)
	}
	out, err := run(t, "--config", cfg, "prefs", "show", "--user", "erin")
	if err != nil {
		t.Fatalf("prefs show: %v", err)
	}
	for _, want := range []string{"liked_genres:", "- Simulation", "- RPG", "max_price: 20", "avoid_nsfw: true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	if _, err := run(t, "--config", cfg, "prefs", "set", "--user", "erin", "--min-score", "150"); err == nil {
		t.Fatalf("want validation error for min-score 150")
	}
}
