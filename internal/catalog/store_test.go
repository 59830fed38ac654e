package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

func sampleStore() *Store {
	return NewStore([]domain.Game{
		{ID: 30, Name: "Hollow Knight", Genres: []string{"Action", "Adventure"}, Tags: []string{"Metroidvania"}},
		{ID: 10, Name: "Stardew Valley", ShortDescription: "Farm.", Genres: []string{"RPG"}, Tags: []string{"Farming Sim"}},
		{ID: 10, Name: "Duplicate Stardew"},
		{ID: 20, Name: "Celeste", Categories: []string{"Single-player"}},
	})
}

func TestNewStoreDedupKeepsFirstAndSorts(t *testing.T) {
	s := sampleStore()
	if s.Len() != 3 {
		t.Fatalf("len: want=3 got=%d", s.Len())
	}
	g, ok := s.Get(10)
	if !ok || g.Name != "Stardew Valley" {
		t.Fatalf("dedup kept wrong record: %+v", g)
	}
	all := s.All()
	if all[0].ID != 10 || all[1].ID != 20 || all[2].ID != 30 {
		t.Fatalf("order: %v %v %v", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestSearchMatchesFieldsCaseInsensitive(t *testing.T) {
	s := sampleStore()
	if got := s.Search("METROID", 0, nil); len(got) != 1 || got[0].ID != 30 {
		t.Fatalf("tag match: %v", got)
	}
	if got := s.Search("single", 0, nil); len(got) != 1 || got[0].ID != 20 {
		t.Fatalf("category match: %v", got)
	}
	if got := s.Search("", 2, nil); len(got) != 2 {
		t.Fatalf("limit: want=2 got=%d", len(got))
	}
	keepNone := func(domain.Game) bool { return false }
	if got := s.Search("", 0, keepNone); len(got) != 0 {
		t.Fatalf("keep filter ignored")
	}
}

func TestStatsCoverage(t *testing.T) {
	st := sampleStore().Stats()
	if st.Total != 3 {
		t.Fatalf("total: got=%d", st.Total)
	}
	want := map[string]int{"name": 3, "short_description": 1, "tags": 2, "genres": 2, "categories": 1}
	for _, fc := range st.Coverage {
		if fc.NonEmpty != want[fc.Field] {
			t.Fatalf("%s: want=%d got=%d", fc.Field, want[fc.Field], fc.NonEmpty)
		}
	}
}

func TestLoadJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.jsonl")
	body := `{"appid": 5, "name": "A", "tags": "Puzzle, Cozy", "pct_pos_total": -1}
{"appid": 6, "name": "B", "tags": ["Horror"], "price": 4.99}

{"name": "no id"}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(context.Background(), logger.Nop(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len: want=2 got=%d", s.Len())
	}
	a, _ := s.Get(5)
	if a.UserScore != nil || len(a.Tags) != 2 {
		t.Fatalf("record 5: %+v", a)
	}
}

func TestLoadJSONArrayEmptyIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	if err := os.WriteFile(path, []byte(`[{"name":"x"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), logger.Nop(), path); !errors.Is(err, ErrNoRecords) {
		t.Fatalf("want ErrNoRecords got=%v", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load(context.Background(), logger.Nop(), "games.xlsx"); err == nil {
		t.Fatalf("xlsx accepted")
	}
}

func TestLoadCSVThroughDuckDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.csv")
	body := "appid,name,genres,pct_pos_total,num_reviews_total,price\n" +
		"7,Terraria,\"Action, Adventure\",97,1000000,9.99\n" +
		"8,Nameless,,-1,,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(context.Background(), logger.Nop(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g, ok := s.Get(7)
	if !ok || len(g.Genres) != 2 || g.ScoreOrZero() != 97 || g.ReviewsOrZero() != 1000000 {
		t.Fatalf("terraria: %+v", g)
	}
	n, _ := s.Get(8)
	if n.UserScore != nil || n.NumReviewsTotal != nil || n.Price != nil {
		t.Fatalf("sentinels: %+v", n)
	}
}
