package preferences

import (
	"math"
	"testing"

	"github.com/yungbote/gamerec-backend/internal/domain"
)

func f(v float64) *float64 { return &v }
func n(v int64) *int64     { return &v }

func cand(id int64, composite float64, mut func(*domain.Game)) domain.ScoredGame {
	g := domain.Game{ID: id, Name: "G"}
	if mut != nil {
		mut(&g)
	}
	return domain.ScoredGame{Game: g, CompositeScore: composite, SimilarityScore: composite}
}

func ids(cands []domain.ScoredGame) []int64 {
	out := make([]int64, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}

func TestApplyHardExclusions(t *testing.T) {
	cands := []domain.ScoredGame{
		cand(1, 0.9, func(g *domain.Game) { g.Genres = []string{"Sports"} }),
		cand(2, 0.8, func(g *domain.Game) { g.Tags = []string{"horror"} }),
		cand(3, 0.7, func(g *domain.Game) { g.UserScore = f(40) }),
		cand(4, 0.6, func(g *domain.Game) { g.UserScore = f(80); g.NumReviewsTotal = n(3) }),
		cand(5, 0.5, func(g *domain.Game) { g.UserScore = f(80); g.NumReviewsTotal = n(50); g.Price = f(59.99) }),
		cand(6, 0.4, func(g *domain.Game) { g.UserScore = f(80); g.NumReviewsTotal = n(50); g.Price = f(9.99) }),
		cand(7, 0.3, func(g *domain.Game) { g.UserScore = f(80); g.NumReviewsTotal = n(50) }),
	}
	prefs := domain.Preferences{
		DislikedGenres: []string{" sports "},
		AvoidTags:      []string{"Horror"},
		MinUserScore:   50,
		MinNumReviews:  10,
		MaxPrice:       f(20),
	}
	got := ids(NewFilter(0, nil).Apply(cands, prefs))
	want := []int64{6, 7}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("want=%v got=%v", want, got)
	}
}

func TestAbsentValuesCountAsZero(t *testing.T) {
	cands := []domain.ScoredGame{cand(1, 0.5, nil)}
	if out := NewFilter(0, nil).Apply(cands, domain.Preferences{MinUserScore: 1}); len(out) != 0 {
		t.Fatalf("absent score must fail min_user_score=1")
	}
	if out := NewFilter(0, nil).Apply(cands, domain.Preferences{MinNumReviews: 1}); len(out) != 0 {
		t.Fatalf("absent reviews must fail min_num_reviews=1")
	}
	if out := NewFilter(0, nil).Apply(cands, domain.Preferences{MaxPrice: f(5)}); len(out) != 1 {
		t.Fatalf("absent price must never exclude")
	}
}

func TestLikedGenreBoost(t *testing.T) {
	cands := []domain.ScoredGame{
		cand(1, 0.62, nil),
		cand(2, 0.60, func(g *domain.Game) { g.Genres = []string{"Indie", "RPG"} }),
	}
	out := NewFilter(0, nil).ApplyAndTruncate(cands, domain.Preferences{LikedGenres: []string{"rpg"}}, 2)
	if out[0].ID != 2 || !out[0].Boosted {
		t.Fatalf("boosted candidate should lead: %+v", out)
	}
	if math.Abs(out[0].CompositeScore-0.65) > 1e-12 {
		t.Fatalf("boost: want=0.65 got=%v", out[0].CompositeScore)
	}
	if cands[1].CompositeScore != 0.60 {
		t.Fatalf("input mutated")
	}
}

func TestBoostCannotOvertakeWideGap(t *testing.T) {
	cands := []domain.ScoredGame{
		cand(1, 0.80, nil),
		cand(2, 0.74, func(g *domain.Game) { g.Genres = []string{"Puzzle"} }),
	}
	out := NewFilter(0, nil).ApplyAndTruncate(cands, domain.Preferences{LikedGenres: []string{"Puzzle"}}, 2)
	if out[0].ID != 1 {
		t.Fatalf("gap > boost reordered: %v", ids(out))
	}
}

func TestApplyAndTruncate(t *testing.T) {
	cands := []domain.ScoredGame{cand(1, 0.9, nil), cand(2, 0.8, nil), cand(3, 0.7, nil)}
	if out := NewFilter(0, nil).ApplyAndTruncate(cands, domain.Preferences{}, 2); len(out) != 2 {
		t.Fatalf("len: want=2 got=%d", len(out))
	}
	empty := NewFilter(0, nil).ApplyAndTruncate(cands, domain.Preferences{MinUserScore: 99}, 2)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("want empty non-nil got=%v", empty)
	}
}
