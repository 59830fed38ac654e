// Package preferences applies a user's explicit profile to ranked candidates.
package preferences

import (
	"strings"

	"github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/observability"
	"github.com/yungbote/gamerec-backend/internal/ranking"
)

const DefaultLikedBoost = 0.05

type Filter struct {
	boost   float64
	metrics *observability.Metrics
}

// NewFilter builds a filter adding boost to candidates with a liked genre. A
// non-positive boost falls back to DefaultLikedBoost.
func NewFilter(boost float64, metrics *observability.Metrics) *Filter {
	if boost <= 0 {
		boost = DefaultLikedBoost
	}
	return &Filter{boost: boost, metrics: metrics}
}

// Apply drops candidates the profile excludes and boosts liked genres. The
// input slice is not modified and the result keeps the input order.
func (f *Filter) Apply(cands []domain.ScoredGame, prefs domain.Preferences) []domain.ScoredGame {
	p := compile(prefs)
	out := make([]domain.ScoredGame, 0, len(cands))
	for _, c := range cands {
		if p.excludes(c.Game) {
			continue
		}
		if p.likes(c.Game) {
			c.CompositeScore += f.boost
			c.Boosted = true
		}
		out = append(out, c)
	}
	f.metrics.ObservePreferenceDrops(len(cands) - len(out))
	return out
}

// ApplyAndTruncate applies the profile, re-sorts by the boosted score and
// keeps the first k.
func (f *Filter) ApplyAndTruncate(cands []domain.ScoredGame, prefs domain.Preferences, k int) []domain.ScoredGame {
	out := f.Apply(cands, prefs)
	ranking.Sort(out)
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

type compiled struct {
	liked     map[string]struct{}
	disliked  map[string]struct{}
	avoidTags map[string]struct{}
	minScore  float64
	minRevs   int64
	maxPrice  *float64
}

func compile(p domain.Preferences) compiled {
	return compiled{
		liked:     fold(p.LikedGenres),
		disliked:  fold(p.DislikedGenres),
		avoidTags: fold(p.AvoidTags),
		minScore:  p.MinUserScore,
		minRevs:   p.MinNumReviews,
		maxPrice:  p.MaxPrice,
	}
}

func (p compiled) excludes(g domain.Game) bool {
	if anyIn(g.Genres, p.disliked) || anyIn(g.Tags, p.avoidTags) {
		return true
	}
	if g.ScoreOrZero() < p.minScore {
		return true
	}
	if g.ReviewsOrZero() < p.minRevs {
		return true
	}
	return g.Price != nil && p.maxPrice != nil && *g.Price > *p.maxPrice
}

func (p compiled) likes(g domain.Game) bool {
	return anyIn(g.Genres, p.liked)
}

func fold(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if k := key(v); k != "" {
			out[k] = struct{}{}
		}
	}
	return out
}

func anyIn(values []string, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for _, v := range values {
		if _, ok := set[key(v)]; ok {
			return true
		}
	}
	return false
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
