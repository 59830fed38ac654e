// Package catalog is the read-only table of game records.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/yungbote/gamerec-backend/internal/domain"
)

var (
	ErrNotFound  = errors.New("catalog: game not found")
	ErrNoRecords = errors.New("catalog: no usable records")
)

// Store is immutable after NewStore and safe for concurrent reads. Callers
// must not modify returned records' slices.
type Store struct {
	games []domain.Game
	byID  map[int64]int
}

// NewStore keeps the first record seen for each id and orders records by id.
func NewStore(games []domain.Game) *Store {
	seen := make(map[int64]struct{}, len(games))
	kept := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if g.ID <= 0 {
			continue
		}
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		kept = append(kept, g)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	s := &Store{games: kept, byID: make(map[int64]int, len(kept))}
	for i, g := range kept {
		s.byID[g.ID] = i
	}
	return s
}

func (s *Store) Len() int { return len(s.games) }

func (s *Store) Get(id int64) (domain.Game, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Game{}, false
	}
	return s.games[i], true
}

// All returns records in id order.
func (s *Store) All() []domain.Game { return s.games }

// Search is a case-insensitive substring match over name, genres, tags and
// categories, in id order. keep, when non-nil, filters further. An empty
// query matches everything.
func (s *Store) Search(query string, limit int, keep func(domain.Game) bool) []domain.Game {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Game, 0)
	for _, g := range s.games {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q != "" && !matches(g, q) {
			continue
		}
		if keep != nil && !keep(g) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func matches(g domain.Game, q string) bool {
	if strings.Contains(strings.ToLower(g.Name), q) {
		return true
	}
	for _, group := range [][]string{g.Genres, g.Tags, g.Categories} {
		for _, v := range group {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	return false
}

type FieldCoverage struct {
	Field    string  `json:"field"`
	NonEmpty int     `json:"non_empty"`
	Ratio    float64 `json:"ratio"`
}

type Stats struct {
	Total    int             `json:"total"`
	Coverage []FieldCoverage `json:"coverage"`
}

func (s *Store) Stats() Stats {
	fields := []struct {
		name string
		has  func(domain.Game) bool
	}{
		{"name", func(g domain.Game) bool { return g.Name != "" }},
		{"short_description", func(g domain.Game) bool { return g.ShortDescription != "" }},
		{"tags", func(g domain.Game) bool { return len(g.Tags) > 0 }},
		{"genres", func(g domain.Game) bool { return len(g.Genres) > 0 }},
		{"categories", func(g domain.Game) bool { return len(g.Categories) > 0 }},
	}
	st := Stats{Total: len(s.games), Coverage: make([]FieldCoverage, 0, len(fields))}
	for _, f := range fields {
		n := 0
		for _, g := range s.games {
			if f.has(g) {
				n++
			}
		}
		fc := FieldCoverage{Field: f.name, NonEmpty: n}
		if st.Total > 0 {
			fc.Ratio = float64(n) / float64(st.Total)
		}
		st.Coverage = append(st.Coverage, fc)
	}
	return st
}
