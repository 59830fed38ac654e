// Package ranking turns a free-text query into an ordered list of scored
// catalog candidates.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/encoder"
	"github.com/yungbote/gamerec-backend/internal/index"
	"github.com/yungbote/gamerec-backend/internal/observability"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

var ErrInvalidK = errors.New("ranking: k must be at least 1")

type Config struct {
	SimilarityWeight  float64 `koanf:"similarity_weight"`
	QualityWeight     float64 `koanf:"quality_weight"`
	MinPool           int     `koanf:"min_pool"`
	PoolFactor        int     `koanf:"pool_factor"`
	PopularityFloor   int64   `koanf:"popularity_floor"`
	PopularityOffset  float64 `koanf:"popularity_offset"`
	PopularityDivisor float64 `koanf:"popularity_divisor"`
}

func DefaultConfig() Config {
	return Config{
		SimilarityWeight:  0.70,
		QualityWeight:     0.30,
		MinPool:           100,
		PoolFactor:        20,
		PopularityFloor:   20,
		PopularityOffset:  10,
		PopularityDivisor: 3,
	}
}

// PoolSize is the number of index hits fetched for a request of k results.
func (c Config) PoolSize(k int) int {
	pool := c.PoolFactor * k
	if pool < c.MinPool {
		pool = c.MinPool
	}
	return pool
}

// Popularity is zero below the review floor and a damped log of the review
// count above it.
func (c Config) Popularity(reviews int64) float64 {
	if reviews < c.PopularityFloor {
		return 0
	}
	return math.Log10(float64(reviews)+c.PopularityOffset) / c.PopularityDivisor
}

// Quality maps a present, positive 0..100 score to 0..1. Anything else is 0.
func Quality(score *float64) float64 {
	if score == nil || *score <= 0 {
		return 0
	}
	return *score / 100
}

type RowResolver interface {
	Lookup(row int) (int64, bool)
}

type GameSource interface {
	Get(id int64) (domain.Game, bool)
}

type SafetyChecker interface {
	IsUnsafe(g domain.Game) bool
}

type Options struct {
	ExcludeUnsafe bool
	// Exclude lists catalog ids that must not appear in the result.
	Exclude map[int64]struct{}
}

type Engine struct {
	log     *logger.Logger
	enc     encoder.Encoder
	index   index.Searcher
	rows    RowResolver
	games   GameSource
	safety  SafetyChecker
	cfg     Config
	metrics *observability.Metrics
}

type Deps struct {
	Log     *logger.Logger
	Encoder encoder.Encoder
	Index   index.Searcher
	Rows    RowResolver
	Games   GameSource
	Safety  SafetyChecker
	Metrics *observability.Metrics
}

func NewEngine(deps Deps, cfg Config) (*Engine, error) {
	if deps.Encoder == nil || deps.Index == nil || deps.Rows == nil || deps.Games == nil || deps.Safety == nil {
		return nil, errors.New("ranking: encoder, index, rows, games and safety are required")
	}
	if cfg.MinPool <= 0 || cfg.PoolFactor <= 0 || cfg.PopularityDivisor == 0 {
		return nil, fmt.Errorf("ranking: invalid config %+v", cfg)
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		log:     log.With("service", "RankingEngine"),
		enc:     deps.Encoder,
		index:   deps.Index,
		rows:    deps.Rows,
		games:   deps.Games,
		safety:  deps.Safety,
		cfg:     cfg,
		metrics: deps.Metrics,
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Rank encodes query and returns at most k candidates by composite score.
func (e *Engine) Rank(ctx context.Context, query string, k int, excludeUnsafe bool) ([]domain.ScoredGame, error) {
	return e.RankWith(ctx, query, k, Options{ExcludeUnsafe: excludeUnsafe})
}

func (e *Engine) RankWith(ctx context.Context, query string, k int, opts Options) ([]domain.ScoredGame, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	ctx, span := otel.Tracer("gamerec/ranking").Start(ctx, "ranking.Rank")
	defer span.End()
	span.SetAttributes(attribute.Int("rank.k", k), attribute.Bool("rank.exclude_unsafe", opts.ExcludeUnsafe))

	start := time.Now()
	vec, err := e.enc.Encode(ctx, query)
	e.metrics.ObserveRankStage("encode", time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return nil, fmt.Errorf("encode query: %w", err)
	}
	out, err := e.rank(ctx, vec, query, k, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rank failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("rank.returned", len(out)))
	return out, nil
}

// RankVector ranks against an already encoded query. label feeds the reason
// text only.
func (e *Engine) RankVector(ctx context.Context, vec []float32, label string, k int, opts Options) ([]domain.ScoredGame, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	return e.rank(ctx, vec, label, k, opts)
}

func (e *Engine) rank(ctx context.Context, vec []float32, label string, k int, opts Options) ([]domain.ScoredGame, error) {
	pool := e.cfg.PoolSize(k)
	start := time.Now()
	hits, err := e.index.Search(ctx, vec, pool)
	e.metrics.ObserveRankStage("search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	e.metrics.ObserveRankCandidates("retrieved", len(hits))

	start = time.Now()
	cands := make([]domain.ScoredGame, 0, len(hits))
	unmapped := 0
	for _, h := range hits {
		id, ok := e.rows.Lookup(h.Row)
		if !ok {
			unmapped++
			continue
		}
		g, ok := e.games.Get(id)
		if !ok {
			unmapped++
			continue
		}
		if _, skip := opts.Exclude[id]; skip {
			continue
		}
		if opts.ExcludeUnsafe && e.safety.IsUnsafe(g) {
			continue
		}
		cands = append(cands, domain.ScoredGame{Game: g, SimilarityScore: h.Score})
	}
	if unmapped > 0 {
		e.log.Warn("index rows without catalog record", "count", unmapped, "pool", pool)
	}
	e.metrics.ObserveRankCandidates("eligible", len(cands))
	if len(cands) == 0 {
		if len(hits) == 0 {
			e.metrics.IncRankEmpty("search")
		} else {
			e.metrics.IncRankEmpty("filter")
		}
		return []domain.ScoredGame{}, nil
	}

	e.score(cands, label)
	Sort(cands)
	if len(cands) > k {
		cands = cands[:k]
	}
	e.metrics.ObserveRankStage("score", time.Since(start))
	e.metrics.ObserveRankCandidates("returned", len(cands))
	e.log.Debug("ranked", "pool", pool, "hits", len(hits), "returned", len(cands))
	return cands, nil
}

func (e *Engine) score(cands []domain.ScoredGame, label string) {
	lo, hi := cands[0].SimilarityScore, cands[0].SimilarityScore
	for _, c := range cands[1:] {
		lo = math.Min(lo, c.SimilarityScore)
		hi = math.Max(hi, c.SimilarityScore)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i := range cands {
		c := &cands[i]
		c.FSNorm = (c.SimilarityScore - lo) / span
		c.QualityTerm = Quality(c.UserScore)
		c.PopularityTerm = e.cfg.Popularity(c.ReviewsOrZero())
		c.CompositeScore = e.cfg.SimilarityWeight*c.FSNorm + e.cfg.QualityWeight*(c.QualityTerm*c.PopularityTerm)
		c.Reason = Reason(label, c.Game)
	}
}

// Sort orders by composite desc, then similarity desc, then id asc.
func Sort(cands []domain.ScoredGame) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		return a.ID < b.ID
	})
}

// Reason is the short human-readable explanation shown next to a result.
func Reason(query string, g domain.Game) string {
	details := make([]string, 0, 3)
	if len(g.Genres) > 0 {
		details = append(details, "Genres: "+strings.Join(head(g.Genres, 3), ", "))
	}
	if len(g.Tags) > 0 {
		details = append(details, "Tags: "+strings.Join(head(g.Tags, 3), ", "))
	}
	if g.Price != nil {
		details = append(details, fmt.Sprintf("Price approx: %.2f", *g.Price))
	}
	out := strings.Join(details, " | ")
	if q := strings.TrimSpace(query); q != "" {
		out = strings.TrimSpace(fmt.Sprintf("Related to %q. %s", q, out))
	}
	return out
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
