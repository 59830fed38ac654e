package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	types "github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/apierr"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/ranking"
)

type Ranker interface {
	RankWith(ctx context.Context, query string, k int, opts ranking.Options) ([]types.ScoredGame, error)
}

type PreferenceApplier interface {
	ApplyAndTruncate(cands []types.ScoredGame, prefs types.Preferences, k int) []types.ScoredGame
}

type GameGetter interface {
	Get(id int64) (types.Game, bool)
}

type RecommendRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	// ExcludeUnsafe overrides the profile's avoid_nsfw when set.
	ExcludeUnsafe *bool `json:"exclude_unsafe"`
}

type RecommendResult struct {
	Results       []types.ScoredGame `json:"results"`
	Count         int                `json:"count"`
	ExcludeUnsafe bool               `json:"exclude_unsafe"`
}

type RecommendationService interface {
	Recommend(ctx context.Context, userID string, req RecommendRequest) (*RecommendResult, error)
	// Similar ranks games close to gameID's own description. The source game
	// never appears in its own result.
	Similar(ctx context.Context, userID string, gameID int64, k int) (*RecommendResult, error)
}

type RecommendationConfig struct {
	MaxK            int
	OverfetchFactor int
}

type recommendationService struct {
	log    *logger.Logger
	ranker Ranker
	filter PreferenceApplier
	prefs  PreferencesService
	games  GameGetter
	cfg    RecommendationConfig
}

func NewRecommendationService(log *logger.Logger, ranker Ranker, filter PreferenceApplier, prefs PreferencesService, games GameGetter, cfg RecommendationConfig) RecommendationService {
	if cfg.MaxK < 1 {
		cfg.MaxK = 50
	}
	if cfg.OverfetchFactor < 1 {
		cfg.OverfetchFactor = 3
	}
	return &recommendationService{
		log:    log.With("service", "RecommendationService"),
		ranker: ranker,
		filter: filter,
		prefs:  prefs,
		games:  games,
		cfg:    cfg,
	}
}

func (s *recommendationService) checkK(k int) error {
	if k < 1 || k > s.cfg.MaxK {
		return apierr.BadRequest("invalid_k", fmt.Errorf("k must be between 1 and %d", s.cfg.MaxK))
	}
	return nil
}

func (s *recommendationService) Recommend(ctx context.Context, userID string, req RecommendRequest) (*RecommendResult, error) {
	if err := s.checkK(req.K); err != nil {
		return nil, err
	}
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	excludeUnsafe := prefs.AvoidNSFW
	if req.ExcludeUnsafe != nil {
		excludeUnsafe = *req.ExcludeUnsafe
	}
	return s.run(ctx, strings.TrimSpace(req.Query), req.K, prefs, ranking.Options{ExcludeUnsafe: excludeUnsafe})
}

func (s *recommendationService) Similar(ctx context.Context, userID string, gameID int64, k int) (*RecommendResult, error) {
	if err := s.checkK(k); err != nil {
		return nil, err
	}
	g, ok := s.games.Get(gameID)
	if !ok {
		return nil, apierr.NotFound("game_not_found", fmt.Errorf("game %d not found", gameID))
	}
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(g.Name + ". " + g.ShortDescription)
	return s.run(ctx, query, k, prefs, ranking.Options{
		ExcludeUnsafe: prefs.AvoidNSFW,
		Exclude:       map[int64]struct{}{gameID: {}},
	})
}

func (s *recommendationService) run(ctx context.Context, query string, k int, prefs types.Preferences, opts ranking.Options) (*RecommendResult, error) {
	cands, err := s.ranker.RankWith(ctx, query, k*s.cfg.OverfetchFactor, opts)
	if err != nil {
		if errors.Is(err, ranking.ErrInvalidK) {
			return nil, apierr.BadRequest("invalid_k", err)
		}
		return nil, fmt.Errorf("rank: %w", err)
	}
	out := s.filter.ApplyAndTruncate(cands, prefs, k)
	s.log.Debug("recommendation served", "k", k, "ranked", len(cands), "returned", len(out), "exclude_unsafe", opts.ExcludeUnsafe)
	return &RecommendResult{Results: out, Count: len(out), ExcludeUnsafe: opts.ExcludeUnsafe}, nil
}
