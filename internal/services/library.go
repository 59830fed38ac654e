package services

import (
	"fmt"

	"github.com/yungbote/gamerec-backend/internal/catalog"
	types "github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/apierr"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

type UnsafeChecker interface {
	IsUnsafe(g types.Game) bool
}

type LibraryService interface {
	// Search matches q against name, genres, tags and categories. limit 0
	// means DefaultSearchLimit.
	Search(q string, limit int, excludeUnsafe bool) ([]types.Game, error)
	Get(id int64) (types.Game, error)
	Stats() catalog.Stats
}

type libraryService struct {
	log    *logger.Logger
	store  *catalog.Store
	safety UnsafeChecker
}

func NewLibraryService(log *logger.Logger, store *catalog.Store, safety UnsafeChecker) LibraryService {
	return &libraryService{log: log.With("service", "LibraryService"), store: store, safety: safety}
}

func (s *libraryService) Search(q string, limit int, excludeUnsafe bool) ([]types.Game, error) {
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, apierr.BadRequest("invalid_limit", fmt.Errorf("limit must be between 1 and %d", MaxSearchLimit))
	}
	var keep func(types.Game) bool
	if excludeUnsafe {
		keep = func(g types.Game) bool { return !s.safety.IsUnsafe(g) }
	}
	return s.store.Search(q, limit, keep), nil
}

func (s *libraryService) Get(id int64) (types.Game, error) {
	g, ok := s.store.Get(id)
	if !ok {
		return types.Game{}, apierr.NotFound("game_not_found", fmt.Errorf("game %d not found", id))
	}
	return g, nil
}

func (s *libraryService) Stats() catalog.Stats { return s.store.Stats() }
