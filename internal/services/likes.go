package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/gamerec-backend/internal/data/repos"
	types "github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/apierr"
	"github.com/yungbote/gamerec-backend/internal/platform/dbctx"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type LikedGame struct {
	types.Game
	Starred bool      `json:"starred"`
	LikedAt time.Time `json:"liked_at"`
}

type LikesService interface {
	Like(ctx context.Context, userID string, gameID int64) (*LikedGame, error)
	// Unlike removes the like and its star. Unliking an unliked game is a no-op.
	Unlike(ctx context.Context, userID string, gameID int64) error
	// ToggleStar flips the star; starring an unliked game also likes it.
	ToggleStar(ctx context.Context, userID string, gameID int64) (*LikedGame, error)
	List(ctx context.Context, userID string, starredOnly bool) ([]LikedGame, error)
}

type likesService struct {
	log   *logger.Logger
	repo  repos.GameLikeRepo
	games GameGetter
}

func NewLikesService(log *logger.Logger, repo repos.GameLikeRepo, games GameGetter) LikesService {
	return &likesService{log: log.With("service", "LikesService"), repo: repo, games: games}
}

func (s *likesService) game(gameID int64) (types.Game, error) {
	g, ok := s.games.Get(gameID)
	if !ok {
		return types.Game{}, apierr.NotFound("game_not_found", fmt.Errorf("game %d not found", gameID))
	}
	return g, nil
}

func (s *likesService) Like(ctx context.Context, userID string, gameID int64) (*LikedGame, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUser
	}
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Like(dbctx.Context{Ctx: ctx}, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("like game: %w", err)
	}
	return &LikedGame{Game: g, Starred: row.Starred, LikedAt: row.CreatedAt}, nil
}

func (s *likesService) Unlike(ctx context.Context, userID string, gameID int64) error {
	if strings.TrimSpace(userID) == "" {
		return errMissingUser
	}
	if _, err := s.game(gameID); err != nil {
		return err
	}
	if _, err := s.repo.Delete(dbctx.Context{Ctx: ctx}, userID, gameID); err != nil {
		return fmt.Errorf("unlike game: %w", err)
	}
	return nil
}

func (s *likesService) ToggleStar(ctx context.Context, userID string, gameID int64) (*LikedGame, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUser
	}
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	cur, err := s.repo.Get(dbc, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("load like: %w", err)
	}
	starred := cur == nil || !cur.Starred
	row, err := s.repo.SetStarred(dbc, userID, gameID, starred)
	if err != nil {
		return nil, fmt.Errorf("star game: %w", err)
	}
	return &LikedGame{Game: g, Starred: row.Starred, LikedAt: row.CreatedAt}, nil
}

func (s *likesService) List(ctx context.Context, userID string, starredOnly bool) ([]LikedGame, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUser
	}
	rows, err := s.repo.ListByUserID(dbctx.Context{Ctx: ctx}, userID, starredOnly)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	out := make([]LikedGame, 0, len(rows))
	for _, row := range rows {
		g, ok := s.games.Get(row.GameID)
		if !ok {
			// Catalog reloads can drop ids that users liked earlier.
			s.log.Warn("liked game missing from catalog", "user_id", userID, "game_id", row.GameID)
			continue
		}
		out = append(out, LikedGame{Game: g, Starred: row.Starred, LikedAt: row.CreatedAt})
	}
	return out, nil
}
