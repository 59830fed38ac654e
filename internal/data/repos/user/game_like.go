package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/dbctx"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type GameLikeRepo interface {
	Get(dbc dbctx.Context, userID string, gameID int64) (*types.GameLike, error)
	// ListByUserID returns likes newest first. starredOnly limits to starred rows.
	ListByUserID(dbc dbctx.Context, userID string, starredOnly bool) ([]*types.GameLike, error)
	// Like records the like, leaving an existing row's starred flag untouched.
	Like(dbc dbctx.Context, userID string, gameID int64) (*types.GameLike, error)
	SetStarred(dbc dbctx.Context, userID string, gameID int64, starred bool) (*types.GameLike, error)
	Delete(dbc dbctx.Context, userID string, gameID int64) (bool, error)
}

type gameLikeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameLikeRepo(db *gorm.DB, baseLog *logger.Logger) GameLikeRepo {
	return &gameLikeRepo{db: db, log: baseLog.With("repo", "GameLikeRepo")}
}

func (r *gameLikeRepo) Get(dbc dbctx.Context, userID string, gameID int64) (*types.GameLike, error) {
	var row types.GameLike
	if err := dbc.Pick(r.db).
		Where("user_id = ? AND game_id = ?", strings.TrimSpace(userID), gameID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *gameLikeRepo) ListByUserID(dbc dbctx.Context, userID string, starredOnly bool) ([]*types.GameLike, error) {
	var out []*types.GameLike
	q := dbc.Pick(r.db).Where("user_id = ?", strings.TrimSpace(userID))
	if starredOnly {
		q = q.Where("starred = ?", true)
	}
	if err := q.Order("updated_at DESC").Order("game_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gameLikeRepo) Like(dbc dbctx.Context, userID string, gameID int64) (*types.GameLike, error) {
	return r.upsert(dbc, userID, gameID, false, []string{"updated_at"})
}

func (r *gameLikeRepo) SetStarred(dbc dbctx.Context, userID string, gameID int64, starred bool) (*types.GameLike, error) {
	return r.upsert(dbc, userID, gameID, starred, []string{"starred", "updated_at"})
}

func (r *gameLikeRepo) upsert(dbc dbctx.Context, userID string, gameID int64, starred bool, updates []string) (*types.GameLike, error) {
	userID = strings.TrimSpace(userID)
	now := time.Now().UTC()
	row := &types.GameLike{
		ID:        uuid.New(),
		UserID:    userID,
		GameID:    gameID,
		Starred:   starred,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := dbc.Pick(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, gameID)
}

func (r *gameLikeRepo) Delete(dbc dbctx.Context, userID string, gameID int64) (bool, error) {
	res := dbc.Pick(r.db).
		Where("user_id = ? AND game_id = ?", strings.TrimSpace(userID), gameID).
		Delete(&types.GameLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
