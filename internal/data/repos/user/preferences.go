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

type PreferencesRepo interface {
	GetByUserID(dbc dbctx.Context, userID string) (*types.UserPreferences, error)
	Upsert(dbc dbctx.Context, row *types.UserPreferences) error
}

type preferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return &preferencesRepo{db: db, log: baseLog.With("repo", "PreferencesRepo")}
}

// GetByUserID returns (nil, nil) when the user has no stored profile.
func (r *preferencesRepo) GetByUserID(dbc dbctx.Context, userID string) (*types.UserPreferences, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	var row types.UserPreferences
	if err := dbc.Pick(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *preferencesRepo) Upsert(dbc dbctx.Context, row *types.UserPreferences) error {
	if row == nil || strings.TrimSpace(row.UserID) == "" {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.Pick(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"liked_genres",
				"disliked_genres",
				"avoid_tags",
				"min_user_score",
				"min_num_reviews",
				"max_price",
				"avoid_nsfw",
				"updated_at",
			}),
		}).
		Create(row).Error
}
