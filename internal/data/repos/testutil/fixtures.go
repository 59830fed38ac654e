package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/gamerec-backend/internal/domain"
)

func SeedPreferences(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, p types.Preferences) *types.UserPreferences {
	tb.Helper()
	row := types.NewUserPreferences(userID, p)
	row.ID = uuid.New()
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed preferences: %v", err)
	}
	return row
}

func SeedLike(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, gameID int64, starred bool, at time.Time) *types.GameLike {
	tb.Helper()
	row := &types.GameLike{
		ID:        uuid.New(),
		UserID:    userID,
		GameID:    gameID,
		Starred:   starred,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed like: %v", err)
	}
	return row
}
