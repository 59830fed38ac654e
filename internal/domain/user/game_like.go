package user

import (
	"time"

	"github.com/google/uuid"
)

// GameLike marks a game a user liked. Starred implies liked.
type GameLike struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  string    `gorm:"not null;uniqueIndex:idx_game_likes_user_game" json:"user_id"`
	GameID  int64     `gorm:"not null;uniqueIndex:idx_game_likes_user_game" json:"game_id"`
	Starred bool      `gorm:"not null;default:false" json:"starred"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (GameLike) TableName() string { return "game_likes" }
