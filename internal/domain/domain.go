package domain

import (
	"github.com/yungbote/gamerec-backend/internal/domain/games"
	"github.com/yungbote/gamerec-backend/internal/domain/user"
)

type (
	Game       = games.Game
	ScoredGame = games.ScoredGame

	Preferences     = user.Preferences
	UserPreferences = user.UserPreferences
	GameLike        = user.GameLike
)

var NewUserPreferences = user.NewUserPreferences

// Models lists every persisted table, in migration order.
func Models() []any {
	return []any{
		&user.UserPreferences{},
		&user.GameLike{},
	}
}
