package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/gamerec-backend/internal/data/repos/user"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type PreferencesRepo = user.PreferencesRepo
type GameLikeRepo = user.GameLikeRepo

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return user.NewPreferencesRepo(db, baseLog)
}

func NewGameLikeRepo(db *gorm.DB, baseLog *logger.Logger) GameLikeRepo {
	return user.NewGameLikeRepo(db, baseLog)
}
