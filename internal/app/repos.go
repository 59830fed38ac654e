package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/gamerec-backend/internal/data/repos"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type Repos struct {
	Preferences repos.PreferencesRepo
	GameLikes   repos.GameLikeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Preferences: repos.NewPreferencesRepo(db, log),
		GameLikes:   repos.NewGameLikeRepo(db, log),
	}
}
