package app

import (
	"github.com/yungbote/gamerec-backend/internal/catalog"
	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/preferences"
	"github.com/yungbote/gamerec-backend/internal/ranking"
	"github.com/yungbote/gamerec-backend/internal/safety"
	"github.com/yungbote/gamerec-backend/internal/services"
)

type Services struct {
	Preferences     services.PreferencesService
	Recommendations services.RecommendationService
	Likes           services.LikesService
	Library         services.LibraryService
}

func wireServices(
	log *logger.Logger,
	cfg config.PreferencesConfig,
	reposet Repos,
	store *catalog.Store,
	classifier *safety.Classifier,
	engine *ranking.Engine,
	filter *preferences.Filter,
) Services {
	log.Info("Wiring services...")
	prefs := services.NewPreferencesService(log, reposet.Preferences, services.DefaultPreferences(cfg.DefaultAvoidTags))
	return Services{
		Preferences: prefs,
		Recommendations: services.NewRecommendationService(log, engine, filter, prefs, store, services.RecommendationConfig{
			MaxK:            cfg.MaxK,
			OverfetchFactor: cfg.OverfetchFactor,
		}),
		Likes:   services.NewLikesService(log, reposet.GameLikes, store),
		Library: services.NewLibraryService(log, store, classifier),
	}
}
