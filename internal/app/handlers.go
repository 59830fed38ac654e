package app

import (
	"github.com/yungbote/gamerec-backend/internal/config"
	httpH "github.com/yungbote/gamerec-backend/internal/http/handlers"
	httpMW "github.com/yungbote/gamerec-backend/internal/http/middleware"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type Handlers struct {
	Health          *httpH.HealthHandler
	Recommendations *httpH.RecommendationHandler
	Library         *httpH.LibraryHandler
	Preferences     *httpH.PreferencesHandler
	Likes           *httpH.LikesHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, ready httpH.ReadinessSource) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:          httpH.NewHealthHandler(ready),
		Recommendations: httpH.NewRecommendationHandler(log, serviceset.Recommendations),
		Library:         httpH.NewLibraryHandler(log, serviceset.Library),
		Preferences:     httpH.NewPreferencesHandler(log, serviceset.Preferences),
		Likes:           httpH.NewLikesHandler(log, serviceset.Likes),
	}
}

func wireMiddleware(log *logger.Logger, cfg config.AuthConfig) *httpMW.IdentityMiddleware {
	log.Info("Wiring middleware...")
	return httpMW.NewIdentityMiddleware(log, httpMW.IdentityConfig{
		JWTSecret:   cfg.JWTSecret,
		UserHeader:  cfg.UserHeader,
		DefaultUser: cfg.DefaultUser,
	})
}
