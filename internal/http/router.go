package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/gamerec-backend/internal/http/handlers"
	httpMW "github.com/yungbote/gamerec-backend/internal/http/middleware"
	"github.com/yungbote/gamerec-backend/internal/observability"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	CORSOrigins  []string
	MaxBodyBytes int64
	ServiceName  string

	IdentityMiddleware *httpMW.IdentityMiddleware

	HealthHandler         *httpH.HealthHandler
	RecommendationHandler *httpH.RecommendationHandler
	LibraryHandler        *httpH.LibraryHandler
	PreferencesHandler    *httpH.PreferencesHandler
	LikesHandler          *httpH.LikesHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "gamerec"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.RequestContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.HTTPMetrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.BodyLimit(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.IdentityMiddleware != nil {
		api.Use(cfg.IdentityMiddleware.ResolveUser())
	}
	{
		// Recommendations
		if cfg.RecommendationHandler != nil {
			api.POST("/recommendations", cfg.RecommendationHandler.Recommend)
			api.GET("/games/:id/similar", cfg.RecommendationHandler.Similar)
		}

		// Catalog
		if cfg.LibraryHandler != nil {
			api.GET("/games", cfg.LibraryHandler.Search)
			api.GET("/games/:id", cfg.LibraryHandler.GetGame)
			api.GET("/catalog/stats", cfg.LibraryHandler.Stats)
		}

		// Preferences
		if cfg.PreferencesHandler != nil {
			api.GET("/preferences", cfg.PreferencesHandler.Get)
			api.PUT("/preferences", cfg.PreferencesHandler.Put)
		}

		// Likes
		if cfg.LikesHandler != nil {
			api.GET("/likes", cfg.LikesHandler.List)
			api.POST("/likes/:id", cfg.LikesHandler.Like)
			api.DELETE("/likes/:id", cfg.LikesHandler.Unlike)
			api.POST("/likes/:id/star", cfg.LikesHandler.ToggleStar)
		}
	}
	return r
}
