package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/catalog"
	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/data/db"
	"github.com/yungbote/gamerec-backend/internal/encoder"
	apphttp "github.com/yungbote/gamerec-backend/internal/http"
	"github.com/yungbote/gamerec-backend/internal/index"
	"github.com/yungbote/gamerec-backend/internal/observability"
	"github.com/yungbote/gamerec-backend/internal/platform/envutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/preferences"
	"github.com/yungbote/gamerec-backend/internal/ranking"
	"github.com/yungbote/gamerec-backend/internal/safety"
)

const serviceName = "gamerec"

type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Catalog  *catalog.Store
	Loaded   *index.Loaded
	Index    index.Searcher
	Encoder  encoder.Encoder
	Safety   *safety.Classifier
	Engine   *ranking.Engine
	Repos    Repos
	Services Services
	Router   *gin.Engine
	Server   *apphttp.Server

	indexBackend string
	clients      Clients
	shutdownOTel func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	return logger.New(envutil.String("LOG_MODE", "development"))
}

// New loads config from the environment and builds the HTTP app.
func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, log, *cfg)
}

// NewWithConfig builds the recommender core plus handlers, router and server.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg config.Config) (*App, error) {
	a, err := NewCore(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	handlerset := wireHandlers(log, a.Services, a)
	identity := wireMiddleware(log, cfg.Auth)
	routerCfg := apphttp.RouterConfig{
		Log:                   log,
		Metrics:               a.Metrics,
		CORSOrigins:           cfg.HTTP.CORSOrigins,
		MaxBodyBytes:          cfg.HTTP.MaxBodyBytes,
		ServiceName:           serviceName,
		IdentityMiddleware:    identity,
		HealthHandler:         handlerset.Health,
		RecommendationHandler: handlerset.Recommendations,
		LibraryHandler:        handlerset.Library,
		PreferencesHandler:    handlerset.Preferences,
		LikesHandler:          handlerset.Likes,
	}
	a.Server = apphttp.NewServer(apphttp.ServerConfig{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, routerCfg)
	a.Router = a.Server.Engine
	return a, nil
}

// NewCore loads everything a recommendation needs without any HTTP surface.
// Any failure here is fatal to the caller; partially opened resources are
// released before returning.
func NewCore(ctx context.Context, log *logger.Logger, cfg config.Config) (_ *App, err error) {
	a := &App{Log: log, Cfg: cfg, Metrics: observability.NewMetrics()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.shutdownOTel = observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: serviceName,
		Environment: cfg.Env,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})

	if a.DB, err = db.Open(log, db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = db.AutoMigrateAll(a.DB.DB()); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	started := time.Now()
	if a.Catalog, err = catalog.Load(ctx, log, cfg.Catalog.Path); err != nil {
		return nil, err
	}
	if a.Loaded, err = index.Open(cfg.Index.Dir); err != nil {
		return nil, err
	}
	log.Info("Artifacts loaded",
		"dir", cfg.Index.Dir,
		"rows", a.Loaded.IDs.Len(),
		"dims", a.Loaded.Flat.Dims(),
		"model", a.Loaded.Model,
		"took", time.Since(started).String(),
	)
	if missing := countMissing(a.Loaded.IDs, a.Catalog); missing > 0 {
		log.Warn("Index rows without a catalog record will be skipped", "rows", missing)
	}

	if a.clients, err = wireClients(ctx, log, cfg.Cache); err != nil {
		return nil, err
	}
	if a.Encoder, err = wireEncoder(log, cfg.Encoder, a.Loaded.Model, a.Loaded.Flat.Dims(), a.clients.QueryCache(cfg.Cache.TTL), a.Metrics); err != nil {
		return nil, err
	}
	if a.Index, a.indexBackend, err = resolveIndex(ctx, log, cfg.Index, a.Loaded, a.Metrics); err != nil {
		return nil, err
	}

	a.Safety = safety.New(cfg.Safety.Denylist)
	a.Engine, err = ranking.NewEngine(ranking.Deps{
		Log:     log,
		Encoder: a.Encoder,
		Index:   a.Index,
		Rows:    a.Loaded.IDs,
		Games:   a.Catalog,
		Safety:  a.Safety,
		Metrics: a.Metrics,
	}, ranking.Config(cfg.Ranking))
	if err != nil {
		return nil, err
	}
	filter := preferences.NewFilter(cfg.Preferences.LikedBoost, a.Metrics)

	a.Repos = wireRepos(a.DB.DB(), log)
	a.Services = wireServices(log, cfg.Preferences, a.Repos, a.Catalog, a.Safety, a.Engine, filter)

	a.Metrics.SetCorpusSize(a.Catalog.Len(), a.Loaded.IDs.Len())
	return a, nil
}

func countMissing(ids *index.IDMap, store *catalog.Store) int {
	missing := 0
	for row := 0; row < ids.Len(); row++ {
		id, _ := ids.Lookup(row)
		if _, ok := store.Get(id); !ok {
			missing++
		}
	}
	return missing
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	shutdown := a.Cfg.HTTP.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	a.Log.Info("Listening", "addr", a.Cfg.HTTP.Addr, "index_backend", a.indexBackend)
	return a.Server.Run(ctx, shutdown)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOTel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.shutdownOTel = nil
	}
	a.clients.Close()
	a.clients = Clients{}
	if a.DB != nil {
		_ = a.DB.Close()
		a.DB = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func (a *App) CatalogSize() int {
	if a.Catalog == nil {
		return 0
	}
	return a.Catalog.Len()
}

func (a *App) IndexRows() int {
	if a.Index == nil {
		return 0
	}
	return a.Index.Len()
}

func (a *App) IndexBackend() string { return a.indexBackend }

func (a *App) EncoderModel() string {
	if a.Encoder == nil {
		return ""
	}
	return a.Encoder.Model()
}
