// Package config loads service configuration from defaults, an optional YAML
// file and GAMEREC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	IndexBackendFlat   = "flat"
	IndexBackendQdrant = "qdrant"

	EncoderBackendHashing = "hashing"
	EncoderBackendOAIHTTP = "oai_http"

	CacheBackendNone   = "none"
	CacheBackendRedis  = "redis"
	CacheBackendBadger = "badger"
)

type Config struct {
	Env         string            `koanf:"env"`
	HTTP        HTTPConfig        `koanf:"http"`
	Auth        AuthConfig        `koanf:"auth"`
	Database    DatabaseConfig    `koanf:"database"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Index       IndexConfig       `koanf:"index"`
	Encoder     EncoderConfig     `koanf:"encoder"`
	Cache       CacheConfig       `koanf:"cache"`
	Ranking     RankingConfig     `koanf:"ranking"`
	Preferences PreferencesConfig `koanf:"preferences"`
	Safety      SafetyConfig      `koanf:"safety"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type AuthConfig struct {
	// JWTSecret enables bearer-token identity (HS256, sub claim) when set.
	JWTSecret   string `koanf:"jwt_secret"`
	UserHeader  string `koanf:"user_header"`
	DefaultUser string `koanf:"default_user"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

type CatalogConfig struct {
	Path string `koanf:"path"`
}

type IndexConfig struct {
	Backend string       `koanf:"backend"`
	Dir     string       `koanf:"dir"`
	Qdrant  QdrantConfig `koanf:"qdrant"`
}

type QdrantConfig struct {
	URL        string        `koanf:"url"`
	Collection string        `koanf:"collection"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	BatchSize  int           `koanf:"batch_size"`
}

type EncoderConfig struct {
	Backend         string        `koanf:"backend"`
	Model           string        `koanf:"model"`
	Dims            int           `koanf:"dims"`
	BaseURL         string        `koanf:"base_url"`
	EmbeddingsPath  string        `koanf:"embeddings_path"`
	APIKey          string        `koanf:"api_key"`
	Timeout         time.Duration `koanf:"timeout"`
	BatchSize       int           `koanf:"batch_size"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

type CacheConfig struct {
	Backend       string        `koanf:"backend"`
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	BadgerDir     string        `koanf:"badger_dir"`
}

type RankingConfig struct {
	SimilarityWeight  float64 `koanf:"similarity_weight"`
	QualityWeight     float64 `koanf:"quality_weight"`
	MinPool           int     `koanf:"min_pool"`
	PoolFactor        int     `koanf:"pool_factor"`
	PopularityFloor   int64   `koanf:"popularity_floor"`
	PopularityOffset  float64 `koanf:"popularity_offset"`
	PopularityDivisor float64 `koanf:"popularity_divisor"`
}

type PreferencesConfig struct {
	LikedBoost       float64  `koanf:"liked_boost"`
	OverfetchFactor  int      `koanf:"overfetch_factor"`
	MaxK             int      `koanf:"max_k"`
	DefaultAvoidTags []string `koanf:"default_avoid_tags"`
}

type SafetyConfig struct {
	Denylist []string `koanf:"denylist"`
}

type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		add("http.addr is required")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		add("http.max_body_bytes must be positive")
	}
	if strings.TrimSpace(c.Auth.DefaultUser) == "" {
		add("auth.default_user is required")
	}

	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			add("database.dsn is required for postgres")
		}
	default:
		add("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	if strings.TrimSpace(c.Catalog.Path) == "" {
		add("catalog.path is required")
	}
	if strings.TrimSpace(c.Index.Dir) == "" {
		add("index.dir is required")
	}
	switch c.Index.Backend {
	case IndexBackendFlat:
	case IndexBackendQdrant:
		if err := validateURL("index.qdrant.url", c.Index.Qdrant.URL); err != nil {
			errs = append(errs, err)
		}
		if strings.TrimSpace(c.Index.Qdrant.Collection) == "" {
			add("index.qdrant.collection is required")
		}
	default:
		add("index.backend must be %s or %s, got %q", IndexBackendFlat, IndexBackendQdrant, c.Index.Backend)
	}

	switch c.Encoder.Backend {
	case EncoderBackendHashing:
		if c.Encoder.Dims <= 0 {
			add("encoder.dims must be positive for the hashing encoder")
		}
	case EncoderBackendOAIHTTP:
		if err := validateURL("encoder.base_url", c.Encoder.BaseURL); err != nil {
			errs = append(errs, err)
		}
		if strings.TrimSpace(c.Encoder.Model) == "" {
			add("encoder.model is required for oai_http")
		}
	default:
		add("encoder.backend must be %s or %s, got %q", EncoderBackendHashing, EncoderBackendOAIHTTP, c.Encoder.Backend)
	}
	if c.Encoder.BatchSize <= 0 {
		add("encoder.batch_size must be positive")
	}

	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendBadger:
	case CacheBackendRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			add("cache.redis_addr is required for the redis cache")
		}
	default:
		add("cache.backend must be none, redis or badger, got %q", c.Cache.Backend)
	}

	r := c.Ranking
	if r.SimilarityWeight < 0 || r.QualityWeight < 0 || r.SimilarityWeight+r.QualityWeight == 0 {
		add("ranking weights must be non-negative and not both zero")
	}
	if r.MinPool <= 0 || r.PoolFactor <= 0 {
		add("ranking.min_pool and ranking.pool_factor must be positive")
	}
	if r.PopularityFloor < 0 {
		add("ranking.popularity_floor must not be negative")
	}
	if r.PopularityDivisor <= 0 {
		add("ranking.popularity_divisor must be positive")
	}

	p := c.Preferences
	if p.LikedBoost < 0 {
		add("preferences.liked_boost must not be negative")
	}
	if p.OverfetchFactor < 1 {
		add("preferences.overfetch_factor must be at least 1")
	}
	if p.MaxK < 1 {
		add("preferences.max_k must be at least 1")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		add("telemetry.sample_ratio must be within [0,1]")
	}
	return errors.Join(errs...)
}

func validateURL(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
