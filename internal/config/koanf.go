package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yml",
	"config.yaml",
	"/etc/gamerec/config.yml",
}

const (
	ConfigPathEnvVar = "GAMEREC_CONFIG_PATH"
	EnvPrefix        = "GAMEREC_"
)

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"http.cors_origins",
	"preferences.default_avoid_tags",
	"safety.denylist",
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			UserHeader:  "X-User-Id",
			DefaultUser: "local",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "data/gamerec.db",
		},
		Catalog: CatalogConfig{
			Path: "data/games.parquet",
		},
		Index: IndexConfig{
			Backend: IndexBackendFlat,
			Dir:     "artifacts",
			Qdrant: QdrantConfig{
				Collection: "games",
				Timeout:    10 * time.Second,
				BatchSize:  256,
			},
		},
		Encoder: EncoderConfig{
			Backend:         EncoderBackendHashing,
			Dims:            256,
			EmbeddingsPath:  "/v1/embeddings",
			Timeout:         30 * time.Second,
			BatchSize:       64,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheBackendNone,
			TTL:     24 * time.Hour,
		},
		Ranking: RankingConfig{
			SimilarityWeight:  0.70,
			QualityWeight:     0.30,
			MinPool:           100,
			PoolFactor:        20,
			PopularityFloor:   20,
			PopularityOffset:  10,
			PopularityDivisor: 3,
		},
		Preferences: PreferencesConfig{
			LikedBoost:       0.05,
			OverfetchFactor:  3,
			MaxK:             50,
			DefaultAvoidTags: []string{"Horror", "Gore"},
		},
		Telemetry: TelemetryConfig{
			SampleRatio: 0.1,
		},
	}
}

// Load layers struct defaults, the config file (if any) and GAMEREC_*
// environment variables, then validates the result.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file; an empty path skips the file
// layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// GAMEREC_ENCODER__BASE_URL -> encoder.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "" || key == "config_path" {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
