package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/encoder"
	"github.com/yungbote/gamerec-backend/internal/observability"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

// NewEncoder builds the configured backend wrapped in the unit-norm check.
// dims falls back to cfg.Dims when zero.
func NewEncoder(log *logger.Logger, cfg config.EncoderConfig, dims int) (encoder.BatchEncoder, error) {
	if dims <= 0 {
		dims = cfg.Dims
	}
	var inner encoder.Encoder
	switch strings.TrimSpace(strings.ToLower(cfg.Backend)) {
	case "", config.EncoderBackendHashing:
		if dims <= 0 {
			return nil, fmt.Errorf("hashing encoder needs dims")
		}
		inner = encoder.NewHashing(dims)
	case config.EncoderBackendOAIHTTP:
		oai, err := encoder.NewOAIHTTP(log, encoder.OAIConfig{
			BaseURL:         cfg.BaseURL,
			EmbeddingsPath:  cfg.EmbeddingsPath,
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			Dims:            dims,
			Timeout:         cfg.Timeout,
			BreakerFailures: cfg.BreakerFailures,
			BreakerTimeout:  cfg.BreakerTimeout,
		})
		if err != nil {
			return nil, err
		}
		inner = oai
	default:
		return nil, fmt.Errorf("unsupported encoder backend %q", cfg.Backend)
	}
	return encoder.Normalized(inner, dims), nil
}

// wireEncoder pins the encoder to the artifacts: same model, same width.
// The cache sits outside the normalizer so cached vectors are already unit-norm.
func wireEncoder(
	log *logger.Logger,
	cfg config.EncoderConfig,
	artifactsModel string,
	dims int,
	cache encoder.Cache,
	metrics *observability.Metrics,
) (encoder.Encoder, error) {
	if cfg.Dims > 0 && cfg.Dims != dims {
		return nil, fmt.Errorf("%w: encoder.dims=%d, artifacts dims=%d", encoder.ErrDimensionMismatch, cfg.Dims, dims)
	}
	enc, err := NewEncoder(log, cfg, dims)
	if err != nil {
		return nil, err
	}
	if enc.Model() != artifactsModel {
		return nil, fmt.Errorf("encoder model %q does not match artifacts model %q", enc.Model(), artifactsModel)
	}
	log.Info("Encoder ready", "model", enc.Model(), "dims", enc.Dims(), "cached", cache != nil)
	return encoder.Cached(enc, cache, log, metrics), nil
}
