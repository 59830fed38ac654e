package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/index"
	"github.com/yungbote/gamerec-backend/internal/observability"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/platform/qdrant"
)

var newQdrantClient = qdrant.New

type IndexBootstrapErrorCode string

const (
	IndexBootstrapErrorInvalidBackend     IndexBootstrapErrorCode = "invalid_backend"
	IndexBootstrapErrorMissingQdrantURL   IndexBootstrapErrorCode = "missing_qdrant_url"
	IndexBootstrapErrorInvalidQdrantURL   IndexBootstrapErrorCode = "invalid_qdrant_url"
	IndexBootstrapErrorMissingQdrantColl  IndexBootstrapErrorCode = "missing_qdrant_collection"
	IndexBootstrapErrorQdrantConfigFailed IndexBootstrapErrorCode = "qdrant_config_failed"
	IndexBootstrapErrorConnectFailed      IndexBootstrapErrorCode = "connect_failed"
	IndexBootstrapErrorCollectionMismatch IndexBootstrapErrorCode = "collection_mismatch"
	IndexBootstrapErrorRowCountMismatch   IndexBootstrapErrorCode = "row_count_mismatch"
)

type IndexBootstrapError struct {
	Code    IndexBootstrapErrorCode
	Backend string
	Cause   error
}

func (e *IndexBootstrapError) Error() string {
	if e == nil {
		return "index backend bootstrap failed"
	}
	return fmt.Sprintf("index backend bootstrap failed (code=%s backend=%q): %v", e.Code, e.Backend, e.Cause)
}

func (e *IndexBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveIndex picks the search backend. The local artifacts are always
// loaded because the id map and dimension check come from them; qdrant only
// replaces the flat scan.
func resolveIndex(
	ctx context.Context,
	log *logger.Logger,
	cfg config.IndexConfig,
	loaded *index.Loaded,
	metrics *observability.Metrics,
) (index.Searcher, string, error) {
	backend := strings.TrimSpace(strings.ToLower(cfg.Backend))
	if backend == "" {
		backend = config.IndexBackendFlat
	}

	switch backend {
	case config.IndexBackendFlat:
		log.Info("Selecting index backend", "backend", backend, "rows", loaded.Flat.Len(), "dims", loaded.Flat.Dims())
		metrics.ObserveIndexBootstrap(backend, "success", "none")
		return loaded.Flat, backend, nil

	case config.IndexBackendQdrant:
		log.Info(
			"Selecting index backend",
			"backend", backend,
			"qdrant_url", cfg.Qdrant.URL,
			"qdrant_collection", cfg.Qdrant.Collection,
			"dims", loaded.Flat.Dims(),
		)
		searcher, err := bootstrapQdrant(ctx, log, cfg.Qdrant, loaded)
		if err != nil {
			classified := classifyIndexBootstrapError(backend, err)
			code := indexBootstrapErrorCode(classified)
			metrics.ObserveIndexBootstrap(backend, "error", string(code))
			log.Error("Index backend bootstrap failed", "backend", backend, "error_code", code, "error", classified)
			return nil, backend, classified
		}
		metrics.ObserveIndexBootstrap(backend, "success", "none")
		return searcher, backend, nil

	default:
		err := &IndexBootstrapError{
			Code:    IndexBootstrapErrorInvalidBackend,
			Backend: backend,
			Cause:   fmt.Errorf("unsupported index backend %q (want %s or %s)", backend, config.IndexBackendFlat, config.IndexBackendQdrant),
		}
		metrics.ObserveIndexBootstrap(backend, "error", string(err.Code))
		return nil, backend, err
	}
}

func bootstrapQdrant(ctx context.Context, log *logger.Logger, cfg config.QdrantConfig, loaded *index.Loaded) (index.Searcher, error) {
	client, err := newQdrantClient(log, qdrant.Config{
		URL:        strings.TrimSpace(cfg.URL),
		Collection: strings.TrimSpace(cfg.Collection),
		APIKey:     strings.TrimSpace(cfg.APIKey),
		VectorDim:  loaded.Flat.Dims(),
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := client.VerifyReady(ctx); err != nil {
		return nil, err
	}
	count, err := client.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count != loaded.IDs.Len() {
		return nil, &IndexBootstrapError{
			Code:    IndexBootstrapErrorRowCountMismatch,
			Backend: config.IndexBackendQdrant,
			Cause:   fmt.Errorf("collection %q has %d points, artifacts have %d rows", client.Collection(), count, loaded.IDs.Len()),
		}
	}
	return index.NewQdrant(client, loaded.IDs.Len()), nil
}

func classifyIndexBootstrapError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var already *IndexBootstrapError
	if errors.As(err, &already) {
		return err
	}
	code := IndexBootstrapErrorConnectFailed

	var cfgErr *qdrant.ConfigError
	var opErr *qdrant.OperationError
	switch {
	case errors.As(err, &cfgErr):
		switch cfgErr.Code {
		case qdrant.ConfigErrorMissingURL:
			code = IndexBootstrapErrorMissingQdrantURL
		case qdrant.ConfigErrorInvalidURL:
			code = IndexBootstrapErrorInvalidQdrantURL
		case qdrant.ConfigErrorMissingCollection:
			code = IndexBootstrapErrorMissingQdrantColl
		default:
			code = IndexBootstrapErrorQdrantConfigFailed
		}
	case errors.As(err, &opErr):
		switch opErr.Code {
		case qdrant.OperationErrorValidation, qdrant.OperationErrorNotFound:
			code = IndexBootstrapErrorCollectionMismatch
		default:
			code = IndexBootstrapErrorConnectFailed
		}
	}
	return &IndexBootstrapError{Code: code, Backend: backend, Cause: err}
}

func indexBootstrapErrorCode(err error) IndexBootstrapErrorCode {
	var e *IndexBootstrapError
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return IndexBootstrapErrorConnectFailed
}
