package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"

	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

// Cache stores encoded query vectors. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, v []float32) error
}

// CacheRecorder counts lookups as "hit", "miss" or "error".
type CacheRecorder interface {
	IncEncoderCache(result string)
}

type cached struct {
	inner Encoder
	cache Cache
	log   *logger.Logger
	rec   CacheRecorder
}

// Cached consults c before inner. Cache failures are logged and bypassed.
// rec may be nil.
func Cached(inner Encoder, c Cache, log *logger.Logger, rec CacheRecorder) Encoder {
	if c == nil {
		return inner
	}
	return &cached{inner: inner, cache: c, log: log.With("service", "EncoderCache"), rec: rec}
}

func (c *cached) record(result string) {
	if c.rec != nil {
		c.rec.IncEncoderCache(result)
	}
}

func (c *cached) Dims() int     { return c.inner.Dims() }
func (c *cached) Model() string { return c.inner.Model() }

func (c *cached) Encode(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.inner.Model(), text)
	if v, ok, err := c.cache.Get(ctx, key); err != nil {
		c.record("error")
		c.log.Warn("encoder cache get failed", "error", err)
	} else if ok {
		c.record("hit")
		return v, nil
	} else {
		c.record("miss")
	}
	v, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, v); err != nil {
		c.log.Warn("encoder cache set failed", "error", err)
	}
	return v, nil
}

func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\n" + text))
	return "gamerec:qvec:" + hex.EncodeToString(sum[:])
}

func marshalVector(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(x))
	}
	return out
}

var errCorruptVector = errors.New("encoder cache: corrupt vector bytes")

func unmarshalVector(raw []byte) ([]float32, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, errCorruptVector
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}
