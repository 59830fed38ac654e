package encoder

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/yungbote/gamerec-backend/internal/safety"
)

// Hashing is a deterministic bag-of-words encoder: each token and each
// adjacent token pair is hashed into a signed bucket. It needs no model
// files and is used for local runs and tests.
type Hashing struct {
	dims int
}

func NewHashing(dims int) *Hashing {
	if dims <= 0 {
		dims = 256
	}
	return &Hashing{dims: dims}
}

func (h *Hashing) Dims() int     { return h.dims }
func (h *Hashing) Model() string { return fmt.Sprintf("hashing-%d", h.dims) }

func (h *Hashing) Encode(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, h.dims)
	tokens := safety.Tokenize(text)
	for i, tok := range tokens {
		h.add(v, tok, 1)
		if i > 0 {
			h.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return Normalize(v), nil
}

func (h *Hashing) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	bucket := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[bucket] += weight
}
