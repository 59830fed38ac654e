// Package encoder maps text to unit-norm vectors in the embedding space of
// the index.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrDimensionMismatch = errors.New("encoder: output dimension mismatch")

type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	// Dims is 0 when the backend does not know its width up front.
	Dims() int
	Model() string
}

// BatchEncoder is implemented by backends that can encode many texts per call.
type BatchEncoder interface {
	Encoder
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EncodeAll uses EncodeBatch when available and falls back to one call per text.
func EncodeAll(ctx context.Context, e Encoder, texts []string) ([][]float32, error) {
	if be, ok := e.(BatchEncoder); ok {
		return be.EncodeBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Encode(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Normalize returns a unit-length copy of v. A zero vector maps to the
// uniform vector 1/sqrt(d) so every input still yields a valid direction.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	if len(v) == 0 {
		return out
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		u := float32(1 / math.Sqrt(float64(len(v))))
		for i := range out {
			out[i] = u
		}
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

type normalized struct {
	inner Encoder
	dims  int
}

// Normalized enforces the unit-norm contract on inner and, when dims > 0,
// rejects vectors of the wrong width.
func Normalized(inner Encoder, dims int) BatchEncoder {
	if dims <= 0 {
		dims = inner.Dims()
	}
	return &normalized{inner: inner, dims: dims}
}

func (n *normalized) Dims() int     { return n.dims }
func (n *normalized) Model() string { return n.inner.Model() }

func (n *normalized) Encode(ctx context.Context, text string) ([]float32, error) {
	v, err := n.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	return n.check(v)
}

func (n *normalized) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := EncodeAll(ctx, n.inner, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(vs))
	for i, v := range vs {
		if out[i], err = n.check(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (n *normalized) check(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: empty vector from %s", ErrDimensionMismatch, n.inner.Model())
	}
	if n.dims > 0 && len(v) != n.dims {
		return nil, fmt.Errorf("%w: want=%d got=%d", ErrDimensionMismatch, n.dims, len(v))
	}
	return Normalize(v), nil
}
