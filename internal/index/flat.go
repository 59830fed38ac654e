package index

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"
)

// Flat is an exact inner-product index over a dense row-major matrix. It is
// read-only after construction.
type Flat struct {
	dims int
	n    int
	data []float32
}

// NewFlat copies data and L2-normalizes every row. Zero rows stay zero.
func NewFlat(dims int, data []float32) (*Flat, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("index: dims must be positive, got %d", dims)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data)%dims != 0 {
		return nil, fmt.Errorf("index: %d values do not divide into rows of %d", len(data), dims)
	}
	f := &Flat{dims: dims, n: len(data) / dims, data: append([]float32(nil), data...)}
	for r := 0; r < f.n; r++ {
		normalizeInPlace(f.data[r*dims : (r+1)*dims])
	}
	return f, nil
}

func (f *Flat) Len() int  { return f.n }
func (f *Flat) Dims() int { return f.dims }

// Vector returns a copy of one stored row.
func (f *Flat) Vector(row int) ([]float32, bool) {
	if row < 0 || row >= f.n {
		return nil, false
	}
	return append([]float32(nil), f.data[row*f.dims:(row+1)*f.dims]...), true
}

func (f *Flat) Search(ctx context.Context, q []float32, pool int) ([]Hit, error) {
	if len(q) != f.dims {
		return nil, fmt.Errorf("%w: want=%d got=%d", ErrDimensionMismatch, f.dims, len(q))
	}
	if pool <= 0 {
		return []Hit{}, nil
	}
	if pool > f.n {
		pool = f.n
	}
	h := make(minHeap, 0, pool)
	for r := 0; r < f.n; r++ {
		if r&4095 == 0 && ctx != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s := dot(q, f.data[r*f.dims:(r+1)*f.dims])
		switch {
		case len(h) < pool:
			heap.Push(&h, Hit{Row: r, Score: s})
		case s > h[0].Score:
			h[0] = Hit{Row: r, Score: s}
			heap.Fix(&h, 0)
		}
	}
	out := []Hit(h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Row < out[j].Row
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func normalizeInPlace(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// minHeap keeps the weakest retained hit at the root. Among equal scores
// the higher row sits nearer the root so lower rows survive eviction.
type minHeap []Hit

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].Score == h[j].Score {
		return h[i].Row > h[j].Row
	}
	return h[i].Score < h[j].Score
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(Hit)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
