// Package index holds the embedding matrix and answers inner-product
// nearest-neighbour queries over it.
package index

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDimensionMismatch = errors.New("index: query dimension mismatch")
	ErrEmpty             = errors.New("index: no rows")
)

// Hit is one search result. Score is the raw inner product.
type Hit struct {
	Row   int
	Score float64
}

// Searcher answers top-pool queries ordered by descending score.
type Searcher interface {
	Search(ctx context.Context, q []float32, pool int) ([]Hit, error)
	Len() int
	Dims() int
}

// IDMap resolves an index row to its catalog id.
type IDMap struct {
	ids  []int64
	byID map[int64]int
}

// NewIDMap requires one positive, distinct id per row.
func NewIDMap(ids []int64) (*IDMap, error) {
	m := &IDMap{ids: append([]int64(nil), ids...), byID: make(map[int64]int, len(ids))}
	for row, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("index: row %d has non-positive id %d", row, id)
		}
		if prev, dup := m.byID[id]; dup {
			return nil, fmt.Errorf("index: id %d mapped by rows %d and %d", id, prev, row)
		}
		m.byID[id] = row
	}
	return m, nil
}

func (m *IDMap) Len() int { return len(m.ids) }

func (m *IDMap) Lookup(row int) (int64, bool) {
	if m == nil || row < 0 || row >= len(m.ids) {
		return 0, false
	}
	return m.ids[row], true
}

func (m *IDMap) Row(id int64) (int, bool) {
	if m == nil {
		return 0, false
	}
	row, ok := m.byID[id]
	return row, ok
}
