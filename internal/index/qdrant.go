package index

import (
	"context"
	"fmt"

	"github.com/yungbote/gamerec-backend/internal/platform/qdrant"
)

type pointSearcher interface {
	Search(ctx context.Context, q []float32, limit int) ([]qdrant.ScoredPoint, error)
	VectorDim() int
}

// Qdrant serves searches from a remote collection populated from the same
// artifacts. Rows come from point payloads, so the local IDMap stays the
// source of truth for row to id resolution.
type Qdrant struct {
	client pointSearcher
	rows   int
}

func NewQdrant(client pointSearcher, rows int) *Qdrant {
	return &Qdrant{client: client, rows: rows}
}

func (q *Qdrant) Len() int  { return q.rows }
func (q *Qdrant) Dims() int { return q.client.VectorDim() }

func (q *Qdrant) Search(ctx context.Context, vec []float32, pool int) ([]Hit, error) {
	if len(vec) != q.Dims() {
		return nil, fmt.Errorf("%w: want=%d got=%d", ErrDimensionMismatch, q.Dims(), len(vec))
	}
	points, err := q.client.Search(ctx, vec, pool)
	if err != nil {
		return nil, err
	}
	out := make([]Hit, 0, len(points))
	for _, p := range points {
		out = append(out, Hit{Row: p.Row, Score: p.Score})
	}
	return out, nil
}

// Push uploads every row of a in batches of batchSize.
func Push(ctx context.Context, client *qdrant.Client, a *Artifacts, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 256
	}
	if err := client.EnsureCollection(ctx); err != nil {
		return 0, err
	}
	pushed := 0
	for start := 0; start < len(a.IDs); start += batchSize {
		end := start + batchSize
		if end > len(a.IDs) {
			end = len(a.IDs)
		}
		batch := make([]qdrant.Point, 0, end-start)
		for row := start; row < end; row++ {
			batch = append(batch, qdrant.Point{
				Row:    row,
				GameID: a.IDs[row],
				Vector: a.Vectors[row*a.Dims : (row+1)*a.Dims],
			})
		}
		if err := client.Upsert(ctx, batch); err != nil {
			return pushed, fmt.Errorf("push rows %d-%d: %w", start, end-1, err)
		}
		pushed += len(batch)
	}
	return pushed, nil
}
