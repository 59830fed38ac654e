package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/encoder"
)

type BuildOptions struct {
	BatchSize int
	Workers   int
	// Progress is called after each finished batch with the rows done so far.
	Progress func(done, total int)
}

// Build encodes every game's corpus text into an artifact set. Row order
// follows games, so ids.npy matches the catalog order.
func Build(ctx context.Context, games []domain.Game, enc encoder.Encoder, opts BuildOptions) (*Artifacts, error) {
	if len(games) == 0 {
		return nil, errors.New("index build: no games")
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 64
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	vecs := make([][]float32, len(games))
	done := make(chan int, workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		finished := 0
		for n := range done {
			finished += n
			if opts.Progress != nil {
				opts.Progress(finished, len(games))
			}
		}
	}()

	for start := 0; start < len(games); start += batch {
		end := start + batch
		if end > len(games) {
			end = len(games)
		}
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, game := range games[start:end] {
				texts = append(texts, game.CorpusText())
			}
			out, err := encoder.EncodeAll(gctx, enc, texts)
			if err != nil {
				return fmt.Errorf("encode rows %d-%d: %w", start, end-1, err)
			}
			if len(out) != len(texts) {
				return fmt.Errorf("encode rows %d-%d: got %d vectors", start, end-1, len(out))
			}
			copy(vecs[start:end], out)
			done <- len(out)
			return nil
		})
	}
	err := g.Wait()
	close(done)
	<-progressDone
	if err != nil {
		return nil, err
	}

	dims := len(vecs[0])
	a := &Artifacts{
		Manifest: Manifest{Model: enc.Model(), Dims: dims, CreatedAt: time.Now().UTC()},
		Vectors:  make([]float32, 0, len(vecs)*dims),
		IDs:      make([]int64, 0, len(games)),
	}
	for i, v := range vecs {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: row %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dims)
		}
		a.Vectors = append(a.Vectors, v...)
		a.IDs = append(a.IDs, games[i].ID)
	}
	a.Count = len(a.IDs)
	return a, nil
}
