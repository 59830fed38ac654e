package index

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestFlatSearchOrderAndPool(t *testing.T) {
	f, err := NewFlat(2, []float32{
		1, 0,
		0, 1,
		3, 3, // normalizes to (0.707, 0.707)
		-1, 0,
	})
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	hits, err := f.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("pool: want=3 got=%d", len(hits))
	}
	wantRows := []int{0, 2, 1}
	for i, h := range hits {
		if h.Row != wantRows[i] {
			t.Fatalf("rank %d: want row=%d got=%d (%v)", i, wantRows[i], h.Row, hits)
		}
	}
	if math.Abs(hits[1].Score-math.Sqrt2/2) > 1e-6 {
		t.Fatalf("normalized score: got=%v", hits[1].Score)
	}
}

func TestFlatSearchPoolLargerThanIndex(t *testing.T) {
	f, _ := NewFlat(1, []float32{1, 2})
	hits, err := f.Search(context.Background(), []float32{1}, 100)
	if err != nil || len(hits) != 2 {
		t.Fatalf("want 2 hits got=%d err=%v", len(hits), err)
	}
}

func TestFlatSearchTiesPreferLowerRows(t *testing.T) {
	f, _ := NewFlat(1, []float32{1, 1, 1, 1})
	hits, _ := f.Search(context.Background(), []float32{1}, 2)
	if hits[0].Row != 0 || hits[1].Row != 1 {
		t.Fatalf("ties: got=%v", hits)
	}
}

func TestFlatSearchDimensionMismatch(t *testing.T) {
	f, _ := NewFlat(2, []float32{1, 0})
	if _, err := f.Search(context.Background(), []float32{1, 0, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("want ErrDimensionMismatch got=%v", err)
	}
}

func TestFlatSearchCancelled(t *testing.T) {
	f, _ := NewFlat(1, []float32{1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Search(ctx, []float32{1}, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled got=%v", err)
	}
}

func TestNewIDMapRejectsDuplicates(t *testing.T) {
	if _, err := NewIDMap([]int64{10, 20, 10}); err == nil {
		t.Fatalf("duplicate ids accepted")
	}
	if _, err := NewIDMap([]int64{0}); err == nil {
		t.Fatalf("zero id accepted")
	}
	m, err := NewIDMap([]int64{10, 20})
	if err != nil {
		t.Fatalf("NewIDMap: %v", err)
	}
	if id, ok := m.Lookup(1); !ok || id != 20 {
		t.Fatalf("Lookup(1): got=%d ok=%v", id, ok)
	}
	if _, ok := m.Lookup(2); ok {
		t.Fatalf("Lookup past end should miss")
	}
}
