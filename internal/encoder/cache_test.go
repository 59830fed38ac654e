package encoder

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type mapCache struct {
	mu sync.Mutex
	m  map[string][]float32
}

func (c *mapCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, v []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = v
	return nil
}

type countingRecorder map[string]int

func (r countingRecorder) IncEncoderCache(result string) { r[result]++ }

func TestCachedEncodesOncePerText(t *testing.T) {
	inner := &fixedEncoder{vec: []float32{1, 0}}
	rec := countingRecorder{}
	enc := Cached(inner, &mapCache{m: map[string][]float32{}}, logger.Nop(), rec)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := enc.Encode(ctx, "metroidvania"); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls: want=1 got=%d", inner.calls)
	}
	if rec["miss"] != 1 || rec["hit"] != 2 {
		t.Fatalf("recorder: want miss=1 hit=2 got=%v", rec)
	}
}

func TestCacheKeyDependsOnModel(t *testing.T) {
	if CacheKey("a", "q") == CacheKey("b", "q") {
		t.Fatalf("model must be part of the key")
	}
}

func TestVectorBytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1, 3.5}
	out, err := unmarshalVector(marshalVector(in))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d: want=%v got=%v", i, in[i], out[i])
		}
	}
	if _, err := unmarshalVector([]byte{1, 2, 3}); err == nil {
		t.Fatalf("short input accepted")
	}
}

func TestBadgerCacheInMemory(t *testing.T) {
	c, err := OpenBadger("", time.Minute)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer c.Close()
	ctx := context.Background()
	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "k", []float32{0.5, 0.5}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || len(v) != 2 || v[1] != 0.5 {
		t.Fatalf("hit: v=%v ok=%v err=%v", v, ok, err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	defer client.Close()
	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()
	key := CacheKey("test", time.Now().String())
	if err := c.Set(ctx, key, []float32{1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok || v[0] != 1 {
		t.Fatalf("Get: v=%v ok=%v err=%v", v, ok, err)
	}
}
