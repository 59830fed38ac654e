package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"jwt_secret", "s3cr3t",
		"user_id", "alice",
		"query", "co-op farming",
	})
	if len(out) != 6 {
		t.Fatalf("len: want=6 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("secret: want redacted got=%v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id: want hash got=%v", out[3])
	}
	if out[5] != "co-op farming" {
		t.Fatalf("query: want passthrough got=%v", out[5])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out)
	}
}

func TestHashValueStable(t *testing.T) {
	if hashValue("bob") != hashValue("bob") {
		t.Fatalf("hash not deterministic")
	}
	if hashValue("") != "" {
		t.Fatalf("empty value should hash to empty")
	}
}
