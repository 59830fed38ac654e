package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromWrapped(t *testing.T) {
	base := NotFound("game_not_found", errors.New("no game 7"))
	wrapped := fmt.Errorf("similar: %w", base)
	got := From(wrapped)
	if got.Status != http.StatusNotFound || got.Code != "game_not_found" {
		t.Fatalf("From: got=%+v", got)
	}
}

func TestFromUnclassified(t *testing.T) {
	got := From(errors.New("boom"))
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", got.Status)
	}
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}
}
