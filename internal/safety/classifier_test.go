package safety

import (
	"reflect"
	"testing"

	"github.com/yungbote/gamerec-backend/internal/domain"
)

func TestTokenizeKeepsUnicodeLetters(t *testing.T) {
	got := Tokenize("Acción-RPG, Café 2!")
	want := []string{"acción", "rpg", "café", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize: want=%v got=%v", want, got)
	}
}

func TestIsUnsafeExactTag(t *testing.T) {
	c := New(nil)
	g := domain.Game{ID: 1, Name: "Sunny Puzzle", Tags: []string{"Hentai", "Puzzle"}}
	if !c.IsUnsafe(g) {
		t.Fatalf("hentai tag should be unsafe")
	}
}

func TestIsUnsafePhraseAcrossFields(t *testing.T) {
	c := New([]string{"adult only"})
	g := domain.Game{
		ID:               2,
		Name:             "Night Club",
		ShortDescription: "This title is for an adult audience only.",
		Categories:       []string{"Only"},
	}
	// sorted tokens: adult an audience club for is night only this title
	if c.IsUnsafe(g) {
		t.Fatalf("non-adjacent tokens should not match")
	}

	g = domain.Game{ID: 2, Name: "Velvet", Tags: []string{"Adult-Only"}}
	// sorted tokens: adult only velvet
	if !c.IsUnsafe(g) {
		t.Fatalf("adult-only tag should match phrase: tokens=%v", Tokens(g))
	}
}

func TestIsUnsafeSafeRecord(t *testing.T) {
	c := New(nil)
	g := domain.Game{
		ID:         3,
		Name:       "Stardew Valley",
		Genres:     []string{"Simulation", "RPG"},
		Tags:       []string{"Farming Sim", "Cozy"},
		Categories: []string{"Single-player", "Online Co-op"},
	}
	if c.IsUnsafe(g) {
		t.Fatalf("farm sim flagged unsafe: tokens=%v", Tokens(g))
	}
}

func TestNewNormalizesDenylist(t *testing.T) {
	c := New([]string{"  Adults-Only ", "adults only", "", "NSFW"})
	want := []string{"adults only", "nsfw"}
	if got := c.Terms(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Terms: want=%v got=%v", want, got)
	}
}

// Substring matching over joined tokens can fire inside longer words. This
// is kept as-is and pinned here so a change is deliberate.
func TestIsUnsafeSubstringInsideToken(t *testing.T) {
	c := New([]string{"porn"})
	g := domain.Game{ID: 4, Name: "Pornographic Visual Novel"}
	if !c.IsUnsafe(g) {
		t.Fatalf("substring pass should catch porn inside pornographic")
	}
}
