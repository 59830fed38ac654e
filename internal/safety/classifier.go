// Package safety decides whether a catalog record is explicit content.
package safety

import (
	"sort"
	"strings"
	"unicode"

	"github.com/yungbote/gamerec-backend/internal/domain"
)

// DefaultDenylist holds the markers used when configuration supplies none.
var DefaultDenylist = []string{
	"hentai",
	"nsfw",
	"porn",
	"pornographic",
	"erotic",
	"eroge",
	"nudity",
	"sexual content",
	"adult only",
	"adults only",
	"adult content",
	"nsfw content",
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	terms   map[string]struct{}
	phrases []string
}

// New normalizes every entry through the same tokenizer used on records, so
// "Adult-Only" and "adult only" are the same phrase.
func New(denylist []string) *Classifier {
	if len(denylist) == 0 {
		denylist = DefaultDenylist
	}
	c := &Classifier{terms: make(map[string]struct{}, len(denylist))}
	seen := map[string]struct{}{}
	for _, raw := range denylist {
		phrase := strings.Join(Tokenize(raw), " ")
		if phrase == "" {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		c.terms[phrase] = struct{}{}
		c.phrases = append(c.phrases, phrase)
	}
	sort.Strings(c.phrases)
	return c
}

// IsUnsafe reports whether g hits the denylist, either as an exact token or
// as a substring of the space-joined sorted token set.
func (c *Classifier) IsUnsafe(g domain.Game) bool {
	if c == nil || len(c.phrases) == 0 {
		return false
	}
	tokens := Tokens(g)
	for _, tok := range tokens {
		if _, hit := c.terms[tok]; hit {
			return true
		}
	}
	joined := strings.Join(tokens, " ")
	for _, phrase := range c.phrases {
		if strings.Contains(joined, phrase) {
			return true
		}
	}
	return false
}

// Terms returns the normalized denylist, sorted.
func (c *Classifier) Terms() []string {
	return append([]string(nil), c.phrases...)
}

// Tokens is the sorted, de-duplicated token set over every text and
// categorical field of g.
func Tokens(g domain.Game) []string {
	set := map[string]struct{}{}
	add := func(s string) {
		for _, tok := range Tokenize(s) {
			set[tok] = struct{}{}
		}
	}
	add(g.Name)
	add(g.ShortDescription)
	add(g.AboutText)
	for _, group := range [][]string{g.Genres, g.Tags, g.Categories} {
		for _, v := range group {
			add(v)
		}
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Tokenize lowercases s and splits it on anything that is not a letter or a
// digit. Letters outside ASCII are kept.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
