package catalog

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/yungbote/gamerec-backend/internal/domain"
)

// Raw is one source row as loaded from disk, keyed by column name. Values
// may be nil, strings, numbers or lists depending on the source format.
type Raw map[string]any

var idColumns = []string{"appid", "id", "app_id"}

// Normalize turns a raw row into a typed record. ok is false when the row has
// no usable positive id.
func Normalize(r Raw) (domain.Game, bool) {
	var id int64
	for _, col := range idColumns {
		if v, present := r[col]; present {
			if n, ok := asInt(v); ok && n > 0 {
				id = n
				break
			}
		}
	}
	if id <= 0 {
		return domain.Game{}, false
	}
	g := domain.Game{
		ID:               id,
		Name:             asString(r["name"]),
		ShortDescription: asString(r["short_description"]),
		AboutText:        firstString(r, "about_the_game", "about_text", "detailed_description"),
		Genres:           asList(r["genres"]),
		Tags:             asList(r["tags"]),
		Categories:       asList(r["categories"]),
		UserScore:        userScore(r),
		Price:            nonNegFloat(r["price"]),
		HeaderImage:      optString(r["header_image"]),
	}
	if n, ok := asInt(r["num_reviews_total"]); ok && n >= 0 {
		g.NumReviewsTotal = &n
	}
	return g, true
}

// userScore prefers an explicit user_score column, else pct_pos_total.
// Negative values (the source's -1 sentinel), values over 100 and NaN mean
// no data.
func userScore(r Raw) *float64 {
	for _, col := range []string{"user_score", "pct_pos_total"} {
		v, present := r[col]
		if !present {
			continue
		}
		f, ok := asFloat(v)
		if !ok || f < 0 || f > 100 {
			return nil
		}
		return &f
	}
	return nil
}

func firstString(r Raw, cols ...string) string {
	for _, c := range cols {
		if s := asString(r[c]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(toJSONString(t))
	}
}

func optString(v any) *string {
	s := asString(v)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func nonNegFloat(v any) *float64 {
	f, ok := asFloat(v)
	if !ok || f < 0 {
		return nil
	}
	return &f
}

func asInt(v any) (int64, bool) {
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// asList accepts a real list, a bracketed JSON list, a bracketed
// non-JSON rendering such as "[Action, 'Indie']", or a comma-separated
// string. Blank entries and duplicates are dropped; order is kept.
func asList(v any) []string {
	var items []string
	switch t := v.(type) {
	case nil:
	case []any:
		for _, e := range t {
			items = append(items, asString(e))
		}
	case []string:
		items = append(items, t...)
	case string:
		items = splitListString(t)
	default:
		items = splitListString(asString(t))
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || strings.EqualFold(it, "nan") {
			continue
		}
		key := strings.ToLower(it)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func splitListString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var parsed []string
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return parsed
		}
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `'"`)
	}
	return parts
}

func toJSONString(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
