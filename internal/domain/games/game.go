package games

// Game is one catalog record after boundary normalization. Optional fields are
// nil when the source had no usable value.
type Game struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	AboutText        string   `json:"about_text,omitempty"`
	Genres           []string `json:"genres"`
	Tags             []string `json:"tags"`
	Categories       []string `json:"categories"`
	UserScore        *float64 `json:"user_score"`
	NumReviewsTotal  *int64   `json:"num_reviews_total"`
	Price            *float64 `json:"price"`
	HeaderImage      *string  `json:"header_image"`
}

// ScoreOrZero returns user_score, or 0 when absent.
func (g Game) ScoreOrZero() float64 {
	if g.UserScore == nil {
		return 0
	}
	return *g.UserScore
}

// ReviewsOrZero returns num_reviews_total, or 0 when absent.
func (g Game) ReviewsOrZero() int64 {
	if g.NumReviewsTotal == nil {
		return 0
	}
	return *g.NumReviewsTotal
}

// CorpusText is the text an embedding row is built from.
func (g Game) CorpusText() string {
	out := ""
	for _, part := range []string{g.Name, g.ShortDescription, g.AboutText} {
		if part == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += part
	}
	return out
}

// ScoredGame is a per-request ranking result. It is never persisted.
type ScoredGame struct {
	Game
	SimilarityScore float64 `json:"similarity_score"`
	FSNorm          float64 `json:"fs_norm"`
	QualityTerm     float64 `json:"quality_term"`
	PopularityTerm  float64 `json:"popularity_term"`
	CompositeScore  float64 `json:"composite_score"`
	Boosted         bool    `json:"boosted,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}
