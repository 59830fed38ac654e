package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Preferences is the profile the preference filter reads.
type Preferences struct {
	LikedGenres    []string `json:"liked_genres" yaml:"liked_genres" validate:"max=64,dive,max=80"`
	DislikedGenres []string `json:"disliked_genres" yaml:"disliked_genres" validate:"max=64,dive,max=80"`
	AvoidTags      []string `json:"avoid_tags" yaml:"avoid_tags" validate:"max=64,dive,max=80"`
	MinUserScore   float64  `json:"min_user_score" yaml:"min_user_score" validate:"gte=0,lte=100"`
	MinNumReviews  int64    `json:"min_num_reviews" yaml:"min_num_reviews" validate:"gte=0"`
	MaxPrice       *float64 `json:"max_price" yaml:"max_price" validate:"omitempty,gt=0"`
	AvoidNSFW      bool     `json:"avoid_nsfw" yaml:"avoid_nsfw"`
}

// UserPreferences is the persisted row for one user's profile.
type UserPreferences struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"not null;uniqueIndex" json:"user_id"`

	LikedGenres    datatypes.JSONSlice[string] `gorm:"column:liked_genres" json:"liked_genres"`
	DislikedGenres datatypes.JSONSlice[string] `gorm:"column:disliked_genres" json:"disliked_genres"`
	AvoidTags      datatypes.JSONSlice[string] `gorm:"column:avoid_tags" json:"avoid_tags"`
	MinUserScore   float64                     `gorm:"not null;default:0" json:"min_user_score"`
	MinNumReviews  int64                       `gorm:"not null;default:0" json:"min_num_reviews"`
	MaxPrice       *float64                    `json:"max_price"`
	AvoidNSFW      bool                        `gorm:"not null" json:"avoid_nsfw"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (UserPreferences) TableName() string { return "user_preferences" }

func (r UserPreferences) Preferences() Preferences {
	return Preferences{
		LikedGenres:    append([]string{}, r.LikedGenres...),
		DislikedGenres: append([]string{}, r.DislikedGenres...),
		AvoidTags:      append([]string{}, r.AvoidTags...),
		MinUserScore:   r.MinUserScore,
		MinNumReviews:  r.MinNumReviews,
		MaxPrice:       r.MaxPrice,
		AvoidNSFW:      r.AvoidNSFW,
	}
}

func NewUserPreferences(userID string, p Preferences) *UserPreferences {
	return &UserPreferences{
		UserID:         userID,
		LikedGenres:    datatypes.JSONSlice[string](nonNil(p.LikedGenres)),
		DislikedGenres: datatypes.JSONSlice[string](nonNil(p.DislikedGenres)),
		AvoidTags:      datatypes.JSONSlice[string](nonNil(p.AvoidTags)),
		MinUserScore:   p.MinUserScore,
		MinNumReviews:  p.MinNumReviews,
		MaxPrice:       p.MaxPrice,
		AvoidNSFW:      p.AvoidNSFW,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
