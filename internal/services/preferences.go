package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/gamerec-backend/internal/data/repos"
	types "github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/platform/apierr"
	"github.com/yungbote/gamerec-backend/internal/platform/dbctx"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

var errMissingUser = apierr.BadRequest("missing_user", errors.New("user id is required"))

type PreferencesService interface {
	// Get returns the stored profile, creating the default one on first access.
	Get(ctx context.Context, userID string) (types.Preferences, error)
	// Set validates p and replaces the stored profile wholesale.
	Set(ctx context.Context, userID string, p types.Preferences) (types.Preferences, error)
}

type preferencesService struct {
	log      *logger.Logger
	repo     repos.PreferencesRepo
	validate *validator.Validate
	defaults types.Preferences

	// userID -> *sync.RWMutex; never shared across users.
	locks sync.Map
}

// DefaultPreferences is the profile a user gets on first access.
func DefaultPreferences(avoidTags []string) types.Preferences {
	return types.Preferences{
		LikedGenres:    []string{},
		DislikedGenres: []string{},
		AvoidTags:      cleanList(avoidTags),
		AvoidNSFW:      true,
	}
}

func NewPreferencesService(log *logger.Logger, repo repos.PreferencesRepo, defaults types.Preferences) PreferencesService {
	return &preferencesService{
		log:      log.With("service", "PreferencesService"),
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		defaults: defaults,
	}
}

func (s *preferencesService) lockFor(userID string) *sync.RWMutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

func (s *preferencesService) Get(ctx context.Context, userID string) (types.Preferences, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return types.Preferences{}, errMissingUser
	}
	dbc := dbctx.Context{Ctx: ctx}
	mu := s.lockFor(userID)

	mu.RLock()
	row, err := s.repo.GetByUserID(dbc, userID)
	mu.RUnlock()
	if err != nil {
		return types.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if row != nil {
		return row.Preferences(), nil
	}

	mu.Lock()
	defer mu.Unlock()
	// Another request may have created the profile between the two locks.
	if row, err = s.repo.GetByUserID(dbc, userID); err != nil {
		return types.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	if row != nil {
		return row.Preferences(), nil
	}
	row = types.NewUserPreferences(userID, copyPreferences(s.defaults))
	if err := s.repo.Upsert(dbc, row); err != nil {
		return types.Preferences{}, fmt.Errorf("create default preferences: %w", err)
	}
	s.log.Info("created default preferences", "user_id", userID)
	return row.Preferences(), nil
}

func (s *preferencesService) Set(ctx context.Context, userID string, p types.Preferences) (types.Preferences, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return types.Preferences{}, errMissingUser
	}
	p.LikedGenres = cleanList(p.LikedGenres)
	p.DislikedGenres = cleanList(p.DislikedGenres)
	p.AvoidTags = cleanList(p.AvoidTags)
	if err := s.validate.Struct(p); err != nil {
		return types.Preferences{}, apierr.BadRequest("invalid_preferences", err)
	}

	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()
	row := types.NewUserPreferences(userID, p)
	if err := s.repo.Upsert(dbctx.Context{Ctx: ctx}, row); err != nil {
		return types.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return row.Preferences(), nil
}

// cleanList trims entries, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func copyPreferences(p types.Preferences) types.Preferences {
	p.LikedGenres = append([]string{}, p.LikedGenres...)
	p.DislikedGenres = append([]string{}, p.DislikedGenres...)
	p.AvoidTags = append([]string{}, p.AvoidTags...)
	if p.MaxPrice != nil {
		v := *p.MaxPrice
		p.MaxPrice = &v
	}
	return p
}
