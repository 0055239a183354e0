// Package profile provides the application layer for dietary profiles
package profile

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/domain/nutrition"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// Validator checks a struct against its validation tags
type Validator interface {
	Struct(s interface{}) error
}

// Service implements the profile use cases. Exactly one profile is active
// whenever any profile exists.
type Service struct {
	docs      *storage.Documents
	validator Validator
	logger    *zap.Logger

	mu sync.Mutex
}

// NewService creates a profile service
func NewService(docs *storage.Documents, validator Validator, logger *zap.Logger) *Service {
	return &Service{
		docs:      docs,
		validator: validator,
		logger:    logger.Named("profile-service"),
	}
}

// ListProfiles returns every profile, seeding the default one into an
// empty store
func (s *Service) ListProfiles(ctx context.Context) ([]nutrition.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrSeed(ctx)
}

// GetProfile returns one profile
func (s *Service) GetProfile(ctx context.Context, id string) (*nutrition.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadOrSeed(ctx)
	if err != nil {
		return nil, err
	}
	return find(profiles, id)
}

// CreateProfile stores a new profile under a fresh id. The first profile
// created becomes active.
func (s *Service) CreateProfile(ctx context.Context, p nutrition.UserProfile) (*nutrition.UserProfile, error) {
	p.ID = uuid.NewString()
	if err := s.validate(&p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadOrSeed(ctx)
	if err != nil {
		return nil, err
	}
	profiles = append(profiles, p)
	if err := s.docs.Save(ctx, storage.KeyProfiles, profiles); err != nil {
		return nil, err
	}

	activeID, err := s.activeID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := find(profiles, activeID); err != nil {
		if err := s.docs.Save(ctx, storage.KeyActiveProfileID, p.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Profile created", zap.String("profile_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

// UpdateProfile replaces a stored profile in place
func (s *Service) UpdateProfile(ctx context.Context, p nutrition.UserProfile) (*nutrition.UserProfile, error) {
	if err := s.validate(&p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadOrSeed(ctx)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range profiles {
		if profiles[i].ID == p.ID {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		return nil, apperrors.NewProfileNotFoundError(p.ID)
	}
	if err := s.docs.Save(ctx, storage.KeyProfiles, profiles); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", zap.String("profile_id", p.ID))
	return &p, nil
}

// DeleteProfile removes a profile together with its progress history. If
// it was active, the first remaining profile becomes active.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadOrSeed(ctx)
	if err != nil {
		return err
	}

	remaining := make([]nutrition.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(profiles) {
		return apperrors.NewProfileNotFoundError(id)
	}

	if err := s.docs.Save(ctx, storage.KeyProfiles, remaining); err != nil {
		return err
	}
	if err := s.docs.Remove(ctx, storage.ProgressKey(id)); err != nil {
		return err
	}

	activeID, err := s.activeID(ctx)
	if err != nil {
		return err
	}
	if activeID == id {
		if len(remaining) > 0 {
			err = s.docs.Save(ctx, storage.KeyActiveProfileID, remaining[0].ID)
		} else {
			err = s.docs.Remove(ctx, storage.KeyActiveProfileID)
		}
		if err != nil {
			return err
		}
	}

	s.logger.Info("Profile deleted", zap.String("profile_id", id), zap.Int("remaining", len(remaining)))
	return nil
}

// ActiveProfile returns the active profile, defaulting to the first one
func (s *Service) ActiveProfile(ctx context.Context) (*nutrition.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active(ctx)
}

// SetActiveProfile switches the active profile
func (s *Service) SetActiveProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.loadOrSeed(ctx)
	if err != nil {
		return err
	}
	if _, err := find(profiles, id); err != nil {
		return err
	}
	return s.docs.Save(ctx, storage.KeyActiveProfileID, id)
}

// ResolveProfile returns the profile with id, or the active one for ""
func (s *Service) ResolveProfile(ctx context.Context, id string) (*nutrition.UserProfile, error) {
	if id == "" {
		return s.ActiveProfile(ctx)
	}
	return s.GetProfile(ctx, id)
}

func (s *Service) active(ctx context.Context) (*nutrition.UserProfile, error) {
	profiles, err := s.loadOrSeed(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, apperrors.NewNotFoundError("active profile").WithCause(nutrition.ErrNoProfiles)
	}

	activeID, err := s.activeID(ctx)
	if err != nil {
		return nil, err
	}
	if p, err := find(profiles, activeID); err == nil {
		return p, nil
	}

	first := profiles[0]
	if err := s.docs.Save(ctx, storage.KeyActiveProfileID, first.ID); err != nil {
		return nil, err
	}
	return &first, nil
}

func (s *Service) validate(p *nutrition.UserProfile) error {
	p.Normalize()
	if err := s.validator.Struct(p); err != nil {
		return err
	}
	return nil
}

// loadOrSeed loads the profiles, writing the default profile the first time
// the collection is read from an empty store
func (s *Service) loadOrSeed(ctx context.Context) ([]nutrition.UserProfile, error) {
	var profiles []nutrition.UserProfile
	found, err := s.docs.Load(ctx, storage.KeyProfiles, &profiles)
	if err != nil {
		return nil, err
	}
	if found {
		if profiles == nil {
			profiles = []nutrition.UserProfile{}
		}
		return profiles, nil
	}

	seed := nutrition.NewDefaultProfile()
	profiles = []nutrition.UserProfile{seed}
	if err := s.docs.Save(ctx, storage.KeyProfiles, profiles); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, storage.KeyActiveProfileID, seed.ID); err != nil {
		return nil, err
	}
	s.logger.Info("Seeded default profile", zap.String("profile_id", seed.ID))
	return profiles, nil
}

func (s *Service) activeID(ctx context.Context) (string, error) {
	var id string
	if _, err := s.docs.Load(ctx, storage.KeyActiveProfileID, &id); err != nil {
		return "", err
	}
	return id, nil
}

func find(profiles []nutrition.UserProfile, id string) (*nutrition.UserProfile, error) {
	for i := range profiles {
		if profiles[i].ID == id {
			p := profiles[i]
			return &p, nil
		}
	}
	return nil, apperrors.NewProfileNotFoundError(id)
}
