// Package progress records body metrics per profile
package progress

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// Validator checks a struct against its validation tags
type Validator interface {
	Struct(s interface{}) error
}

// Service keeps one date-sorted history per profile
type Service struct {
	docs      *storage.Documents
	profiles  inbound.ProfileService
	validator Validator
	logger    *zap.Logger

	mu sync.Mutex
}

// NewService creates a progress service
func NewService(docs *storage.Documents, profiles inbound.ProfileService, validator Validator, logger *zap.Logger) *Service {
	return &Service{
		docs:      docs,
		profiles:  profiles,
		validator: validator,
		logger:    logger.Named("progress-service"),
	}
}

// History returns the entries of a profile, oldest first
func (s *Service) History(ctx context.Context, profileID string) ([]nutrition.ProgressData, error) {
	if _, err := s.profiles.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}
	return s.load(ctx, profileID)
}

// Record stores entry, replacing any entry with the same date
func (s *Service) Record(ctx context.Context, profileID string, entry nutrition.ProgressData) ([]nutrition.ProgressData, error) {
	entry.Notes = strings.TrimSpace(entry.Notes)
	if err := s.validator.Struct(&entry); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	history = nutrition.UpsertProgress(history, entry)
	if err := s.docs.Save(ctx, storage.ProgressKey(profileID), history); err != nil {
		return nil, err
	}

	s.logger.Debug("Progress recorded",
		zap.String("profile_id", profileID),
		zap.String("date", entry.Date),
		zap.Int("entries", len(history)),
	)
	return history, nil
}

// Remove deletes the entry for date
func (s *Service) Remove(ctx context.Context, profileID, date string) ([]nutrition.ProgressData, error) {
	if _, err := s.profiles.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	history, ok := nutrition.RemoveProgress(history, date)
	if !ok {
		return nil, apperrors.NewNotFoundError("progress entry").
			WithCause(nutrition.ErrProgressNotFound).
			WithMetadata("date", date)
	}
	if err := s.docs.Save(ctx, storage.ProgressKey(profileID), history); err != nil {
		return nil, err
	}
	return history, nil
}

// Summary condenses the history together with the profile's macro targets
func (s *Service) Summary(ctx context.Context, profileID string) (*nutrition.ProgressSummary, error) {
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	history, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	summary := nutrition.SummarizeProgress(*profile, history)
	return &summary, nil
}

// load returns the stored history sorted by date. Older writers may have
// left it unsorted.
func (s *Service) load(ctx context.Context, profileID string) ([]nutrition.ProgressData, error) {
	var history []nutrition.ProgressData
	found, err := s.docs.Load(ctx, storage.ProgressKey(profileID), &history)
	if err != nil {
		return nil, err
	}
	if !found || history == nil {
		return []nutrition.ProgressData{}, nil
	}
	nutrition.SortProgress(history)
	return history, nil
}
