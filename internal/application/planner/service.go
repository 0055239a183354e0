// Package planner provides the application layer for weekly meal plans
package planner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// PlanGenerator produces a complete weekly plan for a profile
type PlanGenerator interface {
	GenerateWeeklyMealPlan(ctx context.Context, profile nutrition.UserProfile, mode nutrition.PlanMode) (*nutrition.WeeklyPlan, error)
}

// Service stores at most one plan per profile
type Service struct {
	docs      *storage.Documents
	profiles  inbound.ProfileService
	generator PlanGenerator
	logger    *zap.Logger

	mu sync.Mutex
}

// NewService creates a planner service
func NewService(docs *storage.Documents, profiles inbound.ProfileService, generator PlanGenerator, logger *zap.Logger) *Service {
	return &Service{
		docs:      docs,
		profiles:  profiles,
		generator: generator,
		logger:    logger.Named("planner-service"),
	}
}

// GeneratePlan generates a plan for the profile (the active one when
// profileID is empty) and replaces whatever plan that profile had. Nothing
// is stored when generation fails.
func (s *Service) GeneratePlan(ctx context.Context, profileID string, mode nutrition.PlanMode) (*nutrition.WeeklyPlan, error) {
	if mode == "" {
		mode = nutrition.PlanModeBalanced
	}
	if !mode.IsValid() {
		return nil, apperrors.NewValidationError(nutrition.ErrInvalidPlanMode.Error()).
			WithMetadata("mode", string(mode))
	}

	profile, err := s.profiles.ResolveProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generating weekly plan",
		zap.String("profile_id", profile.ID),
		zap.String("mode", string(mode)),
	)

	plan, err := s.generator.GenerateWeeklyMealPlan(ctx, *profile, mode)
	if err != nil {
		s.logger.Warn("Weekly plan generation failed",
			zap.String("profile_id", profile.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, storage.KeyWeeklyPlans, nutrition.ReplacePlan(plans, *plan)); err != nil {
		return nil, err
	}

	s.logger.Info("Weekly plan stored",
		zap.String("profile_id", plan.UserID),
		zap.String("plan_id", plan.PlanID),
	)
	return plan, nil
}

// ListPlans returns every stored plan
func (s *Service) ListPlans(ctx context.Context) ([]nutrition.WeeklyPlan, error) {
	return s.load(ctx)
}

// GetPlan returns the plan of one profile
func (s *Service) GetPlan(ctx context.Context, userID string) (*nutrition.WeeklyPlan, error) {
	plans, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].UserID == userID {
			return &plans[i], nil
		}
	}
	return nil, apperrors.NewPlanNotFoundError(userID)
}

// DeletePlan removes the plan of one profile
func (s *Service) DeletePlan(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]nutrition.WeeklyPlan, 0, len(plans))
	for _, p := range plans {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return apperrors.NewPlanNotFoundError(userID)
	}
	return s.docs.Save(ctx, storage.KeyWeeklyPlans, kept)
}

func (s *Service) load(ctx context.Context) ([]nutrition.WeeklyPlan, error) {
	var plans []nutrition.WeeklyPlan
	found, err := s.docs.Load(ctx, storage.KeyWeeklyPlans, &plans)
	if err != nil {
		return nil, err
	}
	if !found || plans == nil {
		return []nutrition.WeeklyPlan{}, nil
	}
	return plans, nil
}
