// Package suggestions answers the one-shot diet questions
package suggestions

import (
	"context"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
)

// Gateway is the subset of the AI gateway the suggestions need
type Gateway interface {
	GetProteinRichFoodSuggestions(ctx context.Context, profile nutrition.UserProfile) ([]nutrition.ProteinSource, error)
	GetBabyFoodSuggestions(ctx context.Context, ageMonths int) (*nutrition.BabyFoodSuggestion, error)
	SuggestMealFromIngredients(ctx context.Context, ingredients []string, profile *nutrition.UserProfile) (string, error)
}

// Service resolves profiles and forwards to the gateway
type Service struct {
	profiles inbound.ProfileService
	gateway  Gateway
	logger   *zap.Logger
}

// NewService creates a suggestion service
func NewService(profiles inbound.ProfileService, gateway Gateway, logger *zap.Logger) *Service {
	return &Service{
		profiles: profiles,
		gateway:  gateway,
		logger:   logger.Named("suggestion-service"),
	}
}

// ProteinSources suggests protein-rich foods for a profile
func (s *Service) ProteinSources(ctx context.Context, profileID string) ([]nutrition.ProteinSource, error) {
	profile, err := s.profiles.ResolveProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.gateway.GetProteinRichFoodSuggestions(ctx, *profile)
}

// BabyFood suggests foods for an infant's age in months
func (s *Service) BabyFood(ctx context.Context, ageMonths int) (*nutrition.BabyFoodSuggestion, error) {
	return s.gateway.GetBabyFoodSuggestions(ctx, ageMonths)
}

// MealIdeas suggests dishes from the given ingredients. The returned text is
// displayable even when err is non-nil. Without an explicit profile the
// active profile is used when there is one.
func (s *Service) MealIdeas(ctx context.Context, ingredients []string, profileID string) (string, error) {
	profile, err := s.profiles.ResolveProfile(ctx, profileID)
	if err != nil {
		if profileID != "" {
			return "", err
		}
		s.logger.Debug("No active profile for meal ideas", zap.Error(err))
		profile = nil
	}
	return s.gateway.SuggestMealFromIngredients(ctx, ingredients, profile)
}
