package grocery

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/domain/nutrition"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// PlanSource looks up the stored plan of a profile
type PlanSource interface {
	GetPlan(ctx context.Context, userID string) (*nutrition.WeeklyPlan, error)
}

// Service implements the grocery list use cases
type Service struct {
	docs   *storage.Documents
	plans  PlanSource
	logger *zap.Logger

	mu sync.Mutex
}

// NewService creates a grocery service
func NewService(docs *storage.Documents, plans PlanSource, logger *zap.Logger) *Service {
	return &Service{
		docs:   docs,
		plans:  plans,
		logger: logger.Named("grocery-service"),
	}
}

// ListItems returns the current list
func (s *Service) ListItems(ctx context.Context) ([]nutrition.GroceryItem, error) {
	return s.load(ctx)
}

// AddItem appends a manually entered item
func (s *Service) AddItem(ctx context.Context, name, quantity string) (*nutrition.GroceryItem, error) {
	item, err := nutrition.NewManualGroceryItem(name, quantity)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, storage.KeyGroceryList, append(items, item)); err != nil {
		return nil, err
	}

	s.logger.Info("Grocery item added", zap.String("name", item.Name), zap.String("quantity", item.Quantity))
	return &item, nil
}

// ToggleItem flips the checked flag of an item
func (s *Service) ToggleItem(ctx context.Context, id string) (*nutrition.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	items, err = nutrition.ToggleGroceryItem(items, id)
	if errors.Is(err, nutrition.ErrGroceryItemNotFound) {
		return nil, apperrors.NewGroceryItemNotFoundError(id)
	}
	if err := s.docs.Save(ctx, storage.KeyGroceryList, items); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, apperrors.NewGroceryItemNotFoundError(id)
}

// RemoveItem deletes one item
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	items, err = nutrition.RemoveGroceryItem(items, id)
	if errors.Is(err, nutrition.ErrGroceryItemNotFound) {
		return apperrors.NewGroceryItemNotFoundError(id)
	}
	return s.docs.Save(ctx, storage.KeyGroceryList, items)
}

// Clear empties the list
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Clearing grocery list")
	return s.docs.Save(ctx, storage.KeyGroceryList, []nutrition.GroceryItem{})
}

// GenerateFromPlan replaces the whole list with the items extracted from
// the stored plan of userID. An extraction that yields nothing leaves the
// current list untouched.
func (s *Service) GenerateFromPlan(ctx context.Context, userID string) ([]nutrition.GroceryItem, error) {
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := ExtractGroceryList(*plan)
	if len(items) == 0 {
		s.logger.Info("No ingredients extracted from plan", zap.String("user_id", userID))
		return items, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.docs.Save(ctx, storage.KeyGroceryList, items); err != nil {
		return nil, err
	}

	s.logger.Info("Grocery list generated from plan",
		zap.String("user_id", userID),
		zap.String("plan_id", plan.PlanID),
		zap.Int("items", len(items)),
	)
	return items, nil
}

func (s *Service) load(ctx context.Context) ([]nutrition.GroceryItem, error) {
	var items []nutrition.GroceryItem
	found, err := s.docs.Load(ctx, storage.KeyGroceryList, &items)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		return []nutrition.GroceryItem{}, nil
	}
	return items, nil
}
