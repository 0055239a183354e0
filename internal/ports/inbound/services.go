// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases HTTP handlers drive
package inbound

import (
	"context"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/domain/user"
)

// ProfileService manages dietary profiles and the active profile
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]nutrition.UserProfile, error)
	GetProfile(ctx context.Context, id string) (*nutrition.UserProfile, error)
	CreateProfile(ctx context.Context, profile nutrition.UserProfile) (*nutrition.UserProfile, error)
	UpdateProfile(ctx context.Context, profile nutrition.UserProfile) (*nutrition.UserProfile, error)
	DeleteProfile(ctx context.Context, id string) error

	ActiveProfile(ctx context.Context) (*nutrition.UserProfile, error)
	SetActiveProfile(ctx context.Context, id string) error
	// ResolveProfile returns the profile with id, or the active profile when id is empty
	ResolveProfile(ctx context.Context, id string) (*nutrition.UserProfile, error)
}

// PlanService generates and stores weekly plans, one per profile
type PlanService interface {
	GeneratePlan(ctx context.Context, profileID string, mode nutrition.PlanMode) (*nutrition.WeeklyPlan, error)
	ListPlans(ctx context.Context) ([]nutrition.WeeklyPlan, error)
	GetPlan(ctx context.Context, userID string) (*nutrition.WeeklyPlan, error)
	DeletePlan(ctx context.Context, userID string) error
}

// GroceryService manages the shopping list
type GroceryService interface {
	ListItems(ctx context.Context) ([]nutrition.GroceryItem, error)
	AddItem(ctx context.Context, name, quantity string) (*nutrition.GroceryItem, error)
	ToggleItem(ctx context.Context, id string) (*nutrition.GroceryItem, error)
	RemoveItem(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	GenerateFromPlan(ctx context.Context, userID string) ([]nutrition.GroceryItem, error)
}

// ProgressService records body metrics per profile
type ProgressService interface {
	History(ctx context.Context, profileID string) ([]nutrition.ProgressData, error)
	Record(ctx context.Context, profileID string, entry nutrition.ProgressData) ([]nutrition.ProgressData, error)
	Remove(ctx context.Context, profileID, date string) ([]nutrition.ProgressData, error)
	Summary(ctx context.Context, profileID string) (*nutrition.ProgressSummary, error)
}

// SuggestionService answers the one-shot AI questions
type SuggestionService interface {
	ProteinSources(ctx context.Context, profileID string) ([]nutrition.ProteinSource, error)
	BabyFood(ctx context.Context, ageMonths int) (*nutrition.BabyFoodSuggestion, error)
	MealIdeas(ctx context.Context, ingredients []string, profileID string) (string, error)
}

// ChatExchange is the pair of messages produced by one chat turn
type ChatExchange struct {
	Question nutrition.ChatMessage `json:"question"`
	Answer   nutrition.ChatMessage `json:"answer"`
	// Fallback is set when Answer is the canned reply, not a model answer
	Fallback bool `json:"fallback,omitempty"`
}

// ChatService runs the diet coach conversation
type ChatService interface {
	Messages(ctx context.Context) ([]nutrition.ChatMessage, error)
	Send(ctx context.Context, text, profileID string) (*ChatExchange, error)
	Clear(ctx context.Context) error
}

// Session is an issued session token and the user it belongs to
type Session struct {
	Token string    `json:"token"`
	User  user.Info `json:"user"`
}

// AuthService signs users in with a provider token
type AuthService interface {
	SignIn(ctx context.Context, accessToken string) (*Session, error)
	Authenticate(ctx context.Context, sessionToken string) (*user.User, error)
	SignOut(ctx context.Context, accessToken string) error
}
