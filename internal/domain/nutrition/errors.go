package nutrition

import "errors"

// Domain errors for nutrition planning

var (
	// Lookup errors
	ErrProfileNotFound     = errors.New("profile not found")
	ErrPlanNotFound        = errors.New("weekly plan not found")
	ErrGroceryItemNotFound = errors.New("grocery item not found")
	ErrProgressNotFound    = errors.New("progress entry not found")

	// Input errors
	ErrEmptyGroceryName = errors.New("grocery item name must not be empty")
	ErrEmptyMessage     = errors.New("chat message must not be empty")
	ErrInvalidPlanMode  = errors.New("unknown meal plan mode")
	ErrNoProfiles       = errors.New("no profiles available")
)
