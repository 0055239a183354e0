// Package nutrition holds the planner's domain model: dietary profiles,
// weekly meal plans, grocery items, chat messages and progress entries.
package nutrition

import (
	"strings"

	"github.com/google/uuid"
)

// AgeGroup is the coarse age bracket of a profile
type AgeGroup string

const (
	AgeGroupInfant AgeGroup = "Infant (0-1 years)"
	AgeGroupChild  AgeGroup = "Child (1-12 years)"
	AgeGroupTeen   AgeGroup = "Teen (13-19 years)"
	AgeGroupAdult  AgeGroup = "Adult (20-59 years)"
	AgeGroupSenior AgeGroup = "Senior (60+ years)"
)

// AgeGroups lists every valid age bracket in ascending order
var AgeGroups = []AgeGroup{AgeGroupInfant, AgeGroupChild, AgeGroupTeen, AgeGroupAdult, AgeGroupSenior}

// IsValid reports whether the age group is one of the known brackets
func (a AgeGroup) IsValid() bool {
	for _, g := range AgeGroups {
		if a == g {
			return true
		}
	}
	return false
}

// DietaryPreference is the diet a profile follows
type DietaryPreference string

const (
	DietVegetarian    DietaryPreference = "Vegetarian"
	DietNonVegetarian DietaryPreference = "Non-Vegetarian"
	DietVegan         DietaryPreference = "Vegan"
)

// DietaryPreferences lists every valid diet
var DietaryPreferences = []DietaryPreference{DietVegetarian, DietNonVegetarian, DietVegan}

// IsValid reports whether the preference is known
func (d DietaryPreference) IsValid() bool {
	for _, p := range DietaryPreferences {
		if d == p {
			return true
		}
	}
	return false
}

// ActivityLevel is a five step activity scale
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "Sedentary (little or no exercise)"
	ActivityLight      ActivityLevel = "Light (light exercise/sports 1-3 days/week)"
	ActivityModerate   ActivityLevel = "Moderate (moderate exercise/sports 3-5 days/week)"
	ActivityActive     ActivityLevel = "Active (hard exercise/sports 6-7 days a week)"
	ActivityVeryActive ActivityLevel = "Very Active (very hard exercise/sports & physical job)"
)

// ActivityLevels lists the scale from least to most active
var ActivityLevels = []ActivityLevel{ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive}

// IsValid reports whether the level is on the scale
func (l ActivityLevel) IsValid() bool {
	for _, a := range ActivityLevels {
		if l == a {
			return true
		}
	}
	return false
}

// UserProfile describes the person a plan is generated for.
// Optional numeric fields are nil when not provided.
type UserProfile struct {
	ID                string            `json:"id"`
	Name              string            `json:"name" validate:"required,min=1,max=100"`
	AgeGroup          AgeGroup          `json:"ageGroup" validate:"required,age_group"`
	Age               *int              `json:"age,omitempty" validate:"omitempty,min=0,max=130"`
	DietaryPreference DietaryPreference `json:"dietaryPreference" validate:"required,dietary_preference"`
	ActivityLevel     ActivityLevel     `json:"activityLevel" validate:"required,activity_level"`
	HealthConditions  []string          `json:"healthConditions"`
	Medications       string            `json:"medications"`
	TargetCalories    *float64          `json:"targetCalories,omitempty" validate:"omitempty,gt=0"`
	TargetProtein     *float64          `json:"targetProtein,omitempty" validate:"omitempty,gt=0"`
}

// NewDefaultProfile builds the profile seeded into an empty store
func NewDefaultProfile() UserProfile {
	return UserProfile{
		ID:                uuid.NewString(),
		Name:              DefaultProfileName,
		AgeGroup:          AgeGroupAdult,
		DietaryPreference: DietVegetarian,
		ActivityLevel:     ActivityModerate,
		HealthConditions:  []string{},
	}
}

// DefaultProfileName is the name given to the seeded profile
const DefaultProfileName = "Default User"

// Normalize trims free text fields and drops blank health conditions
func (p *UserProfile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Medications = strings.TrimSpace(p.Medications)

	conditions := make([]string, 0, len(p.HealthConditions))
	for _, c := range p.HealthConditions {
		if c = strings.TrimSpace(c); c != "" {
			conditions = append(conditions, c)
		}
	}
	p.HealthConditions = conditions
}

// HasMedications reports whether any medication text is present
func (p UserProfile) HasMedications() bool {
	return strings.TrimSpace(p.Medications) != ""
}
