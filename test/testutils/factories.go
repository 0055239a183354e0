// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/nutrismart/planner/internal/domain/nutrition"
)

// ProfileFactory provides methods to create test profiles
type ProfileFactory struct {
	faker *gofakeit.Faker
}

// NewProfileFactory creates a new profile factory with seeded faker
func NewProfileFactory(seed int64) *ProfileFactory {
	return &ProfileFactory{faker: gofakeit.New(seed)}
}

// Profile builds a valid profile with random enumerated values
func (f *ProfileFactory) Profile() nutrition.UserProfile {
	age := f.faker.Number(20, 59)
	return nutrition.UserProfile{
		ID:                uuid.NewString(),
		Name:              f.faker.Name(),
		AgeGroup:          nutrition.AgeGroupAdult,
		Age:               &age,
		DietaryPreference: nutrition.DietaryPreferences[f.faker.Number(0, len(nutrition.DietaryPreferences)-1)],
		ActivityLevel:     nutrition.ActivityLevels[f.faker.Number(0, len(nutrition.ActivityLevels)-1)],
		HealthConditions:  []string{},
	}
}

// ProfileBuilder provides a fluent interface for building test profiles
type ProfileBuilder struct {
	profile nutrition.UserProfile
}

// NewProfileBuilder starts from a minimal adult vegetarian profile
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{profile: nutrition.UserProfile{
		ID:                uuid.NewString(),
		Name:              "Test User",
		AgeGroup:          nutrition.AgeGroupAdult,
		DietaryPreference: nutrition.DietVegetarian,
		ActivityLevel:     nutrition.ActivityModerate,
		HealthConditions:  []string{},
	}}
}

// WithID sets the profile id
func (b *ProfileBuilder) WithID(id string) *ProfileBuilder {
	b.profile.ID = id
	return b
}

// WithName sets the profile name
func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.profile.Name = name
	return b
}

// WithAge sets the precise age
func (b *ProfileBuilder) WithAge(age int) *ProfileBuilder {
	b.profile.Age = &age
	return b
}

// WithDiet sets the dietary preference
func (b *ProfileBuilder) WithDiet(diet nutrition.DietaryPreference) *ProfileBuilder {
	b.profile.DietaryPreference = diet
	return b
}

// WithConditions sets the health conditions
func (b *ProfileBuilder) WithConditions(conditions ...string) *ProfileBuilder {
	b.profile.HealthConditions = conditions
	return b
}

// WithMedications sets the medications text
func (b *ProfileBuilder) WithMedications(medications string) *ProfileBuilder {
	b.profile.Medications = medications
	return b
}

// WithTargets sets daily calorie and protein targets
func (b *ProfileBuilder) WithTargets(calories, protein float64) *ProfileBuilder {
	b.profile.TargetCalories = &calories
	b.profile.TargetProtein = &protein
	return b
}

// Build returns the profile
func (b *ProfileBuilder) Build() nutrition.UserProfile {
	return b.profile
}

// PlanBuilder builds weekly plans day by day
type PlanBuilder struct {
	plan nutrition.WeeklyPlan
}

// NewPlanBuilder starts an empty plan for userID
func NewPlanBuilder(userID string) *PlanBuilder {
	return &PlanBuilder{plan: nutrition.WeeklyPlan{
		UserID:    userID,
		PlanID:    uuid.NewString(),
		StartDate: "2026-01-05",
	}}
}

// WithDay appends a day with a single lunch holding items
func (b *PlanBuilder) WithDay(day string, items ...nutrition.MealItem) *PlanBuilder {
	b.plan.Days = append(b.plan.Days, nutrition.DailyPlan{
		Day: day,
		Meals: []nutrition.Meal{{
			Type:  nutrition.MealLunch,
			Items: items,
		}},
	})
	return b
}

// WithFullWeek appends all seven weekdays with one generated item each
func (b *PlanBuilder) WithFullWeek() *PlanBuilder {
	for i, day := range nutrition.Weekdays {
		b.WithDay(day, Item(fmt.Sprintf("Dish %d", i+1), ""))
	}
	return b
}

// Build returns the plan
func (b *PlanBuilder) Build() nutrition.WeeklyPlan {
	return b.plan
}

// Item is a shorthand for a meal item with a name and description
func Item(name, description string) nutrition.MealItem {
	return nutrition.MealItem{Name: name, Description: description}
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
