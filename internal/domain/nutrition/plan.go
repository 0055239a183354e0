package nutrition

import (
	"time"

	"github.com/google/uuid"
)

// Weekday names used as day keys in a weekly plan
const (
	Monday    = "Monday"
	Tuesday   = "Tuesday"
	Wednesday = "Wednesday"
	Thursday  = "Thursday"
	Friday    = "Friday"
	Saturday  = "Saturday"
	Sunday    = "Sunday"
)

// Weekdays is the canonical plan order
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// RestDayNote is attached to days the model left out of a plan
const RestDayNote = "Rest day or adjust as needed."

// DateLayout is the format of plan start dates and progress dates
const DateLayout = "2006-01-02"

// MealType is a meal slot within a day
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

// PlanMode steers the character of a generated plan
type PlanMode string

const (
	PlanModeBalanced   PlanMode = "Balanced"
	PlanModeWeightLoss PlanMode = "Weight Loss"
	PlanModeFestive    PlanMode = "Festive"
	PlanModeLightMeals PlanMode = "Light Meals"
)

// PlanModes lists the supported plan modes
var PlanModes = []PlanMode{PlanModeBalanced, PlanModeWeightLoss, PlanModeFestive, PlanModeLightMeals}

// IsValid reports whether the mode is supported
func (m PlanMode) IsValid() bool {
	for _, mode := range PlanModes {
		if m == mode {
			return true
		}
	}
	return false
}

// MealItem is one dish or ingredient within a meal.
// Numeric fields are grams, except calories which are kcal.
type MealItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	Protein     *float64 `json:"protein,omitempty"`
	Carbs       *float64 `json:"carbs,omitempty"`
	Fats        *float64 `json:"fats,omitempty"`
	Fiber       *float64 `json:"fiber,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Meal is a slot of the day with its items
type Meal struct {
	Type          MealType   `json:"type"`
	Items         []MealItem `json:"items"`
	TotalCalories *float64   `json:"totalCalories,omitempty"`
	TotalProtein  *float64   `json:"totalProtein,omitempty"`
}

// DailyPlan holds the meals of one weekday
type DailyPlan struct {
	Day                string   `json:"day"`
	Meals              []Meal   `json:"meals"`
	DailyTotalCalories *float64 `json:"dailyTotalCalories,omitempty"`
	DailyTotalProtein  *float64 `json:"dailyTotalProtein,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

// PlanSummary carries the model's weekly averages
type PlanSummary struct {
	TotalCaloriesAvg   *float64 `json:"totalCaloriesAvg,omitempty"`
	TotalProteinAvg    *float64 `json:"totalProteinAvg,omitempty"`
	MicronutrientFocus []string `json:"micronutrientFocus,omitempty"`
}

// WeeklyPlan is a seven day plan for one profile.
// UserID is a lookup key, not ownership.
type WeeklyPlan struct {
	UserID    string       `json:"userId"`
	PlanID    string       `json:"planId"`
	StartDate string       `json:"startDate"`
	Days      []DailyPlan  `json:"days"`
	Summary   *PlanSummary `json:"summary,omitempty"`
}

// NewRestDay builds the placeholder used for a missing weekday
func NewRestDay(day string) DailyPlan {
	calories, protein := 0.0, 0.0
	return DailyPlan{
		Day:                day,
		Meals:              []Meal{},
		DailyTotalCalories: &calories,
		DailyTotalProtein:  &protein,
		Notes:              RestDayNote,
	}
}

// CompleteWeek reduces the plan's days to exactly the seven
// canonical weekdays in Monday to Sunday order. The first entry for a weekday
// wins; unknown day names are dropped and missing days become rest days.
func (p *WeeklyPlan) CompleteWeek() {
	byDay := make(map[string]DailyPlan, len(p.Days))
	for _, d := range p.Days {
		if _, seen := byDay[d.Day]; !seen {
			byDay[d.Day] = d
		}
	}

	days := make([]DailyPlan, 0, len(Weekdays))
	for _, name := range Weekdays {
		d, ok := byDay[name]
		if !ok {
			d = NewRestDay(name)
		}
		if d.Meals == nil {
			d.Meals = []Meal{}
		}
		days = append(days, d)
	}
	p.Days = days
}

// Stamp fills in identity fields: the owner always comes from the caller,
// a plan id and start date only when the model left them empty.
func (p *WeeklyPlan) Stamp(userID string, now time.Time) {
	p.UserID = userID
	if p.PlanID == "" {
		p.PlanID = uuid.NewString()
	}
	if p.StartDate == "" {
		p.StartDate = now.Format(DateLayout)
	}
}

// MissingDays lists the canonical weekdays absent from the plan
func (p WeeklyPlan) MissingDays() []string {
	present := make(map[string]bool, len(p.Days))
	for _, d := range p.Days {
		present[d.Day] = true
	}

	var missing []string
	for _, name := range Weekdays {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReplacePlan returns plans with any plan for the same user replaced by plan.
// The new plan goes to the end of the collection.
func ReplacePlan(plans []WeeklyPlan, plan WeeklyPlan) []WeeklyPlan {
	out := make([]WeeklyPlan, 0, len(plans)+1)
	for _, p := range plans {
		if p.UserID != plan.UserID {
			out = append(out, p)
		}
	}
	return append(out, plan)
}
