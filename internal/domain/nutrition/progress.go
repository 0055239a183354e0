package nutrition

import (
	"sort"
	"time"
)

// ProgressData is one day's body metrics for a profile.
// Date is unique within a profile's history.
type ProgressData struct {
	Date        string   `json:"date" validate:"required,iso_date"`
	Weight      *float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
	EnergyLevel *int     `json:"energyLevel,omitempty" validate:"omitempty,min=1,max=5"`
	Notes       string   `json:"notes,omitempty" validate:"max=1000"`
}

// UpsertProgress inserts entry or replaces the entry with the same date and
// returns the history sorted by date ascending.
func UpsertProgress(history []ProgressData, entry ProgressData) []ProgressData {
	out := make([]ProgressData, 0, len(history)+1)
	replaced := false
	for _, p := range history {
		if p.Date == entry.Date {
			out = append(out, entry)
			replaced = true
			continue
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, entry)
	}
	SortProgress(out)
	return out
}

// RemoveProgress drops the entry for date, if any
func RemoveProgress(history []ProgressData, date string) ([]ProgressData, bool) {
	for i, p := range history {
		if p.Date == date {
			return append(history[:i:i], history[i+1:]...), true
		}
	}
	return history, false
}

// SortProgress orders entries by date ascending. Dates use DateLayout, so
// lexical order equals chronological order.
func SortProgress(history []ProgressData) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
}

// ValidDate reports whether s is a calendar date in DateLayout
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// MacroTargets is the daily macro split derived from a profile's targets
type MacroTargets struct {
	Calories        float64 `json:"calories"`
	ProteinGrams    float64 `json:"proteinGrams"`
	ProteinCalories float64 `json:"proteinCalories"`
	CarbsGrams      float64 `json:"carbsGrams"`
	FatsGrams       float64 `json:"fatsGrams"`
}

// Calories per gram of each macro
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
	carbShare          = 0.55
	fatShare           = 0.45
)

// TargetMacros splits the calories left after protein 55/45 between carbs
// and fats. It returns false when the profile has no calorie and protein
// targets to split.
func TargetMacros(p UserProfile) (MacroTargets, bool) {
	if p.TargetCalories == nil || p.TargetProtein == nil {
		return MacroTargets{}, false
	}

	proteinKcal := *p.TargetProtein * kcalPerGramProtein
	remaining := *p.TargetCalories - proteinKcal
	if remaining < 0 {
		remaining = 0
	}

	return MacroTargets{
		Calories:        *p.TargetCalories,
		ProteinGrams:    *p.TargetProtein,
		ProteinCalories: proteinKcal,
		CarbsGrams:      remaining * carbShare / kcalPerGramCarbs,
		FatsGrams:       remaining * fatShare / kcalPerGramFat,
	}, true
}

// ProgressSummary condenses a profile's history
type ProgressSummary struct {
	Entries       int           `json:"entries"`
	LatestWeight  *float64      `json:"latestWeight,omitempty"`
	WeightChange  *float64      `json:"weightChange,omitempty"`
	AverageEnergy *float64      `json:"averageEnergy,omitempty"`
	Targets       *MacroTargets `json:"targets,omitempty"`
}

// SummarizeProgress computes the summary for a sorted history
func SummarizeProgress(p UserProfile, history []ProgressData) ProgressSummary {
	summary := ProgressSummary{Entries: len(history)}

	var first, last *float64
	var energyTotal, energyCount int
	for i := range history {
		if w := history[i].Weight; w != nil {
			if first == nil {
				first = w
			}
			last = w
		}
		if e := history[i].EnergyLevel; e != nil {
			energyTotal += *e
			energyCount++
		}
	}

	if last != nil {
		latest := *last
		change := *last - *first
		summary.LatestWeight = &latest
		summary.WeightChange = &change
	}
	if energyCount > 0 {
		avg := float64(energyTotal) / float64(energyCount)
		summary.AverageEnergy = &avg
	}
	if targets, ok := TargetMacros(p); ok {
		summary.Targets = &targets
	}
	return summary
}
