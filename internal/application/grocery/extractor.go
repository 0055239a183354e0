// Package grocery manages the shopping list and derives it from meal plans.
package grocery

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nutrismart/planner/internal/domain/nutrition"
)

var (
	// trailing "200g" or "(200g)" at the end of an item name
	nameQuantityPattern = regexp.MustCompile(`\(?\s*(\d+\s*\w+)\s*\)?$`)
	// first "2 cups" anywhere in a description
	descriptionQuantityPattern = regexp.MustCompile(`(\d+\s*\w+)`)
)

type tally struct {
	name     string
	count    int
	quantity string
}

// ExtractGroceryList derives a fresh shopping list from every meal item of
// the plan. Items are keyed by lower-cased trimmed name. The quantity is a
// best-effort guess: the first occurrence of a name decides it, so
// "200g Paneer" and "Paneer (250g)" collapse into one entry carrying
// whichever quantity was seen first. Names seen more than once without a
// parsed quantity become "<count> units". Output follows first-seen order.
func ExtractGroceryList(plan nutrition.WeeklyPlan) []nutrition.GroceryItem {
	index := make(map[string]int)
	var tallies []*tally

	for _, day := range plan.Days {
		for _, meal := range day.Meals {
			for _, item := range meal.Items {
				key := strings.ToLower(strings.TrimSpace(item.Name))
				if key == "" {
					continue
				}
				quantity := guessQuantity(item)

				if i, ok := index[key]; ok {
					tallies[i].count++
					continue
				}
				index[key] = len(tallies)
				tallies = append(tallies, &tally{name: key, count: 1, quantity: quantity})
			}
		}
	}

	items := make([]nutrition.GroceryItem, 0, len(tallies))
	for _, t := range tallies {
		quantity := t.quantity
		if t.count > 1 && quantity == nutrition.DefaultQuantity {
			quantity = fmt.Sprintf("%d units", t.count)
		}
		items = append(items, nutrition.GroceryItem{
			ID:       uuid.NewString(),
			Name:     capitalizeFirst(t.name),
			Quantity: quantity,
			Category: nutrition.CategoryUncategorized,
		})
	}
	return items
}

// guessQuantity tries the item name first, then its description
func guessQuantity(item nutrition.MealItem) string {
	if m := nameQuantityPattern.FindStringSubmatch(item.Name); m != nil && m[1] != "" {
		return m[1]
	}
	if m := descriptionQuantityPattern.FindStringSubmatch(item.Description); m != nil && m[1] != "" {
		return m[1]
	}
	return nutrition.DefaultQuantity
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
