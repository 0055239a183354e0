package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nutrismart/planner/internal/domain/nutrition"
)

// Placeholders substituted for absent profile fields
const (
	notSpecified  = "None specified"
	autoCalculate = "auto-calculate based on profile"
	notProvided   = "Not provided"
)

const mealPlanSchema = "```typescript\n" +
	"interface MealItem { name: string; description?: string; calories?: number; protein?: number; carbs?: number; fats?: number; fiber?: number; notes?: string; }\n" +
	"interface Meal { type: 'Breakfast' | 'Lunch' | 'Dinner' | 'Snack'; items: MealItem[]; totalCalories?: number; totalProtein?: number; }\n" +
	"interface DailyPlan { day: 'Monday' | 'Tuesday' | 'Wednesday' | 'Thursday' | 'Friday' | 'Saturday' | 'Sunday'; meals: Meal[]; dailyTotalCalories?: number; dailyTotalProtein?: number; notes?: string; }\n" +
	"interface WeeklyPlan { userId: string; planId: string; startDate: string; days: DailyPlan[]; summary?: { totalCaloriesAvg: number; totalProteinAvg: number; micronutrientFocus?: string[]; }; }\n" +
	"```"

const proteinSourceSchema = "```typescript\n" +
	"interface ProteinSource {\n" +
	"  name: string;\n" +
	"  type: 'Vegetarian' | 'Non-Vegetarian' | 'Vegan';\n" +
	"  servingSize: string;\n" +
	"  proteinContent: string;\n" +
	"  benefits?: string;\n" +
	"}\n" +
	"```"

const babyFoodSchema = "```typescript\n" +
	"interface BabyFoodSuggestion {\n" +
	"  ageRange: string; // e.g., \"6-8 months\"\n" +
	"  foodType: 'Pureed' | 'Mashed' | 'Finger Food';\n" +
	"  suggestions: string[]; // List of food items or simple meal ideas\n" +
	"  tips?: string; // General tips for this stage\n" +
	"}\n" +
	"```"

// BuildMealPlanPrompt renders the weekly plan request for a profile
func BuildMealPlanPrompt(profile nutrition.UserProfile, mode nutrition.PlanMode) string {
	modes := make([]string, len(nutrition.PlanModes))
	for i, m := range nutrition.PlanModes {
		modes[i] = string(m)
	}

	var b strings.Builder
	b.WriteString("You are an expert nutritionist. Generate a 7-day detailed meal plan for the following user profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", ageLabel(profile))
	fmt.Fprintf(&b, "- Dietary Preference: %s\n", profile.DietaryPreference)
	fmt.Fprintf(&b, "- Activity Level: %s\n", profile.ActivityLevel)
	fmt.Fprintf(&b, "- Health Conditions: %s\n", healthConditionsLabel(profile))
	fmt.Fprintf(&b, "- Medications: %s\n", medicationsLabel(profile))
	fmt.Fprintf(&b, "- Target Daily Calories: %s\n", targetLabel(profile.TargetCalories, " kcal"))
	fmt.Fprintf(&b, "- Target Daily Protein: %s\n", targetLabel(profile.TargetProtein, "g"))
	fmt.Fprintf(&b, "- Meal Plan Mode: %s (Options: %s)\n", mode, strings.Join(modes, ", "))
	b.WriteString("\nInstructions:\n")
	b.WriteString("1. Provide a plan for 7 days (Monday to Sunday).\n")
	b.WriteString("2. For each day, include Breakfast, Lunch, Dinner, and one optional Snack.\n")
	b.WriteString("3. For each meal item, provide: name, estimated calories, protein (g), carbs (g), fats (g), fiber (g). Include a brief description if helpful.\n")
	b.WriteString("4. Include Indian and Global meal options.\n")
	if profile.HasMedications() {
		b.WriteString("5. Medications are listed: be mindful of common food-drug interactions (e.g., grapefruit with statins). Add a note if a meal is specifically designed to avoid an interaction.\n")
	} else {
		b.WriteString("5. If medications are listed, be mindful of common food-drug interactions (e.g., grapefruit with statins). Add a note if a meal is specifically designed to avoid an interaction.\n")
	}
	b.WriteString("6. Provide estimated total calories and protein for each meal and for each day.\n")
	b.WriteString("7. Return the response as a JSON object matching this TypeScript interface:\n")
	b.WriteString(mealPlanSchema)
	b.WriteString("\n")
	fmt.Fprintf(&b, "8. For the 'planId', generate a UUID. For 'userId', use %q. For 'startDate', use today's date in YYYY-MM-DD format.\n", profile.ID)
	b.WriteString("9. For meal item notes, you can add things like \"Iron-rich\", \"Good source of Vitamin C\", etc.\n")
	b.WriteString("10. For daily notes, add advice like \"Focus on hydration\" or specific nutrient focus for that day.\n")
	return b.String()
}

// BuildProteinSourcesPrompt renders the protein source request
func BuildProteinSourcesPrompt(profile nutrition.UserProfile) string {
	var b strings.Builder
	b.WriteString("Suggest 5-7 protein-rich food sources suitable for a user with the following profile:\n")
	fmt.Fprintf(&b, "- Age Group: %s\n", profile.AgeGroup)
	fmt.Fprintf(&b, "- Dietary Preference: %s\n", profile.DietaryPreference)
	b.WriteString("\nFor each food source, provide:\n")
	b.WriteString("- name: Name of the food (e.g., \"Lentils\", \"Chicken Breast\", \"Tofu\")\n")
	b.WriteString("- type: \"Vegetarian\", \"Non-Vegetarian\", or \"Vegan\" (must match user's preference or be suitable)\n")
	b.WriteString("- servingSize: Typical serving size (e.g., \"1 cup cooked\", \"100g\")\n")
	b.WriteString("- proteinContent: Protein in grams for that serving size (e.g., \"18g\")\n")
	b.WriteString("- benefits: Optional brief benefits or notes (e.g., \"Rich in fiber\", \"Lean protein source\")\n")
	b.WriteString("\nReturn the response as a JSON array of objects matching this TypeScript interface:\n")
	b.WriteString(proteinSourceSchema)
	b.WriteString("\nPrioritize sources commonly available and relevant to the user's dietary preference.\n")
	return b.String()
}

// BuildBabyFoodPrompt renders the infant feeding request for a bracket
func BuildBabyFoodPrompt(bracket nutrition.BabyAgeBracket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide baby food suggestions for a baby aged %s.\n", bracket.AgeRange)
	fmt.Fprintf(&b, "Focus on %s.\n", bracket.FoodType)
	b.WriteString("Include tips for weaning, introducing new foods, and allergy awareness for this age.\n")
	b.WriteString("Pediatrician-approved type suggestions.\n")
	b.WriteString("\nReturn the response as a JSON object matching this TypeScript interface:\n")
	b.WriteString(babyFoodSchema)
	b.WriteString("\n")
	return b.String()
}

// BuildChatSystemInstruction renders the diet coach persona. A nil profile
// is rendered as "Not provided".
func BuildChatSystemInstruction(profile *nutrition.UserProfile) string {
	serialized := notProvided
	if profile != nil {
		if raw, err := json.Marshal(profile); err == nil {
			serialized = string(raw)
		}
	}

	var b strings.Builder
	b.WriteString("You are NutriSmart Planner's AI Diet Coach.\n")
	b.WriteString("Provide helpful, accurate, and safe advice on nutrition, diet, healthy eating habits.\n")
	b.WriteString("If asked about food-medication interactions, provide general information (e.g., grapefruit and statins) but always emphasize consulting a doctor or pharmacist for personal medical advice.\n")
	fmt.Fprintf(&b, "If the user provides their profile, tailor advice accordingly. User profile: %s.\n", serialized)
	b.WriteString("Always advise consulting a doctor or registered dietitian for personalized medical or dietary advice before making significant changes.\n")
	b.WriteString("If you use external information to answer a question about recent events, news, or specific up-to-date facts, cite your sources.\n")
	return b.String()
}

// BuildIngredientSuggestionPrompt renders the pantry meal idea request
func BuildIngredientSuggestionPrompt(ingredients []string, profile *nutrition.UserProfile) string {
	profileText := "No profile provided."
	if profile != nil {
		profileText = fmt.Sprintf("Age: %s, Dietary Preference: %s, Health Conditions: %s",
			profile.AgeGroup, profile.DietaryPreference, healthConditionsLabel(*profile))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a creative chef. Suggest 2-3 healthy meal ideas using ONLY the following ingredients: %s.\n", strings.Join(ingredients, ", "))
	fmt.Fprintf(&b, "Consider the user's profile if available: %s\n", profileText)
	b.WriteString("Provide a brief description for each meal idea. Keep it concise.\n")
	b.WriteString("Example output format:\n")
	b.WriteString("\"1. Meal Idea One: Brief description.\n 2. Meal Idea Two: Brief description.\"\n")
	return b.String()
}

// ageLabel prefers the precise age over the bracket
func ageLabel(p nutrition.UserProfile) string {
	if p.Age != nil && *p.Age > 0 {
		return strconv.Itoa(*p.Age)
	}
	return string(p.AgeGroup)
}

func healthConditionsLabel(p nutrition.UserProfile) string {
	if len(p.HealthConditions) == 0 {
		return notSpecified
	}
	return strings.Join(p.HealthConditions, ", ")
}

func medicationsLabel(p nutrition.UserProfile) string {
	if !p.HasMedications() {
		return notSpecified
	}
	return strings.TrimSpace(p.Medications)
}

func targetLabel(v *float64, unit string) string {
	if v == nil || *v <= 0 {
		return autoCalculate
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}
