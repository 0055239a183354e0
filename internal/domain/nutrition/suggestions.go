package nutrition

// ProteinSource is a protein-rich food recommended for a profile
type ProteinSource struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	ServingSize    string `json:"servingSize"`
	ProteinContent string `json:"proteinContent"`
	Benefits       string `json:"benefits"`
}

// BabyFoodType is the texture stage of infant food
type BabyFoodType string

const (
	BabyFoodPureed     BabyFoodType = "Pureed"
	BabyFoodMashed     BabyFoodType = "Mashed"
	BabyFoodFingerFood BabyFoodType = "Finger Food"
)

// BabyFoodSuggestion is guidance for an infant's age bracket
type BabyFoodSuggestion struct {
	AgeRange    string       `json:"ageRange"`
	FoodType    BabyFoodType `json:"foodType"`
	Suggestions []string     `json:"suggestions"`
	Tips        string       `json:"tips,omitempty"`
}

// BabyAgeBracket is the local classification of an infant's age
type BabyAgeBracket struct {
	AgeRange string
	FoodType BabyFoodType
}

// Supported infant ages in months
const (
	MinBabyAgeMonths = 6
	MaxBabyAgeMonths = 24
)

// LookupBabyAgeBracket maps an age in months onto its bracket. Ages outside
// 6 to 24 months have no bracket.
func LookupBabyAgeBracket(ageMonths int) (BabyAgeBracket, bool) {
	switch {
	case ageMonths >= 6 && ageMonths <= 8:
		return BabyAgeBracket{AgeRange: "6-8 months", FoodType: BabyFoodPureed}, true
	case ageMonths >= 9 && ageMonths <= 10:
		return BabyAgeBracket{AgeRange: "8-10 months", FoodType: BabyFoodMashed}, true
	case ageMonths >= 11 && ageMonths <= 12:
		return BabyAgeBracket{AgeRange: "10-12 months", FoodType: BabyFoodFingerFood}, true
	case ageMonths >= 13 && ageMonths <= MaxBabyAgeMonths:
		return BabyAgeBracket{AgeRange: "12-24 months", FoodType: BabyFoodFingerFood}, true
	default:
		return BabyAgeBracket{}, false
	}
}

// OutOfRangeBabyFood is returned for ages without a bracket
func OutOfRangeBabyFood() BabyFoodSuggestion {
	return BabyFoodSuggestion{
		AgeRange:    "N/A",
		FoodType:    BabyFoodPureed,
		Suggestions: []string{"Age out of typical range for specific suggestions via this tool. Consult pediatrician."},
		Tips:        "Consult pediatrician for specific advice.",
	}
}
