package domain

// IntakeProfile selects a set of reference daily intakes
type IntakeProfile string

const (
	ProfileWomen IntakeProfile = "women"
	ProfileMen   IntakeProfile = "men"
)

// ReferenceIntakes holds daily reference values (kcal for energy, grams otherwise)
type ReferenceIntakes struct {
	Energy        float64 `json:"energy"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturatedFat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugars        float64 `json:"sugars"`
	Salt          float64 `json:"salt"`
	Fiber         float64 `json:"fiber"`
	Proteins      float64 `json:"proteins"`
}

var referenceIntakes = map[IntakeProfile]ReferenceIntakes{
	ProfileWomen: {Energy: 2000, Fat: 70, SaturatedFat: 20, Carbohydrates: 260, Sugars: 90, Salt: 6, Fiber: 25, Proteins: 50},
	ProfileMen:   {Energy: 2500, Fat: 95, SaturatedFat: 30, Carbohydrates: 300, Sugars: 120, Salt: 6, Fiber: 30, Proteins: 50},
}

// IntakesFor returns the intakes for a profile; unknown profiles get the women table.
func IntakesFor(profile IntakeProfile) (IntakeProfile, ReferenceIntakes) {
	if v, ok := referenceIntakes[profile]; ok {
		return profile, v
	}
	return ProfileWomen, referenceIntakes[ProfileWomen]
}

var novaDescriptions = map[NovaGroup]string{
	1: "Aliments non transformés / minimalement",
	2: "Ingrédients culinaires transformés",
	3: "Aliments transformés",
	4: "Produits ultra-transformés",
}

// NovaDescription returns the display text for a group, or "" when unknown.
func NovaDescription(group NovaGroup) string {
	return novaDescriptions[group]
}
