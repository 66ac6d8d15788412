package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Grade is a Nutri-Score letter. Values outside a..e collapse to GradeUnknown,
// except the upstream "not-applicable" marker which is kept as is.
type Grade string

const (
	GradeA             Grade = "a"
	GradeB             Grade = "b"
	GradeC             Grade = "c"
	GradeD             Grade = "d"
	GradeE             Grade = "e"
	GradeNotApplicable Grade = "not-applicable"
	GradeUnknown       Grade = "unknown"
)

var gradeRanks = map[Grade]int{
	GradeA: 0,
	GradeB: 1,
	GradeC: 2,
	GradeD: 3,
	GradeE: 4,
}

// ParseGrade normalizes an upstream grade string.
func ParseGrade(s string) Grade {
	g := Grade(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := gradeRanks[g]; ok || g == GradeNotApplicable {
		return g
	}
	return GradeUnknown
}

// Rank returns 0 for "a" through 4 for "e". ok is false for grades that
// cannot be ranked.
func (g Grade) Rank() (rank int, ok bool) {
	rank, ok = gradeRanks[g]
	return rank, ok
}

// Known reports whether the grade is one of a..e.
func (g Grade) Known() bool {
	_, ok := gradeRanks[g]
	return ok
}

// NovaGroup is the 1-4 NOVA processing class. NovaUnknown is the zero value.
type NovaGroup int

const (
	NovaUnknown NovaGroup = 0
	NovaMin     NovaGroup = 1
	NovaMax     NovaGroup = 4
)

// NovaFromFloat maps an upstream numeric value into the NOVA domain.
func NovaFromFloat(v float64) NovaGroup {
	n := NovaGroup(v)
	if float64(n) != v || n < NovaMin || n > NovaMax {
		return NovaUnknown
	}
	return n
}

// Known reports whether the group is within 1..4.
func (n NovaGroup) Known() bool {
	return n >= NovaMin && n <= NovaMax
}

func (n NovaGroup) String() string {
	if !n.Known() {
		return "unknown"
	}
	return strconv.Itoa(int(n))
}

// MarshalJSON renders a known group as a number and anything else as "unknown".
func (n NovaGroup) MarshalJSON() ([]byte, error) {
	if !n.Known() {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.Itoa(int(n))), nil
}

// UnmarshalJSON accepts a number, a numeric string or "unknown".
func (n *NovaGroup) UnmarshalJSON(data []byte) error {
	var num Number
	if err := json.Unmarshal(data, &num); err != nil {
		*n = NovaUnknown
		return nil
	}
	*n = NovaFromFloat(float64(num))
	return nil
}

// ProductSummary is the lightweight record used in result lists.
type ProductSummary struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"imageUrl"`
	Brand       string    `json:"brand"`
	DisplayName string    `json:"displayName"`
	NutriScore  Grade     `json:"nutriScoreGrade"`
	NovaGroup   NovaGroup `json:"novaGroup"`
	Category    string    `json:"category"`
}

// ProductDetail is the full record shown on a product page.
type ProductDetail struct {
	ProductSummary
	Categories         []string          `json:"categories"`
	LastUpdate         string            `json:"lastUpdateDate"`
	Quantity           string            `json:"quantity"`
	ServingSize        string            `json:"servingSize"`
	Ingredients        string            `json:"ingredientsText"`
	Nutriments         map[string]string `json:"nutrientTable"`
	NutrientLevels     map[string]string `json:"nutrientLevels"`
	ManufacturingPlace string            `json:"manufacturingPlace"`
	Link               string            `json:"externalLink"`
}
