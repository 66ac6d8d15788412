package usecase

import (
	"regexp"
	"strings"
)

// Compiled patterns for search term cleanup
var (
	// Matches quantities like "125 g", "1,5 l", "33cl", "4 x 125 g"
	quantityPattern = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:x\s*\d+(?:[.,]\d+)?\s*)?(?:kg|mg|g|cl|ml|dl|l|oz|lbs?)\b`)

	// Matches pack counts like "x4", "lot de 6", "6 pots", "12 pack"
	packPattern = regexp.MustCompile(`(?i)\bx\s*\d+\b|\blot\s+de\s+\d+\b|\b\d+\s*(?:pots?|sachets?|tranches?|bouteilles?|canettes?|pack|pk|ct)\b`)

	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	multiSpacePattern  = regexp.MustCompile(`\s+`)
)

// maxTermWords bounds the derived term; longer names over-constrain the query
const maxTermWords = 3

// termNoiseWords are marketing and packaging words that do not describe the food
var termNoiseWords = map[string]bool{
	// French
	"le": true, "la": true, "les": true, "de": true, "des": true, "du": true,
	"au": true, "aux": true, "et": true, "à": true, "en": true, "avec": true,
	"nouveau": true, "nouvelle": true, "format": true, "familial": true,
	"offre": true, "spéciale": true, "promo": true, "lot": true, "pot": true,
	"pots": true, "bouteille": true, "sachet": true, "boîte": true, "barquette": true,
	// English
	"the": true, "and": true, "with": true, "of": true, "new": true,
	"value": true, "family": true, "size": true, "pack": true, "bottle": true,
	"box": true, "bag": true, "jar": true,
}

// SuggestionTerm derives a short search term from a product's display name
// and brand. The brand is only used when the name yields nothing.
func SuggestionTerm(name, brand string) string {
	if term := cleanTerm(name); term != "" {
		return term
	}
	// Brands are comma-separated upstream; the first is the owner.
	if idx := strings.Index(brand, ","); idx >= 0 {
		brand = brand[:idx]
	}
	return cleanTerm(brand)
}

func cleanTerm(s string) string {
	if s == "" {
		return ""
	}
	cleaned := quantityPattern.ReplaceAllString(s, " ")
	cleaned = packPattern.ReplaceAllString(cleaned, " ")
	cleaned = punctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(multiSpacePattern.ReplaceAllString(cleaned, " "))

	var kept []string
	for _, word := range strings.Fields(cleaned) {
		if termNoiseWords[word] || isNumeric(word) {
			continue
		}
		kept = append(kept, word)
		if len(kept) == maxTermWords {
			break
		}
	}
	return strings.Join(kept, " ")
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
