package off

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/language"

	"github.com/nutriswap/backend/internal/domain"
)

// Defaults applied when the catalog omits a field. These are the only
// fallbacks in the transform layer.
const (
	PlaceholderImage = "/logo.png"
	DefaultText      = ""
)

// Catalog field lists. Each query must request exactly the fields its
// transform reads, otherwise the response will not contain them.
var (
	SummaryFields = []string{
		"id", "code", "image_front_small_url", "brands", "generic_name_fr", "product_name",
		"nutriscore_grade", "nova_group", "compared_to_category",
	}

	DetailFields = []string{
		"id", "code", "image_front_url", "brands", "generic_name_fr", "product_name",
		"compared_to_category", "categories_hierarchy", "categories", "last_updated_t",
		"nutriscore_grade", "nova_group", "quantity", "serving_size",
		"ingredients_text_with_allergens_fr", "nutriments", "nutrient_levels",
		"manufacturing_places", "link",
	}

	// CandidateFields is the lightweight set used to rank suggestion candidates.
	CandidateFields = []string{
		"id", "code", "nutriscore_grade", "nova_group", "completeness", "popularity_key",
	}

	// LatestFields adds the creation time and completeness to the summary set.
	LatestFields = append(append([]string{}, SummaryFields...), "created_t", "completeness")
)

type dateLocale struct {
	tag    language.Tag
	layout string
}

// dateLocales lists the supported display languages. The first entry is
// the fallback used when nothing matches.
var dateLocales = []dateLocale{
	{language.Und, time.DateOnly},
	{language.French, "02/01/2006"},
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "02.01.2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
}

var dateLayoutMatcher = language.NewMatcher(lo.Map(dateLocales, func(l dateLocale, _ int) language.Tag {
	return l.tag
}))

// Mapper converts raw catalog records into summary and detail records.
type Mapper struct {
	location   *time.Location
	dateLayout string
}

// NewMapper creates a mapper rendering dates for the given BCP 47 locale
// (for example "fr-FR") in the given time zone.
func NewMapper(locale string, location *time.Location) *Mapper {
	if location == nil {
		location = time.Local
	}
	return &Mapper{
		location:   location,
		dateLayout: layoutFor(locale),
	}
}

func layoutFor(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return time.DateOnly
	}
	_, index, confidence := dateLayoutMatcher.Match(tag)
	if confidence == language.No {
		return time.DateOnly
	}
	return dateLocales[index].layout
}

// ToSummary maps a list record. It never fails.
func (m *Mapper) ToSummary(raw *domain.RawProduct) domain.ProductSummary {
	if raw == nil {
		raw = &domain.RawProduct{}
	}
	image := raw.ImageFrontSmallURL.Or(PlaceholderImage)
	if image == "" {
		image = PlaceholderImage
	}
	return domain.ProductSummary{
		ID:          raw.Identifier(),
		ImageURL:    image,
		Brand:       raw.Brands.Or(DefaultText),
		DisplayName: displayName(raw),
		NutriScore:  grade(raw),
		NovaGroup:   nova(raw),
		Category:    category(raw),
	}
}

// ToSummaries maps a list of records preserving order.
func (m *Mapper) ToSummaries(raws []domain.RawProduct) []domain.ProductSummary {
	return lo.Map(raws, func(raw domain.RawProduct, _ int) domain.ProductSummary {
		return m.ToSummary(&raw)
	})
}

// ToDetail maps a product page record. It never fails.
func (m *Mapper) ToDetail(raw *domain.RawProduct) domain.ProductDetail {
	if raw == nil {
		raw = &domain.RawProduct{}
	}
	summary := m.ToSummary(raw)
	summary.ImageURL = raw.ImageFrontURL.Or(PlaceholderImage)
	if summary.ImageURL == "" {
		summary.ImageURL = PlaceholderImage
	}

	return domain.ProductDetail{
		ProductSummary:     summary,
		Categories:         categories(raw),
		LastUpdate:         m.formatDate(raw.LastUpdatedT),
		Quantity:           raw.Quantity.Or(DefaultText),
		ServingSize:        raw.ServingSize.Or(DefaultText),
		Ingredients:        raw.IngredientsText.Or(DefaultText),
		Nutriments:         nutriments(raw.Nutriments.Or(nil)),
		NutrientLevels:     levels(raw.NutrientLevels.Or(nil)),
		ManufacturingPlace: raw.ManufacturingPlaces.Or(DefaultText),
		Link:               raw.Link.Or(DefaultText),
	}
}

func (m *Mapper) formatDate(ts domain.Opt[domain.Number]) string {
	if !ts.Set || ts.Value <= 0 {
		return ""
	}
	return time.Unix(int64(ts.Value), 0).In(m.location).Format(m.dateLayout)
}

func displayName(raw *domain.RawProduct) string {
	if name := raw.GenericNameFr.Or(""); name != "" {
		return name
	}
	return raw.ProductName.Or(DefaultText)
}

func grade(raw *domain.RawProduct) domain.Grade {
	return domain.ParseGrade(raw.NutriscoreGrade.Or(string(domain.GradeUnknown)))
}

func nova(raw *domain.RawProduct) domain.NovaGroup {
	if !raw.NovaGroup.Set {
		return domain.NovaUnknown
	}
	return domain.NovaFromFloat(float64(raw.NovaGroup.Value))
}

// category prefers the comparison category and otherwise takes the most
// specific tag of whichever category field the endpoint returned.
func category(raw *domain.RawProduct) string {
	if c := raw.ComparedToCategory.Or(""); c != "" {
		return c
	}
	if tags := categories(raw); len(tags) > 0 {
		return tags[len(tags)-1]
	}
	return DefaultText
}

// categories reads the hierarchy list when present, else the joined string form.
func categories(raw *domain.RawProduct) []string {
	if raw.CategoriesHierarchy.Set && len(raw.CategoriesHierarchy.Value) > 0 {
		return append([]string{}, raw.CategoriesHierarchy.Value...)
	}
	if raw.Categories.Set {
		return append([]string{}, raw.Categories.Value...)
	}
	return []string{}
}

func nutriments(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		}
	}
	return out
}

func levels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = strings.TrimSpace(value)
	}
	return out
}
