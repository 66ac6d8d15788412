package domain

// RawProduct is a catalog record as returned by the Open Food Facts API.
// Every field is optional; the transform layer owns the defaults.
type RawProduct struct {
	ID                  Opt[string]            `json:"id"`
	Code                Opt[string]            `json:"code"`
	ImageFrontSmallURL  Opt[string]            `json:"image_front_small_url"`
	ImageFrontURL       Opt[string]            `json:"image_front_url"`
	Brands              Opt[string]            `json:"brands"`
	GenericNameFr       Opt[string]            `json:"generic_name_fr"`
	ProductName         Opt[string]            `json:"product_name"`
	NutriscoreGrade     Opt[string]            `json:"nutriscore_grade"`
	NovaGroup           Opt[Number]            `json:"nova_group"`
	ComparedToCategory  Opt[string]            `json:"compared_to_category"`
	CategoriesHierarchy Opt[TagList]           `json:"categories_hierarchy"`
	Categories          Opt[TagList]           `json:"categories"`
	LastUpdatedT        Opt[Number]            `json:"last_updated_t"`
	CreatedT            Opt[Number]            `json:"created_t"`
	Quantity            Opt[string]            `json:"quantity"`
	ServingSize         Opt[string]            `json:"serving_size"`
	IngredientsText     Opt[string]            `json:"ingredients_text_with_allergens_fr"`
	Nutriments          Opt[map[string]any]    `json:"nutriments"`
	NutrientLevels      Opt[map[string]string] `json:"nutrient_levels"`
	ManufacturingPlaces Opt[string]            `json:"manufacturing_places"`
	Link                Opt[string]            `json:"link"`
	Completeness        Opt[Number]            `json:"completeness"`
	PopularityKey       Opt[Number]            `json:"popularity_key"`
}

// Identifier returns id, falling back to the barcode.
func (p *RawProduct) Identifier() string {
	if p.ID.Set && p.ID.Value != "" {
		return p.ID.Value
	}
	return p.Code.Or("")
}

// SearchPage is one page of a catalog text search.
type SearchPage struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Products []RawProduct `json:"products"`
}

// SearchQuery describes a paginated text search.
type SearchQuery struct {
	Terms    string
	SortBy   string
	Page     int
	PageSize int
}

// CandidateQuery describes the broad suggestion candidate fetch.
type CandidateQuery struct {
	Category   string
	SearchTerm string
	PageSize   int
	Fields     []string
}
