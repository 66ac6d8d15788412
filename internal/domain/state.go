package domain

// SearchState is the observable state of a search session.
// Results are in server rank order and are never re-sorted downstream.
type SearchState struct {
	Query       string           `json:"queryText"`
	SortBy      string           `json:"sortKey"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	Results     []ProductSummary `json:"resultList"`
	IsLoading   bool             `json:"isLoading"`
	LastError   string           `json:"lastError,omitempty"`
}

// SuggestionState is the outcome of one suggestion run.
type SuggestionState struct {
	Results   []ProductSummary `json:"resultList"`
	IsLoading bool             `json:"isLoading"`
	LastError string           `json:"lastError,omitempty"`
}
