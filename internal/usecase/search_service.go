package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/logger"
)

// DefaultSearchPageSize is the fixed catalog page size for text search
const DefaultSearchPageSize = 20

// SearchMode selects between a fresh search and loading the next page
type SearchMode string

const (
	SearchComplete SearchMode = "complete"
	SearchMore     SearchMode = "more"
)

// ParseSearchMode validates a mode string; empty means complete.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case "", SearchComplete:
		return SearchComplete, nil
	case SearchMore:
		return SearchMore, nil
	default:
		return "", fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidRequest, s)
	}
}

// SearchRequest is one search call. A nil Query or SortBy keeps the
// session's previous value; a non-nil empty string clears it.
type SearchRequest struct {
	Query  *string
	SortBy *string
	Mode   SearchMode
}

// SearchSession owns one user's search state. Calls on the same session are
// serialized around the upstream request, and only the response of the most
// recently issued call is applied.
type SearchSession struct {
	mu    sync.Mutex
	state domain.SearchState
	seq   uint64
}

// NewSearchSession returns an empty session
func NewSearchSession() *SearchSession {
	return &SearchSession{
		state: domain.SearchState{Results: []domain.ProductSummary{}},
	}
}

// State returns a snapshot of the session state
func (s *SearchSession) State() domain.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *SearchSession) snapshot() domain.SearchState {
	out := s.state
	out.Results = append([]domain.ProductSummary(nil), s.state.Results...)
	if out.Results == nil {
		out.Results = []domain.ProductSummary{}
	}
	return out
}

// SearchService runs paginated catalog searches
type SearchService struct {
	catalog     domain.Catalog
	transformer domain.Transformer
	pageSize    int
	log         *zap.Logger
}

// NewSearchService creates a search service
func NewSearchService(catalog domain.Catalog, transformer domain.Transformer, pageSize int, log *zap.Logger) *SearchService {
	if pageSize <= 0 {
		pageSize = DefaultSearchPageSize
	}
	return &SearchService{
		catalog:     catalog,
		transformer: transformer,
		pageSize:    pageSize,
		log:         logger.OrNop(log).Named("search"),
	}
}

// Search runs one search call against session and returns the resulting
// state. It never returns an error: failures land in LastError, and the page
// counter and result list keep their pre-call values.
func (s *SearchService) Search(ctx context.Context, session *SearchSession, req SearchRequest) domain.SearchState {
	session.mu.Lock()
	mode, err := ParseSearchMode(string(req.Mode))
	if err != nil {
		session.state.LastError = domain.UserMessage(err)
		session.state.IsLoading = false
		defer session.mu.Unlock()
		return session.snapshot()
	}
	if req.Query != nil {
		session.state.Query = *req.Query
	}
	if req.SortBy != nil {
		session.state.SortBy = *req.SortBy
	}

	page := 1
	if mode == SearchMore {
		page = session.state.CurrentPage + 1
	}
	session.seq++
	seq := session.seq
	session.state.IsLoading = true
	session.state.LastError = ""
	query := domain.SearchQuery{
		Terms:    session.state.Query,
		SortBy:   session.state.SortBy,
		Page:     page,
		PageSize: s.pageSize,
	}
	session.mu.Unlock()

	result, err := s.catalog.Search(ctx, query)

	session.mu.Lock()
	defer session.mu.Unlock()

	if seq != session.seq {
		s.log.Debug("Discarding superseded search response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", session.seq))
		return session.snapshot()
	}
	session.state.IsLoading = false

	if err != nil {
		if !errors.Is(err, domain.ErrMalformedResponse) {
			s.log.Warn("Search failed",
				zap.String("terms", query.Terms),
				zap.Int("page", page),
				zap.Error(err))
			session.state.LastError = domain.UserMessage(err)
			return session.snapshot()
		}
		s.log.Warn("Malformed search response treated as empty", zap.Error(err))
		result = &domain.SearchPage{Products: []domain.RawProduct{}}
	}

	summaries := s.transformer.ToSummaries(result.Products)

	switch mode {
	case SearchComplete:
		session.state.Results = summaries
		session.state.CurrentPage = 1
		session.state.TotalPages = totalPages(result.Count, s.pageSize)
	case SearchMore:
		session.state.CurrentPage = page
		session.state.Results = append(session.state.Results, summaries...)
	}

	return session.snapshot()
}

func totalPages(count, pageSize int) int {
	if count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
