package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriswap/backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func pageOf(count int, idList ...string) *domain.SearchPage {
	page := &domain.SearchPage{Count: count, Products: []domain.RawProduct{}}
	for _, id := range idList {
		page.Products = append(page.Products, rawProduct(id, "b", 2, 0.9, 1))
	}
	return page
}

func TestParseSearchMode(t *testing.T) {
	mode, err := ParseSearchMode("")
	require.NoError(t, err)
	assert.Equal(t, SearchComplete, mode)

	mode, err = ParseSearchMode("more")
	require.NoError(t, err)
	assert.Equal(t, SearchMore, mode)

	_, err = ParseSearchMode("all")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSearch_Complete(t *testing.T) {
	catalog := &MockCatalog{
		searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
			return pageOf(45, "1", "2"), nil
		},
	}
	svc := NewSearchService(catalog, newTestMapper(), 0, nil)
	session := NewSearchSession()

	state := svc.Search(context.Background(), session, SearchRequest{
		Query:  strPtr("chocolat"),
		SortBy: strPtr("popularity"),
		Mode:   SearchComplete,
	})

	assert.Equal(t, "chocolat", state.Query)
	assert.Equal(t, "popularity", state.SortBy)
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, 3, state.TotalPages)
	assert.Equal(t, []string{"1", "2"}, ids(state.Results))
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.LastError)

	require.Len(t, catalog.searchQueries, 1)
	assert.Equal(t, domain.SearchQuery{Terms: "chocolat", SortBy: "popularity", Page: 1, PageSize: DefaultSearchPageSize}, catalog.searchQueries[0])
}

func TestSearch_MoreAppendsAndKeepsQuery(t *testing.T) {
	calls := 0
	catalog := &MockCatalog{
		searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
			calls++
			return pageOf(60, fmt.Sprintf("p%d-a", q.Page), fmt.Sprintf("p%d-b", q.Page)), nil
		},
	}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)
	session := NewSearchSession()
	ctx := context.Background()

	svc.Search(ctx, session, SearchRequest{Query: strPtr("pain"), Mode: SearchComplete})
	svc.Search(ctx, session, SearchRequest{Mode: SearchMore})
	state := svc.Search(ctx, session, SearchRequest{Mode: SearchMore})

	assert.Equal(t, 3, state.CurrentPage)
	assert.Equal(t, 3, state.TotalPages)
	assert.Equal(t, []string{"p1-a", "p1-b", "p2-a", "p2-b", "p3-a", "p3-b"}, ids(state.Results))
	assert.Equal(t, "pain", catalog.searchQueries[2].Terms)
	assert.Equal(t, 3, catalog.searchQueries[2].Page)

	// a new complete search resets to one page
	state = svc.Search(ctx, session, SearchRequest{Query: strPtr(""), Mode: SearchComplete})
	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, []string{"p1-a", "p1-b"}, ids(state.Results))
	assert.Equal(t, "", catalog.searchQueries[3].Terms)
}

func TestSearch_FailureKeepsPreviousResults(t *testing.T) {
	fail := false
	catalog := &MockCatalog{
		searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
			if fail {
				return nil, domain.ErrTimeout
			}
			return pageOf(40, "1", "2"), nil
		},
	}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)
	session := NewSearchSession()
	ctx := context.Background()

	svc.Search(ctx, session, SearchRequest{Query: strPtr("riz")})
	fail = true
	state := svc.Search(ctx, session, SearchRequest{Mode: SearchMore})

	assert.Equal(t, 1, state.CurrentPage)
	assert.Equal(t, []string{"1", "2"}, ids(state.Results))
	assert.Equal(t, domain.UserMessage(domain.ErrTimeout), state.LastError)
	assert.False(t, state.IsLoading)

	// the next success clears the error
	fail = false
	state = svc.Search(ctx, session, SearchRequest{Mode: SearchMore})
	assert.Empty(t, state.LastError)
	assert.Equal(t, 2, state.CurrentPage)
}

func TestSearch_MalformedResponseIsEmpty(t *testing.T) {
	catalog := &MockCatalog{
		searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
			return nil, fmt.Errorf("decode: %w", domain.ErrMalformedResponse)
		},
	}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)

	state := svc.Search(context.Background(), NewSearchSession(), SearchRequest{Query: strPtr("x")})

	assert.Empty(t, state.Results)
	assert.NotNil(t, state.Results)
	assert.Equal(t, 0, state.TotalPages)
	assert.Empty(t, state.LastError)
}

func TestSearch_InvalidModeDoesNotFetch(t *testing.T) {
	catalog := &MockCatalog{}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)

	state := svc.Search(context.Background(), NewSearchSession(), SearchRequest{Mode: "sideways"})

	assert.Equal(t, domain.UserMessage(domain.ErrInvalidRequest), state.LastError)
	assert.Empty(t, catalog.searchQueries)
}

func TestSearch_InvalidModeKeepsSessionQuery(t *testing.T) {
	catalog := &MockCatalog{searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
		return pageOf(45, "a"), nil
	}}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)
	session := NewSearchSession()
	ctx := context.Background()
	svc.Search(ctx, session, SearchRequest{Query: strPtr("nutella"), SortBy: strPtr("popularity_key")})

	state := svc.Search(ctx, session, SearchRequest{Query: strPtr("chips"), SortBy: strPtr("created_t"), Mode: "sideways"})

	assert.Equal(t, "nutella", state.Query)
	assert.Equal(t, "popularity_key", state.SortBy)
	assert.NotEmpty(t, state.LastError)

	svc.Search(ctx, session, SearchRequest{Mode: SearchMore})
	require.Len(t, catalog.searchQueries, 2)
	assert.Equal(t, "nutella", catalog.searchQueries[1].Terms)
	assert.Equal(t, 2, catalog.searchQueries[1].Page)
}

func TestSearch_StaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	catalog := &MockCatalog{
		searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
			if q.Terms == "slow" {
				close(started)
				<-release
				return pageOf(1, "old"), nil
			}
			return pageOf(1, "new"), nil
		},
	}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)
	session := NewSearchSession()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Search(ctx, session, SearchRequest{Query: strPtr("slow")})
	}()
	<-started
	assert.True(t, session.State().IsLoading)

	state := svc.Search(ctx, session, SearchRequest{Query: strPtr("fast")})
	assert.Equal(t, []string{"new"}, ids(state.Results))
	assert.False(t, state.IsLoading)

	close(release)
	wg.Wait()

	final := session.State()
	assert.Equal(t, "fast", final.Query)
	assert.Equal(t, []string{"new"}, ids(final.Results))
	assert.False(t, final.IsLoading)
}

func TestSearchSession_StateIsSnapshot(t *testing.T) {
	catalog := &MockCatalog{
		searchFn: func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
			return pageOf(1, "1"), nil
		},
	}
	svc := NewSearchService(catalog, newTestMapper(), 20, nil)
	session := NewSearchSession()

	state := svc.Search(context.Background(), session, SearchRequest{Query: strPtr("x")})
	state.Results[0].ID = "mutated"

	assert.Equal(t, "1", session.State().Results[0].ID)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(1, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
}
