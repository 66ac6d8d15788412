package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/infrastructure/off"
)

func referenceC3() SuggestionRequest {
	return SuggestionRequest{
		ProductID:  "ref",
		Category:   "en:chocolate-spreads",
		Name:       "Pâte à tartiner noisettes 750 g",
		Brand:      "Nutella",
		NutriScore: domain.GradeC,
		NovaGroup:  3,
	}
}

func TestImproves(t *testing.T) {
	ref := Reference{ID: "ref", Grade: domain.GradeC, Nova: 3}
	tests := []struct {
		name string
		cand Candidate
		want bool
	}{
		{name: "better grade", cand: Candidate{Grade: domain.GradeB, Nova: 4}, want: true},
		{name: "better grade unknown nova", cand: Candidate{Grade: domain.GradeA}, want: true},
		{name: "same grade lower nova", cand: Candidate{Grade: domain.GradeC, Nova: 2}, want: true},
		{name: "same grade same nova", cand: Candidate{Grade: domain.GradeC, Nova: 3}, want: false},
		{name: "same grade unknown nova", cand: Candidate{Grade: domain.GradeC}, want: false},
		{name: "worse grade", cand: Candidate{Grade: domain.GradeD, Nova: 1}, want: false},
		{name: "not applicable", cand: Candidate{Grade: domain.GradeNotApplicable, Nova: 1}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Improves(tt.cand, ref))
		})
	}

	t.Run("reference without grade", func(t *testing.T) {
		assert.False(t, Improves(Candidate{Grade: domain.GradeA, Nova: 1}, Reference{Grade: domain.GradeUnknown}))
		assert.False(t, Improves(Candidate{Grade: domain.GradeA, Nova: 1}, Reference{Grade: domain.GradeNotApplicable, Nova: 4}))
	})

	t.Run("same grade reference nova unknown", func(t *testing.T) {
		assert.False(t, Improves(Candidate{Grade: domain.GradeC, Nova: 1}, Reference{Grade: domain.GradeC}))
	})
}

func TestFilterCandidates(t *testing.T) {
	ref := Reference{ID: "ref", Grade: domain.GradeC, Nova: 3}
	cands := []Candidate{
		{ID: "ref", Grade: domain.GradeA, Nova: 1, Completeness: 1},
		{ID: "", Grade: domain.GradeA, Nova: 1, Completeness: 1},
		{ID: "unknown", Grade: domain.GradeUnknown, Nova: 1, Completeness: 1},
		{ID: "worse", Grade: domain.GradeD, Nova: 1, Completeness: 1},
		{ID: "incomplete", Grade: domain.GradeA, Nova: 1, Completeness: 0.34},
		{ID: "floor", Grade: domain.GradeB, Nova: 1, Completeness: 0.35},
		{ID: "ok", Grade: domain.GradeC, Nova: 2, Completeness: 0.9},
	}

	got := FilterCandidates(cands, ref, 0.35)

	require.Len(t, got, 2)
	assert.Equal(t, "floor", got[0].ID)
	assert.Equal(t, "ok", got[1].ID)
}

func TestRankCandidates(t *testing.T) {
	cands := []Candidate{
		{ID: "c2", Grade: domain.GradeC, Nova: 2},
		{ID: "b4-low", Grade: domain.GradeB, Nova: 4, Popularity: 10},
		{ID: "a-unknown", Grade: domain.GradeA},
		{ID: "b4-high", Grade: domain.GradeB, Nova: 4, Popularity: 50},
		{ID: "a1", Grade: domain.GradeA, Nova: 1, Popularity: 1},
		{ID: "b1", Grade: domain.GradeB, Nova: 1},
	}

	RankCandidates(cands)

	got := make([]string, len(cands))
	for i, c := range cands {
		got[i] = c.ID
	}
	assert.Equal(t, []string{"a1", "a-unknown", "b1", "b4-high", "b4-low", "c2"}, got)
}

func TestSelectSuggestions_Limit(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 10; i++ {
		cands = append(cands, Candidate{ID: fmt.Sprint(i), Grade: domain.GradeA, Nova: 1, Completeness: 1, Popularity: float64(i)})
	}

	got := SelectSuggestions(cands, Reference{ID: "ref", Grade: domain.GradeB, Nova: 1}, 0.35, 4)

	require.Len(t, got, 4)
	assert.Equal(t, "9", got[0].ID)
	assert.Equal(t, "6", got[3].ID)
}

func TestSuggest_WithoutEnrichment(t *testing.T) {
	catalog := &MockCatalog{
		candidates: []domain.RawProduct{
			rawProduct("ref", "a", 1, 1, 100),
			rawProduct("c2", "c", 2, 0.8, 5),
			rawProduct("b4", "b", 4, 0.8, 5),
			rawProduct("a-nova-unknown", "a", 0, 0.8, 5),
			rawProduct("d1", "d", 1, 0.8, 5),
			rawProduct("a-incomplete", "a", 1, 0.1, 5),
			rawProduct("a1", "a", 1, 0.5, 1),
		},
	}
	svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{}, nil)

	state := svc.Suggest(context.Background(), referenceC3())

	assert.Equal(t, []string{"a1", "a-nova-unknown", "b4", "c2"}, ids(state.Results))
	assert.Empty(t, state.LastError)
	assert.False(t, state.IsLoading)
	assert.Empty(t, catalog.codeCalls)

	require.Len(t, catalog.candidateQueries, 1)
	q := catalog.candidateQueries[0]
	assert.Equal(t, "en:chocolate-spreads", q.Category)
	assert.Equal(t, DefaultCandidatePageSize, q.PageSize)
	assert.Empty(t, q.SearchTerm)
	assert.Contains(t, q.Fields, "popularity_key")
	assert.Contains(t, q.Fields, "product_name")
}

func TestSuggest_EnrichmentRestoresRankOrder(t *testing.T) {
	enriched := func(id, name string) domain.RawProduct {
		return domain.RawProduct{Code: domain.Some(id), ProductName: domain.Some(name), NutriscoreGrade: domain.Some("a")}
	}
	catalog := &MockCatalog{
		candidates: []domain.RawProduct{
			rawProduct("b", "b", 1, 1, 1),
			rawProduct("a", "a", 1, 1, 1),
			rawProduct("c", "a", 2, 1, 1),
		},
		// returned in an arbitrary order, with "c" missing
		byCodes: []domain.RawProduct{
			enriched("b", "Biscuit"),
			enriched("a", "Amande"),
		},
	}
	svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{Enrich: true, ScopeByTerm: true}, nil)

	state := svc.Suggest(context.Background(), referenceC3())

	require.Empty(t, state.LastError)
	assert.Equal(t, []string{"a", "c", "b"}, ids(state.Results))
	assert.Equal(t, "Amande", state.Results[0].DisplayName)
	assert.Equal(t, "product c", state.Results[1].DisplayName)
	assert.Equal(t, "Biscuit", state.Results[2].DisplayName)

	require.Len(t, catalog.codeCalls, 1)
	assert.Equal(t, []string{"a", "c", "b"}, catalog.codeCalls[0])
	assert.Equal(t, off.CandidateFields, catalog.candidateQueries[0].Fields)
	assert.Equal(t, "pâte tartiner noisettes", catalog.candidateQueries[0].SearchTerm)
}

func TestSuggest_EnrichmentFailureKeepsRanking(t *testing.T) {
	catalog := &MockCatalog{
		candidates: []domain.RawProduct{rawProduct("a", "a", 1, 1, 1)},
		byCodesErr: domain.ErrTimeout,
	}
	svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{Enrich: true}, nil)

	state := svc.Suggest(context.Background(), referenceC3())

	assert.Equal(t, []string{"a"}, ids(state.Results))
	assert.Equal(t, domain.UserMessage(domain.ErrTimeout), state.LastError)
}

func TestSuggest_Failures(t *testing.T) {
	t.Run("candidate fetch fails", func(t *testing.T) {
		catalog := &MockCatalog{candidatesErr: &domain.UpstreamError{Status: 503}}
		svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{}, nil)

		state := svc.Suggest(context.Background(), referenceC3())

		assert.Empty(t, state.Results)
		assert.NotNil(t, state.Results)
		assert.Contains(t, state.LastError, "503")
	})

	t.Run("malformed candidates are empty", func(t *testing.T) {
		catalog := &MockCatalog{candidatesErr: domain.ErrMalformedResponse}
		svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{}, nil)

		state := svc.Suggest(context.Background(), referenceC3())

		assert.Empty(t, state.Results)
		assert.Empty(t, state.LastError)
	})

	t.Run("missing category", func(t *testing.T) {
		catalog := &MockCatalog{}
		svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{}, nil)
		req := referenceC3()
		req.Category = ""

		state := svc.Suggest(context.Background(), req)

		assert.Equal(t, domain.UserMessage(domain.ErrInvalidRequest), state.LastError)
		assert.Empty(t, catalog.candidateQueries)
	})

	t.Run("category falls back to deepest hierarchy tag", func(t *testing.T) {
		catalog := &MockCatalog{}
		svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{}, nil)
		req := referenceC3()
		req.Category = ""
		req.Categories = []string{"en:spreads", "en:sweet-spreads", "en:hazelnut-spreads"}

		svc.Suggest(context.Background(), req)

		require.Len(t, catalog.candidateQueries, 1)
		assert.Equal(t, "en:hazelnut-spreads", catalog.candidateQueries[0].Category)
	})

	t.Run("reference without grade gets nothing", func(t *testing.T) {
		catalog := &MockCatalog{candidates: []domain.RawProduct{rawProduct("a", "a", 1, 1, 1)}}
		svc := NewSuggestionService(catalog, newTestMapper(), SuggestionConfig{Enrich: true}, nil)
		req := referenceC3()
		req.NutriScore = domain.GradeUnknown

		state := svc.Suggest(context.Background(), req)

		assert.Empty(t, state.Results)
		assert.Empty(t, state.LastError)
		assert.Empty(t, catalog.codeCalls)
	})
}
