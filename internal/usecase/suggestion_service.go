package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/infrastructure/off"
	"github.com/nutriswap/backend/internal/logger"
)

// Suggestion defaults
const (
	DefaultSuggestionLimit   = 4
	DefaultMinCompleteness   = 0.35
	DefaultCandidatePageSize = 300
)

// SuggestionConfig holds configuration for the suggestion service
type SuggestionConfig struct {
	Limit             int
	MinCompleteness   float64
	CandidatePageSize int
	// Enrich re-fetches summary fields for the finalists only. When false the
	// candidate query requests summary fields up front.
	Enrich bool
	// ScopeByTerm narrows the candidate query with a term derived from the
	// reference product's name.
	ScopeByTerm bool
}

// SuggestionRequest identifies the reference product
type SuggestionRequest struct {
	ProductID  string
	Category   string
	Categories []string
	Name       string
	Brand      string
	NutriScore domain.Grade
	NovaGroup  domain.NovaGroup
}

// Candidate is the ranking view of a catalog record
type Candidate struct {
	ID           string
	Grade        domain.Grade
	Nova         domain.NovaGroup
	Completeness float64
	Popularity   float64
	raw          domain.RawProduct
}

// Reference is the product suggestions must improve on
type Reference struct {
	ID    string
	Grade domain.Grade
	Nova  domain.NovaGroup
}

// SuggestionService ranks healthier alternatives for a product
type SuggestionService struct {
	catalog     domain.Catalog
	transformer domain.Transformer
	cfg         SuggestionConfig
	log         *zap.Logger
}

// NewSuggestionService creates a new suggestion service with dependencies
func NewSuggestionService(
	catalog domain.Catalog,
	transformer domain.Transformer,
	cfg SuggestionConfig,
	log *zap.Logger,
) *SuggestionService {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultSuggestionLimit
	}
	if cfg.MinCompleteness <= 0 {
		cfg.MinCompleteness = DefaultMinCompleteness
	}
	if cfg.CandidatePageSize <= 0 {
		cfg.CandidatePageSize = DefaultCandidatePageSize
	}
	return &SuggestionService{
		catalog:     catalog,
		transformer: transformer,
		cfg:         cfg,
		log:         logger.OrNop(log).Named("suggest"),
	}
}

// Suggest runs the candidate fetch, filter, rank, truncate and enrichment
// steps and returns a fresh state. Failures are reported in LastError; the
// returned state is never loading.
func (s *SuggestionService) Suggest(ctx context.Context, req SuggestionRequest) domain.SuggestionState {
	state := domain.SuggestionState{Results: []domain.ProductSummary{}}

	results, err := s.suggest(ctx, req)
	if results != nil {
		state.Results = results
	}
	if err != nil {
		s.log.Warn("Suggestion failed",
			zap.String("product_id", req.ProductID),
			zap.Int("partial_results", len(state.Results)),
			zap.Error(err))
		state.LastError = domain.UserMessage(err)
	}
	return state
}

func (s *SuggestionService) suggest(ctx context.Context, req SuggestionRequest) ([]domain.ProductSummary, error) {
	category := req.Category
	if category == "" && len(req.Categories) > 0 {
		category = req.Categories[len(req.Categories)-1]
	}
	if category == "" {
		return nil, fmt.Errorf("%w: reference category is required", domain.ErrInvalidRequest)
	}

	query := domain.CandidateQuery{
		Category: category,
		PageSize: s.cfg.CandidatePageSize,
		Fields:   off.CandidateFields,
	}
	if !s.cfg.Enrich {
		query.Fields = candidateSummaryFields
	}
	if s.cfg.ScopeByTerm {
		query.SearchTerm = SuggestionTerm(req.Name, req.Brand)
	}

	raws, err := s.catalog.Candidates(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedResponse) {
			s.log.Warn("Malformed candidate response treated as empty", zap.Error(err))
			return []domain.ProductSummary{}, nil
		}
		return nil, err
	}

	ref := Reference{ID: req.ProductID, Grade: req.NutriScore, Nova: req.NovaGroup}
	finalists := SelectSuggestions(toCandidates(raws), ref, s.cfg.MinCompleteness, s.cfg.Limit)

	s.log.Debug("Ranked suggestion candidates",
		zap.String("category", category),
		zap.String("term", query.SearchTerm),
		zap.Int("candidates", len(raws)),
		zap.Int("finalists", len(finalists)))

	if !s.cfg.Enrich || len(finalists) == 0 {
		return s.summaries(finalists), nil
	}
	return s.enrich(ctx, finalists)
}

// enrich fetches summary fields for the finalists in one call and restores
// the rank order. Finalists missing from the response keep their candidate
// record so the ranking is never shortened by the second call.
func (s *SuggestionService) enrich(ctx context.Context, finalists []Candidate) ([]domain.ProductSummary, error) {
	ids := make([]string, len(finalists))
	for i, c := range finalists {
		ids[i] = c.ID
	}

	raws, err := s.catalog.ProductsByCodes(ctx, ids)
	if err != nil && !errors.Is(err, domain.ErrMalformedResponse) {
		return s.summaries(finalists), fmt.Errorf("enrich finalists: %w", err)
	}

	byID := make(map[string]domain.RawProduct, len(raws))
	for _, raw := range raws {
		byID[raw.Identifier()] = raw
	}

	ranked := make([]domain.RawProduct, 0, len(finalists))
	for _, c := range finalists {
		raw, ok := byID[c.ID]
		if !ok {
			raw = c.raw
		}
		ranked = append(ranked, raw)
	}
	return s.transformer.ToSummaries(ranked), nil
}

func (s *SuggestionService) summaries(cands []Candidate) []domain.ProductSummary {
	raws := make([]domain.RawProduct, 0, len(cands))
	for _, c := range cands {
		raws = append(raws, c.raw)
	}
	return s.transformer.ToSummaries(raws)
}

// candidateSummaryFields is used when finalists are not enriched
var candidateSummaryFields = append(append([]string{}, off.SummaryFields...), "completeness", "popularity_key")

func toCandidates(raws []domain.RawProduct) []Candidate {
	out := make([]Candidate, 0, len(raws))
	for _, raw := range raws {
		nova := domain.NovaUnknown
		if raw.NovaGroup.Set {
			nova = domain.NovaFromFloat(float64(raw.NovaGroup.Value))
		}
		out = append(out, Candidate{
			ID:           raw.Identifier(),
			Grade:        domain.ParseGrade(raw.NutriscoreGrade.Or(string(domain.GradeUnknown))),
			Nova:         nova,
			Completeness: float64(raw.Completeness.Or(0)),
			Popularity:   float64(raw.PopularityKey.Or(0)),
			raw:          raw,
		})
	}
	return out
}

// SelectSuggestions filters, ranks and truncates candidates.
func SelectSuggestions(cands []Candidate, ref Reference, minCompleteness float64, limit int) []Candidate {
	selected := FilterCandidates(cands, ref, minCompleteness)
	RankCandidates(selected)
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// FilterCandidates keeps candidates that are not the reference, have a known
// grade, improve on the reference and meet the completeness floor.
func FilterCandidates(cands []Candidate, ref Reference, minCompleteness float64) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.ID == "" || c.ID == ref.ID {
			continue
		}
		if !c.Grade.Known() {
			continue
		}
		if !Improves(c, ref) {
			continue
		}
		if c.Completeness < minCompleteness {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Improves reports whether c has a strictly better grade than ref, or the
// same grade and a strictly lower NOVA group. A reference without a ranked
// grade cannot be improved on.
func Improves(c Candidate, ref Reference) bool {
	candRank, ok := c.Grade.Rank()
	if !ok {
		return false
	}
	refRank, ok := ref.Grade.Rank()
	if !ok {
		return false
	}
	if candRank < refRank {
		return true
	}
	return candRank == refRank &&
		c.Nova.Known() && ref.Nova.Known() &&
		c.Nova < ref.Nova
}

// RankCandidates sorts in place by grade, then NOVA group, then popularity
// descending. Unknown NOVA groups sort after known ones.
func RankCandidates(cands []Candidate) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		ra, _ := a.Grade.Rank()
		rb, _ := b.Grade.Rank()
		if c := cmp.Compare(ra, rb); c != 0 {
			return c
		}
		if c := cmp.Compare(novaSortKey(a.Nova), novaSortKey(b.Nova)); c != 0 {
			return c
		}
		return cmp.Compare(b.Popularity, a.Popularity)
	})
}

func novaSortKey(n domain.NovaGroup) int {
	if !n.Known() {
		return int(domain.NovaMax) + 1
	}
	return int(n)
}
