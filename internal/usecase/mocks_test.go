package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/infrastructure/off"
)

// MockCatalog is a mock implementation of domain.Catalog
type MockCatalog struct {
	mu sync.Mutex

	searchFn func(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error)

	candidates    []domain.RawProduct
	candidatesErr error
	byCodes       []domain.RawProduct
	byCodesErr    error
	product       *domain.RawProduct
	productErr    error
	productDelay  time.Duration
	// productStarted receives once per call when set; productGate holds the
	// call until it is closed or the call's context ends.
	productStarted chan struct{}
	productGate    chan struct{}
	latest        []domain.RawProduct
	latestErr     error

	searchQueries    []domain.SearchQuery
	candidateQueries []domain.CandidateQuery
	codeCalls        [][]string
	productCalls     int
}

func (m *MockCatalog) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	m.mu.Lock()
	m.searchQueries = append(m.searchQueries, q)
	fn := m.searchFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.SearchPage{Products: []domain.RawProduct{}}, nil
	}
	return fn(ctx, q)
}

func (m *MockCatalog) Candidates(ctx context.Context, q domain.CandidateQuery) ([]domain.RawProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidateQueries = append(m.candidateQueries, q)
	if m.candidatesErr != nil {
		return nil, m.candidatesErr
	}
	return m.candidates, nil
}

func (m *MockCatalog) ProductsByCodes(ctx context.Context, codes []string) ([]domain.RawProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeCalls = append(m.codeCalls, codes)
	if m.byCodesErr != nil {
		return nil, m.byCodesErr
	}
	return m.byCodes, nil
}

func (m *MockCatalog) Product(ctx context.Context, id string) (*domain.RawProduct, error) {
	m.mu.Lock()
	m.productCalls++
	delay := m.productDelay
	m.mu.Unlock()
	if m.productStarted != nil {
		m.productStarted <- struct{}{}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.productGate != nil {
		select {
		case <-m.productGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.productErr != nil {
		return nil, m.productErr
	}
	return m.product, nil
}

func (m *MockCatalog) LastAdded(ctx context.Context) ([]domain.RawProduct, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest, nil
}

func (m *MockCatalog) ProductCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.productCalls
}

// MockTranslator is a mock implementation of domain.Translator
type MockTranslator struct {
	result string
	err    error
	calls  []string
	target string
}

func (m *MockTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	m.calls = append(m.calls, text)
	m.target = targetLang
	if m.err != nil {
		return "", m.err
	}
	return m.result, nil
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func newTestMapper() *off.Mapper {
	return off.NewMapper("fr-FR", time.UTC)
}

func rawProduct(id, grade string, nova, completeness, popularity float64) domain.RawProduct {
	raw := domain.RawProduct{
		ID:              domain.Some(id),
		NutriscoreGrade: domain.Some(grade),
		Completeness:    domain.Some(domain.Number(completeness)),
		PopularityKey:   domain.Some(domain.Number(popularity)),
		ProductName:     domain.Some("product " + id),
	}
	if nova > 0 {
		raw.NovaGroup = domain.Some(domain.Number(nova))
	}
	return raw
}

func ids(items []domain.ProductSummary) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
