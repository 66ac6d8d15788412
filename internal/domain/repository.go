package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Catalog defines the interface for the remote product catalog
type Catalog interface {
	Search(ctx context.Context, query SearchQuery) (*SearchPage, error)
	Candidates(ctx context.Context, query CandidateQuery) ([]RawProduct, error)
	ProductsByCodes(ctx context.Context, codes []string) ([]RawProduct, error)
	Product(ctx context.Context, id string) (*RawProduct, error)
	LastAdded(ctx context.Context) ([]RawProduct, error)
}

// Translator defines the interface for the machine translation service
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Transformer maps raw catalog records to internal records
type Transformer interface {
	ToSummary(raw *RawProduct) ProductSummary
	ToSummaries(raws []RawProduct) []ProductSummary
	ToDetail(raw *RawProduct) ProductDetail
}
