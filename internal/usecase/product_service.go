package usecase

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/logger"
	"github.com/nutriswap/backend/internal/metrics"
)

// Package-level compiled regex pattern for cache key normalization
var nonKeyCharsRegex = regexp.MustCompile(`[^a-z0-9]`)

// Last-added defaults
const (
	DefaultLatestLimit  = 5
	defaultCacheTTL     = 24 * time.Hour
	defaultFetchTimeout = 30 * time.Second
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL        time.Duration
	LatestLimit     int
	MinCompleteness float64
	// FetchTimeout bounds a shared upstream fetch, which outlives the
	// cancellation of any single caller.
	FetchTimeout time.Duration
}

// ProductService handles product detail lookup with caching
type ProductService struct {
	catalog     domain.Catalog
	cache       domain.CacheRepository
	transformer domain.Transformer
	cfg         ProductServiceConfig
	group       singleflight.Group
	log         *zap.Logger
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	catalog domain.Catalog,
	cache domain.CacheRepository,
	transformer domain.Transformer,
	cfg ProductServiceConfig,
	log *zap.Logger,
) *ProductService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.LatestLimit <= 0 {
		cfg.LatestLimit = DefaultLatestLimit
	}
	if cfg.MinCompleteness <= 0 {
		cfg.MinCompleteness = DefaultMinCompleteness
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &ProductService{
		catalog:     catalog,
		cache:       cache,
		transformer: transformer,
		cfg:         cfg,
		log:         logger.OrNop(log).Named("product"),
	}
}

// GetProduct returns the detail record for id.
// Flow: check cache -> fetch catalog -> transform -> cache -> return.
// Concurrent misses for the same id share one upstream call. The call runs
// on a detached context, so a caller that gives up only stops waiting and
// the others still get the result.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	key := productCacheKey(id)
	if detail, err := s.getFromCache(ctx, key); err == nil {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return detail, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()

		raw, err := s.catalog.Product(fetchCtx, id)
		if err != nil {
			return nil, err
		}
		detail := s.transformer.ToDetail(raw)
		if err := s.setInCache(fetchCtx, key, &detail); err != nil {
			// Caching is best effort
			s.log.Warn("Failed to cache product", zap.String("id", id), zap.Error(err))
		}
		return &detail, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ProductDetail), nil
	}
}

// LatestProducts returns the most recently added products that meet the
// completeness floor, newest first.
func (s *ProductService) LatestProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	raws, err := s.catalog.LastAdded(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedResponse) {
			return []domain.ProductSummary{}, nil
		}
		return nil, fmt.Errorf("latest products: %w", err)
	}

	complete := slices.DeleteFunc(slices.Clone(raws), func(raw domain.RawProduct) bool {
		return float64(raw.Completeness.Or(0)) < s.cfg.MinCompleteness
	})
	slices.SortStableFunc(complete, func(a, b domain.RawProduct) int {
		return cmp.Compare(b.CreatedT.Or(0), a.CreatedT.Or(0))
	})
	if len(complete) > s.cfg.LatestLimit {
		complete = complete[:s.cfg.LatestLimit]
	}

	return s.transformer.ToSummaries(complete), nil
}

// productCacheKey creates a normalized cache key. Format: "product:{id}"
func productCacheKey(id string) string {
	return "product:" + nonKeyCharsRegex.ReplaceAllString(strings.ToLower(id), "")
}

// getFromCache retrieves product detail from cache
func (s *ProductService) getFromCache(ctx context.Context, key string) (*domain.ProductDetail, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var detail domain.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &detail, nil
}

// setInCache stores product detail in cache
func (s *ProductService) setInCache(ctx context.Context, key string, detail *domain.ProductDetail) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cfg.CacheTTL)
}
