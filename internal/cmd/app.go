package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nutriswap/backend/config"
	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/infrastructure/cache"
	"github.com/nutriswap/backend/internal/infrastructure/off"
	"github.com/nutriswap/backend/internal/infrastructure/translate"
	"github.com/nutriswap/backend/internal/logger"
	"github.com/nutriswap/backend/internal/metrics"
	"github.com/nutriswap/backend/internal/usecase"
)

// app wires infrastructure and use cases from configuration
type app struct {
	cfg *config.Config
	log *zap.Logger

	products    *usecase.ProductService
	suggestions *usecase.SuggestionService
	categories  *usecase.CategoryService
	search      *usecase.SearchService
	sessions    *usecase.SessionStore

	closers []func()
}

// newApp builds the dependency graph. Call close when done.
func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	log = logger.OrNop(log)
	metrics.RegisterUpstreamMetrics()

	location, err := cfg.Display.Location()
	if err != nil {
		return nil, fmt.Errorf("display timezone: %w", err)
	}
	mapper := off.NewMapper(cfg.Display.Locale, location)

	a := &app{cfg: cfg, log: log}

	store, err := a.newCache()
	if err != nil {
		return nil, err
	}

	catalog := off.NewClient(off.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		MarketTag:         cfg.Catalog.MarketTag,
		UserAgent:         cfg.Catalog.UserAgent,
		Timeout:           cfg.Catalog.Timeout,
		CandidatePageSize: cfg.Catalog.CandidatePageSize,
		LatestPageSize:    cfg.Catalog.LatestPageSize,
		RequestsPerMinute: cfg.Catalog.RequestsPerMinute,
	}, log)

	translator := translate.NewClient(cfg.Translation.URL, cfg.Translation.Timeout, log)

	a.products = usecase.NewProductService(catalog, store, mapper, usecase.ProductServiceConfig{
		CacheTTL:        cfg.Cache.TTL,
		MinCompleteness: cfg.Suggestion.MinCompleteness,
		FetchTimeout:    2 * cfg.Catalog.Timeout,
	}, log)
	a.suggestions = usecase.NewSuggestionService(catalog, mapper, usecase.SuggestionConfig{
		Limit:             cfg.Suggestion.Limit,
		MinCompleteness:   cfg.Suggestion.MinCompleteness,
		CandidatePageSize: cfg.Catalog.CandidatePageSize,
		Enrich:            cfg.Suggestion.Enrich,
		ScopeByTerm:       cfg.Suggestion.ScopeByTerm,
	}, log)
	a.categories = usecase.NewCategoryService(translator, usecase.CategoryConfig{
		MaxCategories: cfg.Categories.Max,
		NativeLang:    cfg.Categories.NativeLang,
		ForeignLang:   cfg.Categories.ForeignLang,
		TargetLang:    cfg.Translation.TargetLang,
		Separator:     cfg.Translation.Separator,
	}, log)
	a.search = usecase.NewSearchService(catalog, mapper, cfg.Catalog.SearchPageSize, log)
	a.sessions = usecase.NewSessionStore(cfg.Server.SessionIdleTTL)

	return a, nil
}

func (a *app) newCache() (domain.CacheRepository, error) {
	switch a.cfg.Cache.Type {
	case "redis":
		redis, err := cache.NewRedisCache(a.cfg.Cache.RedisAddrs(), a.cfg.Cache.RedisPassword, a.cfg.Cache.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if err := redis.Ping(context.Background()); err != nil {
			redis.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.closers = append(a.closers, redis.Close)
		a.log.Info("Using redis cache", zap.Strings("addrs", a.cfg.Cache.RedisAddrs()))
		return redis, nil
	default:
		memory := cache.NewMemoryCache(0)
		a.closers = append(a.closers, memory.Close)
		a.log.Info("Using in-memory cache")
		return memory, nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
