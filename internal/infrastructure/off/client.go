package off

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/infrastructure/fetch"
	"github.com/nutriswap/backend/internal/logger"
)

// Config holds Open Food Facts client settings
type Config struct {
	BaseURL           string
	MarketTag         string // purchase_places_tags value, e.g. "france"
	UserAgent         string
	Timeout           time.Duration
	CandidatePageSize int
	LatestPageSize    int
	RequestsPerMinute int
}

// Client handles communication with the Open Food Facts API
type Client struct {
	fetcher *fetch.Client
	cfg     Config
	log     *zap.Logger
}

// Compile-time check: Client implements domain.Catalog.
var _ domain.Catalog = (*Client)(nil)

// NewClient creates a new Open Food Facts API client
func NewClient(cfg Config, log *zap.Logger, opts ...fetch.Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = fetch.DefaultTimeout
	}
	if cfg.CandidatePageSize <= 0 {
		cfg.CandidatePageSize = 300
	}
	if cfg.LatestPageSize <= 0 {
		cfg.LatestPageSize = 300
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	log = logger.OrNop(log).Named("off")
	fetchOpts := []fetch.Option{
		// Zero RequestsPerMinute leaves the client unthrottled.
		fetch.WithRateLimit(cfg.RequestsPerMinute, 10),
	}
	if cfg.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.UserAgent))
	}
	fetchOpts = append(fetchOpts, opts...)

	return &Client{
		fetcher: fetch.NewClient("openfoodfacts", log, fetchOpts...),
		cfg:     cfg,
		log:     log,
	}
}

// searchResponse is the shape shared by cgi/search.pl and api/v2/search
type searchResponse struct {
	Count    domain.Opt[domain.Number] `json:"count"`
	Page     domain.Opt[domain.Number] `json:"page"`
	PageSize domain.Opt[domain.Number] `json:"page_size"`
	Products []domain.RawProduct       `json:"products"`
}

// productResponse is the api/v3 product envelope
type productResponse struct {
	Status  string             `json:"status"`
	Product *domain.RawProduct `json:"product"`
}

// Search runs a paginated text search scoped to the home market.
func (c *Client) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("search_terms", query.Terms)
	params.Set("fields", strings.Join(SummaryFields, ","))
	c.scopeToMarket(params)
	params.Set("sort_by", query.SortBy)
	params.Set("page_size", strconv.Itoa(query.PageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")

	resp, err := c.getSearch(ctx, c.cfg.BaseURL+"/cgi/search.pl", params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query.Terms, err)
	}

	c.log.Debug("Search completed",
		zap.String("terms", query.Terms),
		zap.Int("page", page),
		zap.Int("count", int(resp.Count.Or(0))),
		zap.Int("returned", len(resp.Products)))

	return &domain.SearchPage{
		Count:    int(resp.Count.Or(0)),
		Page:     int(resp.Page.Or(domain.Number(page))),
		PageSize: int(resp.PageSize.Or(domain.Number(query.PageSize))),
		Products: resp.Products,
	}, nil
}

// Candidates fetches a broad page of suggestion candidates for one category.
func (c *Client) Candidates(ctx context.Context, query domain.CandidateQuery) ([]domain.RawProduct, error) {
	if query.Category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidRequest)
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > c.cfg.CandidatePageSize {
		pageSize = c.cfg.CandidatePageSize
	}
	fields := query.Fields
	if len(fields) == 0 {
		fields = CandidateFields
	}

	params := url.Values{}
	params.Set("categories_tags", query.Category)
	if query.SearchTerm != "" {
		params.Set("search_terms", query.SearchTerm)
	}
	params.Set("fields", strings.Join(fields, ","))
	c.scopeToMarket(params)
	params.Set("sort_by", "nutriscore_score,nova_group,popularity_key")
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("action", "process")
	params.Set("json", "1")

	resp, err := c.getSearch(ctx, c.cfg.BaseURL+"/api/v2/search", params)
	if err != nil {
		return nil, fmt.Errorf("candidates for %q: %w", query.Category, err)
	}
	return resp.Products, nil
}

// ProductsByCodes fetches summary records for a set of ids in one call.
// The response order is not guaranteed to match codes.
func (c *Client) ProductsByCodes(ctx context.Context, codes []string) ([]domain.RawProduct, error) {
	if len(codes) == 0 {
		return []domain.RawProduct{}, nil
	}
	params := url.Values{}
	params.Set("code", strings.Join(codes, ","))
	params.Set("fields", strings.Join(SummaryFields, ","))
	params.Set("page_size", strconv.Itoa(len(codes)))
	params.Set("json", "1")

	resp, err := c.getSearch(ctx, c.cfg.BaseURL+"/api/v2/search", params)
	if err != nil {
		return nil, fmt.Errorf("products by code: %w", err)
	}
	return resp.Products, nil
}

// LastAdded fetches the most recently created products in the home market.
func (c *Client) LastAdded(ctx context.Context) ([]domain.RawProduct, error) {
	params := url.Values{}
	params.Set("fields", strings.Join(LatestFields, ","))
	c.scopeToMarket(params)
	params.Set("sort_by", "created_t")
	params.Set("page_size", strconv.Itoa(c.cfg.LatestPageSize))
	params.Set("action", "process")
	params.Set("json", "1")

	resp, err := c.getSearch(ctx, c.cfg.BaseURL+"/cgi/search.pl", params)
	if err != nil {
		return nil, fmt.Errorf("last added: %w", err)
	}
	return resp.Products, nil
}

// Product retrieves one product by id with the detail field list.
func (c *Client) Product(ctx context.Context, id string) (*domain.RawProduct, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}
	params := url.Values{}
	params.Set("fields", strings.Join(DetailFields, ","))

	reqURL := fmt.Sprintf("%s/api/v3/product/%s.json?%s", c.cfg.BaseURL, url.PathEscape(id), params.Encode())
	resp, err := c.fetcher.Do(ctx, reqURL, fetch.Options{
		Headers: acceptJSON(),
		Timeout: c.cfg.Timeout,
	})
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("product %s: %w", id, err)
	}

	var body productResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		c.log.Warn("JSON decode error", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("product %s: %w: %v", id, domain.ErrMalformedResponse, err)
	}
	if body.Status == "failure" || body.Product == nil {
		return nil, domain.ErrProductNotFound
	}
	if body.Product.Identifier() == "" {
		body.Product.ID = domain.Some(id)
	}
	return body.Product, nil
}

func (c *Client) getSearch(ctx context.Context, endpoint string, params url.Values) (*searchResponse, error) {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	resp, err := c.fetcher.Do(ctx, reqURL, fetch.Options{
		Headers: acceptJSON(),
		Timeout: c.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		c.log.Warn("JSON decode error", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if body.Products == nil {
		body.Products = []domain.RawProduct{}
	}
	return &body, nil
}

func (c *Client) scopeToMarket(params url.Values) {
	if c.cfg.MarketTag != "" {
		params.Set("purchase_places_tags", c.cfg.MarketTag)
	}
}

func acceptJSON() http.Header {
	return http.Header{"Accept": []string{"application/json"}}
}
