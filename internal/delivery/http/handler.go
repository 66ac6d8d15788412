package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/logger"
	"github.com/nutriswap/backend/internal/usecase"
)

var errInternal = errors.New("internal error")

// ProductFinder serves product detail and last-added lists
type ProductFinder interface {
	GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error)
	LatestProducts(ctx context.Context) ([]domain.ProductSummary, error)
}

// Suggester ranks healthier alternatives
type Suggester interface {
	Suggest(ctx context.Context, req usecase.SuggestionRequest) domain.SuggestionState
}

// CategoryTranslator produces display category labels
type CategoryTranslator interface {
	TranslateCategories(ctx context.Context, rawTags []string) []string
}

// Searcher runs paginated searches against a session
type Searcher interface {
	Search(ctx context.Context, session *usecase.SearchSession, req usecase.SearchRequest) domain.SearchState
}

// Services groups the use cases exposed over HTTP
type Services struct {
	Products    ProductFinder
	Suggestions Suggester
	Categories  CategoryTranslator
	Search      Searcher
	Sessions    *usecase.SessionStore
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc     Services
	version string
	log     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, version string, log *zap.Logger) *Handler {
	if svc.Sessions == nil {
		svc.Sessions = usecase.NewSessionStore(0)
	}
	return &Handler{
		svc:     svc,
		version: version,
		log:     logger.OrNop(log),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutriswap-backend",
		"version": h.version,
	})
}

// SearchProducts runs a complete or load-more search on the caller's session.
// Absent q and sort parameters keep the session's previous values.
func (h *Handler) SearchProducts(c *gin.Context) {
	mode, err := usecase.ParseSearchMode(c.Query("mode"))
	if err != nil {
		h.fail(c, err)
		return
	}

	req := usecase.SearchRequest{Mode: mode}
	if q, ok := c.GetQuery("q"); ok {
		req.Query = &q
	}
	if sort, ok := c.GetQuery("sort"); ok {
		req.SortBy = &sort
	}

	session, id := h.svc.Sessions.Get(c.GetHeader(SessionHeader))
	c.Header(SessionHeader, id)

	c.JSON(http.StatusOK, h.svc.Search.Search(c.Request.Context(), session, req))
}

// LatestProducts returns the most recently added complete products
func (h *Handler) LatestProducts(c *gin.Context) {
	products, err := h.svc.Products.LatestProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns the product detail with its display categories
func (h *Handler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	product, err := h.svc.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":           product,
		"displayCategories": h.svc.Categories.TranslateCategories(ctx, product.Categories),
	})
}

// GetSuggestions returns healthier alternatives for a product
func (h *Handler) GetSuggestions(c *gin.Context) {
	ctx := c.Request.Context()
	product, err := h.svc.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.svc.Suggestions.Suggest(ctx, usecase.SuggestionRequest{
		ProductID:  product.ID,
		Category:   product.Category,
		Categories: product.Categories,
		Name:       product.DisplayName,
		Brand:      product.Brand,
		NutriScore: product.NutriScore,
		NovaGroup:  product.NovaGroup,
	}))
}

type translateCategoriesRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// TranslateCategories turns raw category tags into display labels
func (h *Handler) TranslateCategories(c *gin.Context) {
	var req translateCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.UserMessage(domain.ErrInvalidRequest)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": h.svc.Categories.TranslateCategories(c.Request.Context(), req.Tags),
	})
}

// ReferenceIntakes returns the daily reference intakes for a profile
func (h *Handler) ReferenceIntakes(c *gin.Context) {
	profile, intakes := domain.IntakesFor(domain.IntakeProfile(c.Param("profile")))
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"intakes": intakes,
	})
}

// NovaDescription returns the display text for a NOVA group
func (h *Handler) NovaDescription(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("group"))
	group := domain.NovaGroup(n)
	if err != nil || !group.Known() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown NOVA group."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"group":       group,
		"description": domain.NovaDescription(group),
	})
}

// fail writes the error response matching err's class
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	log := logger.FromContext(c.Request.Context(), h.log)
	if status >= http.StatusInternalServerError {
		log.Warn("Upstream call failed", zap.Int("status", status), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": domain.UserMessage(err)})
}

// statusFor maps the error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNetworkFailure),
		errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
