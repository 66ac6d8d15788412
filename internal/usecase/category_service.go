package usecase

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/logger"
	"github.com/nutriswap/backend/internal/metrics"
)

// Category translation defaults
const (
	DefaultMaxCategories = 4
	DefaultSeparator     = "<SEP>"
)

// CategoryConfig holds configuration for category translation
type CategoryConfig struct {
	MaxCategories int
	NativeLang    string // tag prefix already in the display language, e.g. "fr"
	ForeignLang   string // tag prefix sent for translation, e.g. "en"
	TargetLang    string // translation target, e.g. "FR"
	Separator     string // joins tags in one request; must not occur in tag text
}

// CategoryService turns raw category tags into display labels
type CategoryService struct {
	translator domain.Translator
	cfg        CategoryConfig
	log        *zap.Logger
}

// NewCategoryService creates a category service
func NewCategoryService(translator domain.Translator, cfg CategoryConfig, log *zap.Logger) *CategoryService {
	if cfg.MaxCategories <= 0 {
		cfg.MaxCategories = DefaultMaxCategories
	}
	if cfg.NativeLang == "" {
		cfg.NativeLang = "fr"
	}
	if cfg.ForeignLang == "" {
		cfg.ForeignLang = "en"
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = strings.ToUpper(cfg.NativeLang)
	}
	if cfg.Separator == "" {
		cfg.Separator = DefaultSeparator
	}
	return &CategoryService{
		translator: translator,
		cfg:        cfg,
		log:        logger.OrNop(log).Named("categories"),
	}
}

// TranslateCategories returns native-language labels followed by translated
// foreign labels, capped at MaxCategories. Native labels are never dropped to
// make room. It never fails: on translation failure the untranslated foreign
// labels are used instead.
func (s *CategoryService) TranslateCategories(ctx context.Context, rawTags []string) []string {
	native := s.labels(rawTags, s.cfg.NativeLang)
	foreign := s.labels(rawTags, s.cfg.ForeignLang)

	if len(native) > s.cfg.MaxCategories {
		native = native[:s.cfg.MaxCategories]
	}
	room := s.cfg.MaxCategories - len(native)
	if len(foreign) > room {
		foreign = foreign[:room]
	}
	if len(foreign) == 0 {
		return native
	}

	return append(native, s.translate(ctx, foreign)...)
}

func (s *CategoryService) translate(ctx context.Context, foreign []string) []string {
	translated, err := s.translator.Translate(ctx, strings.Join(foreign, s.cfg.Separator), s.cfg.TargetLang)
	if err != nil {
		metrics.TranslationFallbacksTotal.Inc()
		s.log.Warn("Category translation failed, keeping untranslated labels",
			zap.Int("count", len(foreign)),
			zap.Error(err))
		return foreign
	}

	parts := lo.FilterMap(strings.Split(translated, s.cfg.Separator), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
	if len(parts) == 0 {
		metrics.TranslationFallbacksTotal.Inc()
		s.log.Warn("Category translation came back empty, keeping untranslated labels",
			zap.Int("count", len(foreign)))
		return foreign
	}
	if len(parts) > len(foreign) {
		parts = parts[:len(foreign)]
	}
	return parts
}

// labels selects tags with the given language prefix, strips the prefix and
// turns hyphens into spaces.
func (s *CategoryService) labels(tags []string, lang string) []string {
	prefix := lang + ":"
	return lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		if !strings.HasPrefix(tag, prefix) {
			return "", false
		}
		label := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(tag, prefix), "-", " "))
		return label, label != ""
	})
}
