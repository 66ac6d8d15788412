package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nutriswap/backend/internal/domain"
	"github.com/nutriswap/backend/internal/infrastructure/fetch"
	"github.com/nutriswap/backend/internal/logger"
)

// Client calls a DeepL-style translation endpoint.
type Client struct {
	fetcher *fetch.Client
	url     string
	timeout time.Duration
	log     *zap.Logger
}

// Compile-time check: Client implements domain.Translator.
var _ domain.Translator = (*Client)(nil)

type request struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type response struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// NewClient creates a translation client posting to endpointURL.
func NewClient(endpointURL string, timeout time.Duration, log *zap.Logger, opts ...fetch.Option) *Client {
	log = logger.OrNop(log).Named("translate")
	return &Client{
		fetcher: fetch.NewClient("translation", log, opts...),
		url:     endpointURL,
		timeout: timeout,
		log:     log,
	}
}

// Translate sends text in one request and returns the first translation.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	payload, err := json.Marshal(request{Text: text, TargetLang: targetLang})
	if err != nil {
		return "", fmt.Errorf("encode translation request: %w", err)
	}

	resp, err := c.fetcher.Do(ctx, c.url, fetch.Options{
		Method: http.MethodPost,
		Headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		Body:    payload,
		Timeout: c.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", targetLang, err)
	}

	var body response
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("translate to %s: %w: %v", targetLang, domain.ErrMalformedResponse, err)
	}
	if len(body.Translations) == 0 {
		return "", fmt.Errorf("translate to %s: %w: no translations", targetLang, domain.ErrMalformedResponse)
	}

	c.log.Debug("Translation completed",
		zap.String("target_lang", targetLang),
		zap.String("detected_source_language", body.Translations[0].DetectedSourceLanguage))
	return body.Translations[0].Text, nil
}
