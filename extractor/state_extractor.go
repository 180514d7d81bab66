package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"menu-extractor/internal/catalog"
	"menu-extractor/internal/types"
	"menu-extractor/utils"
)

// ErrStateNotFound is returned when the page carries no client state blob
var ErrStateNotFound = errors.New("client state not found on page")

const (
	stateScriptPrefix = "window.__NUXT__="
	stateExpression   = `window.__NUXT__ ? JSON.stringify(window.__NUXT__) : ""`
)

// StateSource returns the raw client state document of a page
type StateSource interface {
	ReadState(ctx context.Context, url string) ([]byte, error)
	Close()
}

// StateExtractor reads the catalog straight from the state blob the server
// injects into the page, without any interaction
type StateExtractor struct {
	config *types.Config
	source StateSource
	logger types.Logger
}

// NewStateExtractor creates a state extractor reading from source
func NewStateExtractor(config *types.Config, source StateSource, logger types.Logger) *StateExtractor {
	return &StateExtractor{
		config: config,
		source: source,
		logger: logger,
	}
}

// ExtractAll reads and maps the state of url
func (s *StateExtractor) ExtractAll(ctx context.Context, url string) (*types.Catalog, error) {
	startTime := time.Now()
	s.logger.Infof("Starting state extraction for %s", url)

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	raw, err := s.source.ReadState(ctx, url)
	if err != nil {
		return nil, err
	}

	state, err := catalog.DecodeState(raw, s.config.StatePath)
	if err != nil {
		return nil, err
	}

	result := &types.Catalog{Categories: catalog.FromState(state)}
	s.logger.Infof("State extraction completed in %v", time.Since(startTime))
	s.logger.Infof("Extracted %d categories with %d products", len(result.Categories), result.ProductCount())
	return result, nil
}

// Close cleans up resources
func (s *StateExtractor) Close() {
	if s.source != nil {
		s.source.Close()
	}
}

// BrowserStateSource evaluates the state object inside a rendered page
type BrowserStateSource struct {
	opener PageOpener
	config *types.Config
}

// NewBrowserStateSource creates a state source that renders pages with opener
func NewBrowserStateSource(opener PageOpener, config *types.Config) *BrowserStateSource {
	return &BrowserStateSource{opener: opener, config: config}
}

func (b *BrowserStateSource) ReadState(ctx context.Context, url string) ([]byte, error) {
	page, err := b.opener.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}

	var raw string
	if err := page.Evaluate(ctx, stateExpression, &raw); err != nil {
		return nil, fmt.Errorf("failed to read client state: %w", err)
	}
	if raw == "" {
		return nil, ErrStateNotFound
	}
	return []byte(raw), nil
}

func (b *BrowserStateSource) Close() {}

// HTTPStateSource fetches the page without a browser and reads the state
// from its inline script. It only works when the state is a JSON literal.
type HTTPStateSource struct {
	client *utils.HTTPClient
}

// NewHTTPStateSource creates a state source backed by client
func NewHTTPStateSource(client *utils.HTTPClient) *HTTPStateSource {
	return &HTTPStateSource{client: client}
}

func (h *HTTPStateSource) ReadState(ctx context.Context, url string) ([]byte, error) {
	doc, err := h.client.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return StateFromDocument(doc)
}

func (h *HTTPStateSource) Close() {
	h.client.Close()
}

// StateFromDocument finds the inline script assigning the client state and
// returns its JSON payload
func StateFromDocument(doc *goquery.Document) ([]byte, error) {
	var payload string
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, stateScriptPrefix) {
			return true
		}
		payload = strings.TrimSuffix(strings.TrimPrefix(text, stateScriptPrefix), ";")
		return false
	})

	if payload == "" {
		return nil, ErrStateNotFound
	}
	if !json.Valid([]byte(payload)) {
		return nil, fmt.Errorf("client state is not a JSON literal")
	}
	return []byte(payload), nil
}
