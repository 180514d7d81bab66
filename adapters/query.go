package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"menu-extractor/internal/catalog"
	"menu-extractor/internal/types"
)

// ErrElementNotFound is returned when a selector has no match in its scope
var ErrElementNotFound = errors.New("element not found")

// ElementQuery resolves symbolic selectors against a Page
type ElementQuery struct {
	page   Page
	logger types.Logger
}

// NewElementQuery creates a query adapter over page
func NewElementQuery(page Page, logger types.Logger) *ElementQuery {
	return &ElementQuery{
		page:   page,
		logger: logger,
	}
}

// Page returns the underlying page
func (q *ElementQuery) Page() Page {
	return q.page
}

// FindAll returns every element matching key under scope (nil for the whole page)
func (q *ElementQuery) FindAll(ctx context.Context, scope Element, key Selector) ([]Element, error) {
	elements, err := q.page.QueryAll(ctx, scope, key.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return elements, nil
}

// Find returns the first element matching key under scope
func (q *ElementQuery) Find(ctx context.Context, scope Element, key Selector) (Element, error) {
	elements, err := q.FindAll(ctx, scope, key)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrElementNotFound)
	}
	return elements[0], nil
}

// Exists reports whether key matches anything on the page. Query errors count as absent.
func (q *ElementQuery) Exists(ctx context.Context, key Selector) bool {
	elements, err := q.FindAll(ctx, nil, key)
	return err == nil && len(elements) > 0
}

// Text returns the cleaned text of the first match of key under scope.
// Lookups never fail: def is returned when nothing matches, the text is
// empty or the page errors.
func (q *ElementQuery) Text(ctx context.Context, scope Element, key Selector, def string) string {
	el, err := q.Find(ctx, scope, key)
	if err != nil {
		if !errors.Is(err, ErrElementNotFound) {
			q.logger.Debugf("Text lookup for %s failed: %v", key, err)
		}
		return def
	}

	text, err := q.page.TextContent(ctx, el)
	if err != nil {
		q.logger.Debugf("Reading text of %s failed: %v", key, err)
		return def
	}

	if text = catalog.CleanText(text); text == "" {
		return def
	}
	return text
}

// OuterHTML returns the markup of the first match of key under scope
func (q *ElementQuery) OuterHTML(ctx context.Context, scope Element, key Selector) (string, error) {
	el, err := q.Find(ctx, scope, key)
	if err != nil {
		return "", err
	}
	html, err := q.page.OuterHTML(ctx, el)
	if err != nil {
		return "", fmt.Errorf("failed to read markup of %s: %w", key, err)
	}
	return html, nil
}

// Click clicks el, optionally at an offset inside it
func (q *ElementQuery) Click(ctx context.Context, el Element, offset *Point) error {
	if err := q.page.Click(ctx, el, offset); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// WaitFor waits up to timeout for key to appear on the page
func (q *ElementQuery) WaitFor(ctx context.Context, key Selector, timeout time.Duration) error {
	if err := q.page.WaitReady(ctx, key.Query(), timeout); err != nil {
		return fmt.Errorf("waiting for %s: %w", key, err)
	}
	return nil
}

// WaitHidden waits up to timeout for key to disappear from the page
func (q *ElementQuery) WaitHidden(ctx context.Context, key Selector, timeout time.Duration) error {
	if err := q.page.WaitHidden(ctx, key.Query(), timeout); err != nil {
		return fmt.Errorf("waiting for %s to hide: %w", key, err)
	}
	return nil
}
