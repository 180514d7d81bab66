package adapters

import (
	"context"
	"time"
)

// Element is an opaque handle to a node of the page. Only the Page that
// produced it knows its concrete type.
type Element interface{}

// Point is a pixel offset relative to the top-left corner of an element
type Point struct {
	X float64
	Y float64
}

// ScrollMetrics describes the vertical scroll state of the page
type ScrollMetrics struct {
	ScrollY        float64 `json:"scrollY"`
	ViewportHeight float64 `json:"viewportHeight"`
	ContentHeight  float64 `json:"contentHeight"`
}

// Page is the interactive page capability the extraction pipeline drives.
// Queries are concrete CSS queries produced by Selector.Query; a nil scope
// means the whole document.
type Page interface {
	// Navigate loads url and waits until the document is ready
	Navigate(ctx context.Context, url string) error

	ScrollBy(ctx context.Context, dy float64) error
	ScrollMetrics(ctx context.Context) (ScrollMetrics, error)

	// QueryAll returns every match of query under scope in document order
	QueryAll(ctx context.Context, scope Element, query string) ([]Element, error)
	// TextContent returns the raw text content of el
	TextContent(ctx context.Context, el Element) (string, error)
	// OuterHTML returns the serialized markup of el
	OuterHTML(ctx context.Context, el Element) (string, error)

	// Click clicks el at its center, or at offset from its top-left corner when offset is non-nil
	Click(ctx context.Context, el Element, offset *Point) error

	// WaitReady blocks until query matches an element or timeout elapses
	WaitReady(ctx context.Context, query string, timeout time.Duration) error
	// WaitHidden blocks until no element matching query is visible or timeout elapses
	WaitHidden(ctx context.Context, query string, timeout time.Duration) error

	// Evaluate runs a JavaScript expression and decodes its JSON result into out
	Evaluate(ctx context.Context, expression string, out interface{}) error

	Close() error
}
