// Package pagetest provides an in-memory adapters.Page backed by a goquery
// document. Clicks, scrolls and dialog layers are simulated so the extraction
// pipeline can be exercised without a browser.
package pagetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"menu-extractor/adapters"
)

const layerAttr = "data-pagetest-layer"

// Click records one click made through the page
type Click struct {
	Element *goquery.Selection
	Offset  *adapters.Point
}

// Page is a fake interactive page
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document

	ScrollY        float64
	ViewportHeight float64
	ContentHeight  float64

	// OnClick is invoked after a click is recorded, outside the page lock
	OnClick func(p *Page, el *goquery.Selection)
	// OnWait is invoked when WaitReady starts, before the document is checked.
	// It lets a test render markup that shows up while the pipeline waits.
	OnWait func(p *Page, query string)
	// OnEvaluate returns the value an expression evaluates to
	OnEvaluate  func(expression string) (interface{}, error)
	NavigateErr error

	clicks      []Click
	scrollCalls int
	navigated   []string
	closeCount  int
}

// New parses html into a fake page
func New(html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &Page{doc: doc, ViewportHeight: 800, ContentHeight: 800}, nil
}

// MustNew is New for fixtures that are known to parse
func MustNew(html string) *Page {
	p, err := New(html)
	if err != nil {
		panic(err)
	}
	return p
}

func selection(el adapters.Element) (*goquery.Selection, error) {
	s, ok := el.(*goquery.Selection)
	if !ok || s == nil {
		return nil, fmt.Errorf("pagetest: unexpected element %T", el)
	}
	return s, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.NavigateErr
}

func (p *Page) ScrollBy(ctx context.Context, dy float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollCalls++
	p.ScrollY = min(p.ScrollY+dy, max(0, p.ContentHeight-p.ViewportHeight))
	return nil
}

func (p *Page) ScrollMetrics(ctx context.Context) (adapters.ScrollMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return adapters.ScrollMetrics{
		ScrollY:        p.ScrollY,
		ViewportHeight: p.ViewportHeight,
		ContentHeight:  p.ContentHeight,
	}, nil
}

func (p *Page) QueryAll(ctx context.Context, scope adapters.Element, query string) ([]adapters.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	root := p.doc.Selection
	if scope != nil {
		s, err := selection(scope)
		if err != nil {
			return nil, err
		}
		root = s
	}

	var elements []adapters.Element
	root.Find(query).Each(func(i int, s *goquery.Selection) {
		elements = append(elements, s)
	})
	return elements, nil
}

func (p *Page) TextContent(ctx context.Context, el adapters.Element) (string, error) {
	s, err := selection(el)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return s.Text(), nil
}

func (p *Page) OuterHTML(ctx context.Context, el adapters.Element) (string, error) {
	s, err := selection(el)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return goquery.OuterHtml(s)
}

func (p *Page) Click(ctx context.Context, el adapters.Element, offset *adapters.Point) error {
	s, err := selection(el)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.clicks = append(p.clicks, Click{Element: s, Offset: offset})
	hook := p.OnClick
	p.mu.Unlock()

	if hook != nil {
		hook(p, s)
	}
	return nil
}

// WaitReady does not block: a missing element is reported as a timeout at once
func (p *Page) WaitReady(ctx context.Context, query string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	hook := p.OnWait
	p.mu.Unlock()
	if hook != nil {
		hook(p, query)
	}
	if !p.Has(query) {
		return fmt.Errorf("%s after %v: %w", query, timeout, context.DeadlineExceeded)
	}
	return nil
}

// WaitHidden does not block: an element still present is reported as a timeout at once
func (p *Page) WaitHidden(ctx context.Context, query string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Has(query) {
		return fmt.Errorf("%s still visible after %v: %w", query, timeout, context.DeadlineExceeded)
	}
	return nil
}

func (p *Page) Evaluate(ctx context.Context, expression string, out interface{}) error {
	if p.OnEvaluate == nil {
		return errors.New("pagetest: no evaluate handler")
	}
	value, err := p.OnEvaluate(expression)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCount++
	return nil
}

// Has reports whether query matches anything in the document
func (p *Page) Has(query string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(query).Length() > 0
}

// PushLayer appends a dialog layer to the end of the body
func (p *Page) PushLayer(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find("body").AppendHtml(fmt.Sprintf(`<div %s>%s</div>`, layerAttr, html))
}

// PopLayer removes the most recently pushed dialog layer
func (p *Page) PopLayer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find("[" + layerAttr + "]").Last().Remove()
}

// Clicks returns the clicks made so far
func (p *Page) Clicks() []Click {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Click(nil), p.clicks...)
}

// ClicksOn counts clicks on elements matching query
func (p *Page) ClicksOn(query string) int {
	count := 0
	for _, click := range p.Clicks() {
		if click.Element.Is(query) {
			count++
		}
	}
	return count
}

// ScrollCalls returns how many times ScrollBy was called
func (p *Page) ScrollCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollCalls
}

// Navigated returns the urls passed to Navigate
func (p *Page) Navigated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigated...)
}

// CloseCount returns how many times Close was called
func (p *Page) CloseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

// ModalSite simulates a storefront where clicking a product container opens
// the dialog layers listed under its data-product attribute and clicking the
// overlay closes the topmost layer.
func ModalSite(layers map[string][]string) func(p *Page, el *goquery.Selection) {
	return func(p *Page, el *goquery.Selection) {
		if el.Is(adapters.ModalOverlay.Query()) {
			p.PopLayer()
			return
		}
		product, ok := el.Attr("data-product")
		if !ok {
			return
		}
		for _, layer := range layers[product] {
			p.PushLayer(layer)
		}
	}
}
