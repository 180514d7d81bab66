package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"menu-extractor/adapters"
	"menu-extractor/internal/types"
)

const (
	hiddenPollInterval = 100 * time.Millisecond

	scrollMetricsScript = `({
		scrollY: window.scrollY,
		viewportHeight: window.innerHeight,
		contentHeight: document.body.scrollHeight
	})`

	// true once nothing matches or the match takes no visible space.
	// offsetParent is null for position:fixed dialogs, so it is not used.
	hiddenScript = `(() => {
		const el = document.querySelector(%s);
		if (!el || !el.isConnected) return true;
		const style = getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') return true;
		const rect = el.getBoundingClientRect();
		return rect.width === 0 && rect.height === 0;
	})()`
)

// hiddenCheck builds the expression reporting whether query is hidden
func hiddenCheck(query string) string {
	literal, _ := json.Marshal(query)
	return fmt.Sprintf(hiddenScript, literal)
}

// BrowserClient launches headless browser sessions
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// OpenPage launches a browser and returns its single tab. The browser lives
// until the returned page is closed or ctx is cancelled.
func (b *BrowserClient) OpenPage(ctx context.Context) (adapters.Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.UserAgent(b.config.UserAgent),
		chromedp.WindowSize(1366, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithErrorf(b.logger.Debugf))

	// the first Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b.logger.Debug("Browser session started")
	return &ChromePage{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		config: b.config,
		logger: b.logger,
	}, nil
}

// ChromePage is an adapters.Page driven through the Chrome DevTools Protocol.
// Elements are *cdp.Node values.
type ChromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *types.Config
	logger types.Logger
}

// run executes actions on the tab, bounded by timeout (when positive) and by ctx
func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func node(el adapters.Element) (*cdp.Node, error) {
	n, ok := el.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("unexpected element handle %T", el)
	}
	return n, nil
}

// Navigate loads url, waits for the body and lets client-side rendering settle
func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	p.logger.Debugf("Navigating to %s", url)
	err := p.run(ctx, p.config.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(p.config.SettleDelay),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) ScrollBy(ctx context.Context, dy float64) error {
	return p.run(ctx, 0, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %f)", dy), nil))
}

func (p *ChromePage) ScrollMetrics(ctx context.Context) (adapters.ScrollMetrics, error) {
	var metrics adapters.ScrollMetrics
	if err := p.run(ctx, 0, chromedp.Evaluate(scrollMetricsScript, &metrics)); err != nil {
		return adapters.ScrollMetrics{}, fmt.Errorf("failed to read scroll metrics: %w", err)
	}
	return metrics, nil
}

func (p *ChromePage) QueryAll(ctx context.Context, scope adapters.Element, query string) ([]adapters.Element, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if scope != nil {
		parent, err := node(scope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chromedp.FromNode(parent))
	}

	var nodes []*cdp.Node
	if err := p.run(ctx, 0, chromedp.Nodes(query, &nodes, opts...)); err != nil {
		return nil, err
	}

	elements := make([]adapters.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, n)
	}
	return elements, nil
}

func (p *ChromePage) TextContent(ctx context.Context, el adapters.Element) (string, error) {
	n, err := node(el)
	if err != nil {
		return "", err
	}
	var text string
	err = p.run(ctx, 0, chromedp.TextContent([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID))
	return text, err
}

func (p *ChromePage) OuterHTML(ctx context.Context, el adapters.Element) (string, error) {
	n, err := node(el)
	if err != nil {
		return "", err
	}
	var html string
	err = p.run(ctx, 0, chromedp.OuterHTML([]cdp.NodeID{n.NodeID}, &html, chromedp.ByNodeID))
	return html, err
}

func (p *ChromePage) Click(ctx context.Context, el adapters.Element, offset *adapters.Point) error {
	n, err := node(el)
	if err != nil {
		return err
	}
	if offset == nil {
		return p.run(ctx, 0, chromedp.MouseClickNode(n))
	}

	return p.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID).Do(ctx); err != nil {
			return err
		}
		box, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		if len(box.Border) < 2 {
			return errors.New("element has no layout box")
		}
		return chromedp.MouseClickXY(box.Border[0]+offset.X, box.Border[1]+offset.Y).Do(ctx)
	}))
}

func (p *ChromePage) WaitReady(ctx context.Context, query string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitReady(query, chromedp.ByQuery))
}

func (p *ChromePage) WaitHidden(ctx context.Context, query string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	script := hiddenCheck(query)

	for {
		var hidden bool
		if err := p.run(ctx, timeout, chromedp.Evaluate(script, &hidden)); err != nil {
			return err
		}
		if hidden {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s still visible after %v: %w", query, timeout, context.DeadlineExceeded)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(hiddenPollInterval):
		}
	}
}

func (p *ChromePage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	return p.run(ctx, 0, chromedp.Evaluate(expression, out))
}

// Close shuts the tab and the browser process
func (p *ChromePage) Close() error {
	p.cancel()
	return nil
}
