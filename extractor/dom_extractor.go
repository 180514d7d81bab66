package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"menu-extractor/adapters"
	"menu-extractor/internal/catalog"
	"menu-extractor/internal/types"
)

const untitledCategory = "Untitled category"

// DOMExtractor reads the catalog by driving a browser page: it scrolls to load
// every section, then opens each product modal in turn to scrape its options.
type DOMExtractor struct {
	config *types.Config
	opener PageOpener
	logger types.Logger
}

// NewDOMExtractor creates a DOM extractor that opens pages through opener
func NewDOMExtractor(config *types.Config, opener PageOpener, logger types.Logger) *DOMExtractor {
	return &DOMExtractor{
		config: config,
		opener: opener,
		logger: logger,
	}
}

// ExtractAll opens url in a fresh page session and extracts the whole catalog.
// The session is closed before returning, on success and on failure.
func (d *DOMExtractor) ExtractAll(ctx context.Context, url string) (*types.Catalog, error) {
	startTime := time.Now()
	d.logger.Infof("Starting menu extraction for %s", url)

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	page, err := d.opener.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}

	session := d.NewSession(page)

	d.logger.Info("Step 1: Scrolling to load all categories...")
	if err := session.AutoScroll(ctx); err != nil {
		return nil, fmt.Errorf("failed to scroll page: %w", err)
	}

	d.logger.Info("Step 2: Extracting categories and products...")
	raw, err := session.ParseCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := &types.Catalog{
		Categories: catalog.FromDOM(raw),
		Skipped:    session.Skipped(),
	}

	d.logger.Infof("Menu extraction completed in %v", time.Since(startTime))
	d.logger.Infof("Extracted %d categories with %d products", len(result.Categories), result.ProductCount())
	if len(result.Skipped) > 0 {
		d.logger.Warnf("Skipped %d products whose modal could not be opened", len(result.Skipped))
	}
	return result, nil
}

// Close cleans up resources
func (d *DOMExtractor) Close() {}

// Session runs the extraction steps against one page. Products are visited
// strictly one after another because only one modal can be open at a time.
type Session struct {
	page    adapters.Page
	query   *adapters.ElementQuery
	modal   *adapters.ModalController
	config  *types.Config
	logger  types.Logger
	skipped []string
}

// NewSession binds the extraction steps to page
func (d *DOMExtractor) NewSession(page adapters.Page) *Session {
	query := adapters.NewElementQuery(page, d.logger)
	return &Session{
		page:   page,
		query:  query,
		modal:  adapters.NewModalController(query, d.config, d.logger),
		config: d.config,
		logger: d.logger,
	}
}

// Skipped returns the products dropped under the skip failure policy
func (s *Session) Skipped() []string {
	return s.skipped
}

// AutoScroll scrolls down one step per interval until the scrolled distance
// covers the content height minus the viewport, so lazily rendered sections
// get attached to the DOM.
func (s *Session) AutoScroll(ctx context.Context) error {
	step := float64(s.config.ScrollStep)
	if step <= 0 {
		step = 100
	}
	interval := s.config.ScrollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var scrolled float64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		metrics, err := s.page.ScrollMetrics(ctx)
		if err != nil {
			return err
		}
		if err := s.page.ScrollBy(ctx, step); err != nil {
			return err
		}
		scrolled += step

		if scrolled >= metrics.ContentHeight-metrics.ViewportHeight {
			s.logger.Debugf("Scrolled %.0fpx of %.0fpx content", scrolled, metrics.ContentHeight)
			return nil
		}
	}
}

// ParseCategories walks every category section in document order and
// extracts each of its products
func (s *Session) ParseCategories(ctx context.Context) ([]catalog.RawCategory, error) {
	containers, err := s.query.FindAll(ctx, nil, adapters.CategoryContainer)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	s.logger.Infof("Found %d categories", len(containers))

	categories := make([]catalog.RawCategory, 0, len(containers))
	for i, container := range containers {
		category := catalog.RawCategory{
			Name:        s.query.Text(ctx, container, adapters.CategoryName, untitledCategory),
			Description: s.query.Text(ctx, container, adapters.CategoryDescription, ""),
		}

		products, err := s.query.FindAll(ctx, container, adapters.ProductContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to find products of %q: %w", category.Name, err)
		}
		s.logger.Debugf("Processing category %d/%d: %s (%d products)", i+1, len(containers), category.Name, len(products))

		for j, productContainer := range products {
			productStartTime := time.Now()

			product, err := s.GetProductInfo(ctx, productContainer)
			if err != nil {
				if errors.Is(err, adapters.ErrModalTimeout) && s.config.FailurePolicy == types.FailurePolicySkip {
					s.logger.Warnf("Skipping product %d of %q: %v", j+1, category.Name, err)
					s.skipped = append(s.skipped, fmt.Sprintf("%s / %s", category.Name, product.Name))
					continue
				}
				return nil, fmt.Errorf("category %q, product %d: %w", category.Name, j+1, err)
			}

			category.Products = append(category.Products, product)
			s.logger.Debugf("Product %q processed in %v", product.Name, time.Since(productStartTime))
		}

		categories = append(categories, category)
	}
	return categories, nil
}

// GetProductInfo reads the listing fields of a product and the option groups
// behind its modal. The listing fields are read in parallel; when the modal
// fails the returned product still carries them.
func (s *Session) GetProductInfo(ctx context.Context, container adapters.Element) (catalog.RawProduct, error) {
	var name, description, price string

	// Text never fails, so a cancelled crawl surfaces through the group
	// instead of yielding a product with defaulted fields
	g, gctx := errgroup.WithContext(ctx)
	read := func(key adapters.Selector, out *string) func() error {
		return func() error {
			*out = s.query.Text(gctx, container, key, "")
			return gctx.Err()
		}
	}
	g.Go(read(adapters.ProductName, &name))
	g.Go(read(adapters.ProductDescription, &description))
	g.Go(read(adapters.ProductPrice, &price))
	if err := g.Wait(); err != nil {
		return catalog.RawProduct{}, fmt.Errorf("failed to read product fields: %w", err)
	}

	product := catalog.RawProduct{
		Name:        name,
		Description: description,
		PriceText:   price,
	}

	err := s.modal.WithModal(ctx, container, func(ctx context.Context) error {
		modifiers, err := s.ExtractModifiersFromModal(ctx)
		if err != nil {
			return err
		}
		product.Modifiers = modifiers
		return nil
	})
	if err != nil {
		return product, fmt.Errorf("product %q: %w", name, err)
	}
	return product, nil
}

// ExtractModifiersFromModal parses the option groups of the open modal
func (s *Session) ExtractModifiersFromModal(ctx context.Context) ([]catalog.RawModifier, error) {
	modal, err := s.query.Find(ctx, nil, adapters.ModalWindow)
	if err != nil {
		return nil, err
	}

	html, err := s.query.OuterHTML(ctx, modal, adapters.ModifiersList)
	if err != nil {
		return nil, err
	}

	return adapters.ParseModifierMarkup(html)
}
