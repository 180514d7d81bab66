package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"menu-extractor/adapters"
	"menu-extractor/internal/pagetest"
	"menu-extractor/internal/types"
)

const menuURL = "https://ordering.example.com/restaurant/menu"

type fakeOpener struct {
	page   *pagetest.Page
	err    error
	opened int
}

func (f *fakeOpener) OpenPage(ctx context.Context) (adapters.Page, error) {
	f.opened++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.ScrollInterval = time.Millisecond
	config.Timeout = 10 * time.Second
	return config
}

// two categories with two products each; only the burger has options
func menuFixture() (*pagetest.Page, map[string][]string) {
	page := pagetest.MustNew(pagetest.Document(
		pagetest.Category("Burgers",
			pagetest.Product("burger", "Cheeseburger", "With cheddar", "8,90 €"),
			pagetest.Product("veggie", "Veggie burger", "", "9,50 €"),
		),
		pagetest.Category("Drinks",
			pagetest.Product("cola", "Cola", "0.33l", "2,50 €"),
			pagetest.Product("water", "Water", "", "1,80 €"),
		),
	))
	page.ContentHeight = 1000
	page.ViewportHeight = 800

	layers := map[string][]string{
		"burger": {pagetest.ProductModal(pagetest.OptionGroup("Sauce", "Choose one", true, "radio",
			pagetest.Option{Name: "Ketchup"},
			pagetest.Option{Name: "BBQ", Price: "+0,50 €"},
		))},
		"veggie": {pagetest.ProductModal()},
		"cola":   {pagetest.ProductModal()},
		"water":  {pagetest.ProductModal()},
	}
	return page, layers
}

func TestDOMExtractor_ExtractAll(t *testing.T) {
	page, layers := menuFixture()
	page.OnClick = pagetest.ModalSite(layers)
	opener := &fakeOpener{page: page}

	extractor := NewDOMExtractor(testConfig(), opener, logrus.New())
	defer extractor.Close()

	result, err := extractor.ExtractAll(context.Background(), menuURL)

	require.NoError(t, err)
	assert.Equal(t, []string{menuURL}, page.Navigated())
	assert.Equal(t, 1, page.CloseCount())

	require.Len(t, result.Categories, 2)
	assert.Equal(t, 4, result.ProductCount())
	assert.Equal(t, "Burgers", result.Categories[0].Name)
	assert.Equal(t, "Drinks", result.Categories[1].Name)
	assert.Equal(t, "Veggie burger", result.Categories[0].Items[1].Name)
	assert.Equal(t, "Water", result.Categories[1].Items[1].Name)

	burger := result.Categories[0].Items[0]
	assert.Equal(t, "Cheeseburger", burger.Name)
	assert.Equal(t, "With cheddar", burger.Description)
	assert.Equal(t, 8.9, burger.Price)
	require.Len(t, burger.ChildModifiers, 1)
	sauce := burger.ChildModifiers[0]
	assert.Equal(t, "Sauce", sauce.Name)
	assert.Equal(t, "Choose one", sauce.Description)
	assert.Equal(t, 1, sauce.MinSelection)
	assert.Equal(t, 1, sauce.MaxSelection)
	require.Len(t, sauce.ChildItems, 2)
	assert.Equal(t, types.OptionItem{Name: "BBQ", Price: 0.5}, sauce.ChildItems[1])

	assert.Empty(t, result.Categories[1].Items[0].ChildModifiers)
	assert.Empty(t, result.Skipped)
}

func TestDOMExtractor_OneModalAtATime(t *testing.T) {
	page, layers := menuFixture()
	page.OnClick = pagetest.ModalSite(layers)

	_, err := NewDOMExtractor(testConfig(), &fakeOpener{page: page}, logrus.New()).ExtractAll(context.Background(), menuURL)
	require.NoError(t, err)

	// every product click is followed by exactly one overlay click before the next product
	clicks := page.Clicks()
	require.Len(t, clicks, 8)
	for i, click := range clicks {
		if i%2 == 0 {
			assert.True(t, click.Element.Is(adapters.ProductContainer.Query()), "click %d should open a product", i)
		} else {
			assert.True(t, click.Element.Is(adapters.ModalOverlay.Query()), "click %d should close the modal", i)
		}
	}
}

func TestDOMExtractor_SkipPolicy(t *testing.T) {
	page, layers := menuFixture()
	layers["cola"] = []string{pagetest.EmptyModal()}
	page.OnClick = pagetest.ModalSite(layers)

	config := testConfig()
	config.FailurePolicy = types.FailurePolicySkip

	result, err := NewDOMExtractor(config, &fakeOpener{page: page}, logrus.New()).ExtractAll(context.Background(), menuURL)

	require.NoError(t, err)
	assert.Equal(t, 3, result.ProductCount())
	assert.Equal(t, []string{"Drinks / Cola"}, result.Skipped)
	assert.Equal(t, 4, page.ClicksOn(adapters.ModalOverlay.Query()))
	assert.False(t, page.Has(adapters.ModalWindow.Query()))
}

func TestDOMExtractor_AbortPolicy(t *testing.T) {
	page, layers := menuFixture()
	layers["cola"] = []string{pagetest.EmptyModal()}
	page.OnClick = pagetest.ModalSite(layers)

	output := filepath.Join(t.TempDir(), "data", "output.json")
	extractor := NewDOMExtractor(testConfig(), &fakeOpener{page: page}, logrus.New())

	result, err := ExtractToJSON(context.Background(), extractor, menuURL, output, logrus.New())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, adapters.ErrModalTimeout)
	assert.Contains(t, err.Error(), "Cola")
	assert.Equal(t, 1, page.CloseCount())
	// the failing product was still closed, and nothing after it was opened
	assert.Equal(t, 3, page.ClicksOn(adapters.ModalOverlay.Query()))
	assert.Equal(t, 3, page.ClicksOn(adapters.ProductContainer.Query()))
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDOMExtractor_NavigationFailure(t *testing.T) {
	page, _ := menuFixture()
	page.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	_, err := NewDOMExtractor(testConfig(), &fakeOpener{page: page}, logrus.New()).ExtractAll(context.Background(), menuURL)

	assert.ErrorContains(t, err, "ERR_NAME_NOT_RESOLVED")
	assert.Equal(t, 1, page.CloseCount())
	assert.Empty(t, page.Clicks())
}

func TestDOMExtractor_BrowserLaunchFailure(t *testing.T) {
	opener := &fakeOpener{err: errors.New("chrome not found")}

	_, err := NewDOMExtractor(testConfig(), opener, logrus.New()).ExtractAll(context.Background(), menuURL)

	assert.ErrorContains(t, err, "chrome not found")
	assert.Equal(t, 1, opener.opened)
}

func TestSession_AutoScroll(t *testing.T) {
	page, _ := menuFixture()
	session := NewDOMExtractor(testConfig(), nil, logrus.New()).NewSession(page)

	require.NoError(t, session.AutoScroll(context.Background()))
	assert.Equal(t, 2, page.ScrollCalls())
	assert.Equal(t, 200.0, page.ScrollY)

	// scrolling again past the end leaves the page where it was
	require.NoError(t, session.AutoScroll(context.Background()))
	assert.Equal(t, 200.0, page.ScrollY)
}

func TestSession_AutoScrollShortPage(t *testing.T) {
	page := pagetest.MustNew(pagetest.Document())
	session := NewDOMExtractor(testConfig(), nil, logrus.New()).NewSession(page)

	require.NoError(t, session.AutoScroll(context.Background()))
	assert.Equal(t, 1, page.ScrollCalls())
	assert.Equal(t, 0.0, page.ScrollY)
}

func TestSession_ParseCategoriesMatchesContainers(t *testing.T) {
	page := pagetest.MustNew(pagetest.Document(
		pagetest.Category("",
			pagetest.Product("a", "A", "", "1"),
		),
		pagetest.Category("Sides",
			pagetest.Product("b", "B", "", "2"),
			pagetest.Product("c", "C", "", "3"),
			pagetest.Product("d", "D", "", "4"),
		),
		pagetest.Category("Empty"),
	))
	page.OnClick = pagetest.ModalSite(map[string][]string{
		"a": {pagetest.ProductModal()},
		"b": {pagetest.ProductModal()},
		"c": {pagetest.ProductModal()},
		"d": {pagetest.ProductModal()},
	})
	session := NewDOMExtractor(testConfig(), nil, logrus.New()).NewSession(page)

	categories, err := session.ParseCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Untitled category", categories[0].Name)
	assert.Len(t, categories[0].Products, 1)
	assert.Len(t, categories[1].Products, 3)
	assert.Empty(t, categories[2].Products)
	assert.Equal(t, "B", categories[1].Products[0].Name)
	assert.Equal(t, "D", categories[1].Products[2].Name)
}

func TestSession_GetProductInfoCancelled(t *testing.T) {
	page, layers := menuFixture()
	page.OnClick = pagetest.ModalSite(layers)
	session := NewDOMExtractor(testConfig(), nil, logrus.New()).NewSession(page)

	containers, err := page.QueryAll(context.Background(), nil, adapters.ProductContainer.Query())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = session.GetProductInfo(ctx, containers[0])

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.Clicks(), "no modal is opened once the crawl is cancelled")
}

func TestSession_CancellationIsNotSkipped(t *testing.T) {
	page, layers := menuFixture()
	page.OnClick = pagetest.ModalSite(layers)
	config := testConfig()
	config.FailurePolicy = types.FailurePolicySkip
	session := NewDOMExtractor(config, nil, logrus.New()).NewSession(page)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	categories, err := session.ParseCategories(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, categories)
	assert.Empty(t, session.Skipped())
}
