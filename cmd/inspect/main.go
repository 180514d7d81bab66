// Command inspect opens a live menu page and reports how many elements each
// selector key matches, to check the selector table against a storefront.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"menu-extractor/adapters"
	"menu-extractor/extractor"
	"menu-extractor/internal/config"
	"menu-extractor/utils"
)

type selectorCount struct {
	Key   adapters.Selector
	Query string
	Count int
	Err   error
}

// countSelectors matches every selector key against the whole page
func countSelectors(ctx context.Context, query *adapters.ElementQuery) []selectorCount {
	var counts []selectorCount
	for _, key := range adapters.Selectors() {
		elements, err := query.FindAll(ctx, nil, key)
		counts = append(counts, selectorCount{Key: key, Query: key.Query(), Count: len(elements), Err: err})
	}
	return counts
}

func printCounts(w io.Writer, title string, counts []selectorCount) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range counts {
		if c.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\terror: %v\n", c.Key, c.Query, c.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Key, c.Query, c.Count)
	}
	tw.Flush()
}

// inspect scrolls the page, counts matches, then opens the first product modal
// and counts again so the modal selectors can be checked too
func inspect(ctx context.Context, session *extractor.Session, query *adapters.ElementQuery, modal *adapters.ModalController, out io.Writer) error {
	if err := session.AutoScroll(ctx); err != nil {
		return fmt.Errorf("failed to scroll page: %w", err)
	}
	printCounts(out, "Page", countSelectors(ctx, query))

	first, err := query.Find(ctx, nil, adapters.ProductContainer)
	if err != nil {
		fmt.Fprintln(out, "No product container found, skipping modal check")
		return nil
	}

	return modal.WithModal(ctx, first, func(ctx context.Context) error {
		printCounts(out, "First product modal", countSelectors(ctx, query))
		return nil
	})
}

func main() {
	_ = godotenv.Load()

	configFlag := flag.String("config", "", "YAML config file")
	showBrowser := flag.Bool("show-browser", false, "Run the browser with a visible window")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <menu-url>\n", os.Args[0])
		os.Exit(1)
	}
	url := flag.Arg(0)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if *showBrowser {
		cfg.Headless = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	page, err := utils.NewBrowserClient(cfg, logger).OpenPage(ctx)
	if err != nil {
		logger.Fatalf("Failed to open page: %v", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		page.Close()
		logger.Fatalf("Failed to load %s: %v", url, err)
	}

	query := adapters.NewElementQuery(page, logger)
	session := extractor.NewDOMExtractor(cfg, nil, logger).NewSession(page)
	modal := adapters.NewModalController(query, cfg, logger)

	if err := inspect(ctx, session, query, modal, os.Stdout); err != nil {
		page.Close()
		logger.Fatalf("Inspection failed: %v", err)
	}
}
