package types

import "time"

// Category is one top-level menu section
type Category struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Items       []Product `json:"items"`
}

// Product represents a purchasable menu item with its customization groups
type Product struct {
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Price          float64       `json:"price"`
	ChildModifiers []OptionGroup `json:"child_modifiers,omitempty"`
}

// OptionGroup is a named set of choices attached to a product (a "modifier").
// MinSelection is 1 for mandatory groups. MaxSelection is 1 for exclusive
// groups, the number of items for multi-select groups and 0 when unknown.
type OptionGroup struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	MinSelection int          `json:"min_selection"`
	MaxSelection int          `json:"max_selection"`
	ChildItems   []OptionItem `json:"child_items"`
}

// OptionItem is one selectable choice within an option group
type OptionItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// Catalog is the complete extraction result handed to the output writer
type Catalog struct {
	Categories []Category `json:"categories"`
	// Skipped lists products dropped under FailurePolicySkip
	Skipped []string `json:"skipped,omitempty"`
}

// ProductCount returns the number of products across all categories
func (c *Catalog) ProductCount() int {
	total := 0
	for _, category := range c.Categories {
		total += len(category.Items)
	}
	return total
}

// Strategy selects how the catalog is read from the page
type Strategy string

const (
	// StrategyDOM drives the browser: scroll, open every product modal and scrape it
	StrategyDOM Strategy = "dom"
	// StrategyState reads the server-injected client state blob directly
	StrategyState Strategy = "state"
)

// FailurePolicy decides what happens when a product modal cannot be opened
type FailurePolicy string

const (
	// FailurePolicyAbort fails the whole crawl; nothing is written
	FailurePolicyAbort FailurePolicy = "abort"
	// FailurePolicySkip drops the product, logs a warning and records it in Catalog.Skipped
	FailurePolicySkip FailurePolicy = "skip"
)

// Config holds the configuration for the extractor
type Config struct {
	Strategy      Strategy      `mapstructure:"strategy"`
	FailurePolicy FailurePolicy `mapstructure:"failure_policy"`

	Timeout           time.Duration `mapstructure:"timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	ModalTimeout      time.Duration `mapstructure:"modal_timeout"`
	DismissTimeout    time.Duration `mapstructure:"dismiss_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`

	ScrollStep     int           `mapstructure:"scroll_step"`
	ScrollInterval time.Duration `mapstructure:"scroll_interval"`

	// Offset inside the overlay element that is clicked to dismiss a dialog
	OverlayClickX float64 `mapstructure:"overlay_click_x"`
	OverlayClickY float64 `mapstructure:"overlay_click_y"`

	Headless     bool          `mapstructure:"headless"`
	UseHTTPOnly  bool          `mapstructure:"http_only"`
	UserAgent    string        `mapstructure:"user_agent"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	MaxRetries   int           `mapstructure:"max_retries"`
	StatePath    string        `mapstructure:"state_path"`
	OutputPath   string        `mapstructure:"output_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Strategy:          StrategyDOM,
		FailurePolicy:     FailurePolicyAbort,
		Timeout:           10 * time.Minute,
		NavigationTimeout: 60 * time.Second,
		ModalTimeout:      5 * time.Second,
		DismissTimeout:    5 * time.Second,
		SettleDelay:       500 * time.Millisecond,
		ScrollStep:        100,
		ScrollInterval:    100 * time.Millisecond,
		OverlayClickX:     10,
		OverlayClickY:     10,
		Headless:          true,
		UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestDelay:      1 * time.Second,
		MaxRetries:        3,
		StatePath:         "data.1.initialData.body",
		OutputPath:        "data/output.json",
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
