package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"menu-extractor/adapters"
	"menu-extractor/internal/types"
	"menu-extractor/utils"
)

// CatalogExtractor reads the full menu catalog from a restaurant ordering page
type CatalogExtractor interface {
	ExtractAll(ctx context.Context, url string) (*types.Catalog, error)
	Close()
}

// PageOpener starts an interactive page session
type PageOpener interface {
	OpenPage(ctx context.Context) (adapters.Page, error)
}

// New creates the extractor selected by config.Strategy
func New(config *types.Config, logger types.Logger) (CatalogExtractor, error) {
	switch config.Strategy {
	case types.StrategyDOM, "":
		return NewDOMExtractor(config, utils.NewBrowserClient(config, logger), logger), nil
	case types.StrategyState:
		if config.UseHTTPOnly {
			return NewStateExtractor(config, NewHTTPStateSource(utils.NewHTTPClient(config, logger)), logger), nil
		}
		return NewStateExtractor(config, NewBrowserStateSource(utils.NewBrowserClient(config, logger), config), logger), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", config.Strategy)
	}
}

// ExtractToJSON extracts the catalog of url and saves it to filename.
// Nothing is written when extraction fails.
func ExtractToJSON(ctx context.Context, e CatalogExtractor, url, filename string, logger types.Logger) (*types.Catalog, error) {
	result, err := e.ExtractAll(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := WriteCatalog(filename, result); err != nil {
		return nil, err
	}

	logger.Infof("Menu data saved to %s", filename)
	return result, nil
}

// WriteCatalog writes the catalog as indented JSON, creating parent directories.
// The file is replaced atomically so readers never see a partial catalog.
func WriteCatalog(filename string, result *types.Catalog) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}
	return nil
}

// writeToFile writes data to a temporary file next to filename and renames it into place
func writeToFile(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
