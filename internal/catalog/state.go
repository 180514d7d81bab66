package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"menu-extractor/internal/types"
)

// StateCategory is one entry of the category list embedded in the page state
type StateCategory struct {
	Data struct {
		Title    string         `json:"title"`
		Slug     string         `json:"slug"`
		Elements []StateProduct `json:"elements"`
	} `json:"data"`
}

// StateProduct is a product entry of the embedded state
type StateProduct struct {
	Data struct {
		Name            string                `json:"name"`
		Description     string                `json:"description"`
		Price           float64               `json:"price"`
		AttributeGroups []StateAttributeGroup `json:"attributeGroups"`
	} `json:"data"`
}

// StateAttributeGroup is an option group of the embedded state
type StateAttributeGroup struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Min         int              `json:"min"`
	Max         int              `json:"max"`
	Attributes  []StateAttribute `json:"attributes"`
}

// StateAttribute is an option item; PriceImpact is absent for free options
type StateAttribute struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceImpact *float64 `json:"priceImpact"`
}

// FromState maps the embedded state categories onto the catalog tree
func FromState(state []StateCategory) []types.Category {
	categories := make([]types.Category, 0, len(state))
	for _, sc := range state {
		items := make([]types.Product, 0, len(sc.Data.Elements))
		for _, sp := range sc.Data.Elements {
			items = append(items, productFromState(sp))
		}
		categories = append(categories, types.Category{
			Name:        sc.Data.Title,
			Description: sc.Data.Slug,
			Items:       items,
		})
	}
	return categories
}

func productFromState(sp StateProduct) types.Product {
	product := types.Product{
		Name:        sp.Data.Name,
		Description: sp.Data.Description,
		Price:       SanitizePrice(sp.Data.Price),
	}
	for _, group := range sp.Data.AttributeGroups {
		items := make([]types.OptionItem, 0, len(group.Attributes))
		for _, attr := range group.Attributes {
			price := 0.0
			if attr.PriceImpact != nil {
				price = SanitizePrice(*attr.PriceImpact)
			}
			items = append(items, types.OptionItem{
				Name:        attr.Name,
				Description: attr.Description,
				Price:       price,
			})
		}
		product.ChildModifiers = append(product.ChildModifiers, types.OptionGroup{
			Name:         group.Name,
			Description:  group.Description,
			MinSelection: max(group.Min, 0),
			MaxSelection: max(group.Max, 0),
			ChildItems:   items,
		})
	}
	return product
}

// DecodeState selects the category list at a dotted path (for example
// "data.1.initialData.body") inside a raw state document and decodes it.
// Numeric segments index into arrays.
func DecodeState(raw []byte, path string) ([]StateCategory, error) {
	var root interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	node := root
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			next, err := descend(node, segment)
			if err != nil {
				return nil, fmt.Errorf("state path %q: %w", path, err)
			}
			node = next
		}
	}

	body, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode state body: %w", err)
	}

	var categories []StateCategory
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("state body is not a category list: %w", err)
	}
	return categories, nil
}

func descend(node interface{}, segment string) (interface{}, error) {
	switch v := node.(type) {
	case map[string]interface{}:
		child, ok := v[segment]
		if !ok {
			return nil, fmt.Errorf("key %q not found", segment)
		}
		return child, nil
	case []interface{}:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, fmt.Errorf("index %q out of range", segment)
		}
		return v[idx], nil
	default:
		return nil, fmt.Errorf("cannot descend into %T at %q", node, segment)
	}
}
