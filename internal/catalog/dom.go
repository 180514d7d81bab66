package catalog

import "menu-extractor/internal/types"

// ChoiceKind is the kind of input control found inside an option group
type ChoiceKind int

const (
	ChoiceUnknown ChoiceKind = iota
	ChoiceRadio
	ChoiceCheckbox
)

// RawCategory is a menu section as scraped from the rendered page
type RawCategory struct {
	Name        string
	Description string
	Products    []RawProduct
}

// RawProduct holds the listing fields of a product and the option groups read from its modal
type RawProduct struct {
	Name        string
	Description string
	PriceText   string
	Modifiers   []RawModifier
}

// RawModifier is one option group as found in the modal markup
type RawModifier struct {
	Name        string
	Description string
	Required    bool
	Choice      ChoiceKind
	Items       []RawModifierItem
}

// RawModifierItem is one option row inside a group
type RawModifierItem struct {
	Name      string
	PriceText string
}

// FromDOM maps scraped page data onto the catalog tree
func FromDOM(raw []RawCategory) []types.Category {
	categories := make([]types.Category, 0, len(raw))
	for _, rc := range raw {
		items := make([]types.Product, 0, len(rc.Products))
		for _, rp := range rc.Products {
			items = append(items, productFromDOM(rp))
		}
		categories = append(categories, types.Category{
			Name:        CleanText(rc.Name),
			Description: CleanText(rc.Description),
			Items:       items,
		})
	}
	return categories
}

func productFromDOM(rp RawProduct) types.Product {
	product := types.Product{
		Name:        CleanText(rp.Name),
		Description: CleanText(rp.Description),
		Price:       ParsePrice(rp.PriceText),
	}
	for _, rm := range rp.Modifiers {
		product.ChildModifiers = append(product.ChildModifiers, modifierFromDOM(rm))
	}
	return product
}

func modifierFromDOM(rm RawModifier) types.OptionGroup {
	group := types.OptionGroup{
		Name:        CleanText(rm.Name),
		Description: CleanText(rm.Description),
		ChildItems:  make([]types.OptionItem, 0, len(rm.Items)),
	}
	if rm.Required {
		group.MinSelection = 1
	}

	switch rm.Choice {
	case ChoiceRadio:
		group.MaxSelection = 1
	case ChoiceCheckbox:
		// markup carries no explicit upper bound, so every option may be picked
		group.MaxSelection = len(rm.Items)
	}

	for _, item := range rm.Items {
		group.ChildItems = append(group.ChildItems, types.OptionItem{
			Name:  CleanText(item.Name),
			Price: ParsePrice(item.PriceText),
		})
	}
	return group
}
