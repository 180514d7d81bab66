package adapters

import "fmt"

// Selector is a symbolic name for a piece of the ordering page markup.
// Nothing outside this file knows how a Selector is matched in the DOM.
type Selector string

const (
	CategoryContainer   Selector = "CATEGORY_CONTAINER"
	CategoryName        Selector = "CATEGORY_NAME"
	CategoryDescription Selector = "CATEGORY_DESCRIPTION"
	ProductContainer    Selector = "PRODUCT_CONTAINER"
	ProductName         Selector = "PRODUCT_NAME"
	ProductDescription  Selector = "PRODUCT_DESCRIPTION"
	ProductPrice        Selector = "PRODUCT_PRICE"
	ModalWindow         Selector = "MODAL_WINDOW"
	ModalOverlay        Selector = "MODAL_OVERLAY"
	AddressModalForm    Selector = "ADDRESS_MODAL_FORM"
	ModifiersList       Selector = "MODIFIERS_LIST"
	ModifierTitle       Selector = "MODIFIER_TITLE"
	ModifierSubtitle    Selector = "MODIFIER_SUBTITLE"
	ModifierRequired    Selector = "MODIFIER_REQUIRED"
	ModifierContent     Selector = "MODIFIER_CONTENT"
	ModifierItem        Selector = "MODIFIER_ITEM"
	ModifierItemName    Selector = "MODIFIER_ITEM_NAME"
	ModifierItemPrice   Selector = "MODIFIER_ITEM_PRICE"
	RadioInput          Selector = "RADIO_INPUT"
	CheckboxInput       Selector = "CHECKBOX_INPUT"
)

// test ids used by the storefront markup
var testIDs = map[Selector]string{
	CategoryContainer:   "store-content",
	CategoryName:        "list-title",
	CategoryDescription: "list-description",
	ProductContainer:    "product-row-content",
	ProductName:         "product-row-name__highlighter",
	ProductDescription:  "product-row-description__highlighter",
	ProductPrice:        "product-price-effective",
	ModalWindow:         "modal-window",
	ModalOverlay:        "modal-overlay",
	AddressModalForm:    "address-input-modal-container",
	ModifiersList:       "custom-product-form",
	ModifierTitle:       "custom-product-form-title",
	ModifierSubtitle:    "custom-product-form-subtitle",
	ModifierRequired:    "custom-product-form-required",
	ModifierContent:     "custom-product-form-content",
	ModifierItem:        "custom-product-form-option",
	ModifierItemName:    "custom-product-form-option-name",
	ModifierItemPrice:   "custom-product-form-option-price",
}

var inputTypes = map[Selector]string{
	RadioInput:    "radio",
	CheckboxInput: "checkbox",
}

// Query returns the CSS query matching s
func (s Selector) Query() string {
	if id, ok := testIDs[s]; ok {
		return fmt.Sprintf(`[data-testid="%s"]`, id)
	}
	if kind, ok := inputTypes[s]; ok {
		return fmt.Sprintf(`input[type="%s"]`, kind)
	}
	panic(fmt.Sprintf("adapters: unknown selector %q", string(s)))
}

// Selectors lists every known selector key in a stable order
func Selectors() []Selector {
	return []Selector{
		CategoryContainer, CategoryName, CategoryDescription,
		ProductContainer, ProductName, ProductDescription, ProductPrice,
		ModalWindow, ModalOverlay, AddressModalForm, ModifiersList,
		ModifierTitle, ModifierSubtitle, ModifierRequired, ModifierContent,
		ModifierItem, ModifierItemName, ModifierItemPrice,
		RadioInput, CheckboxInput,
	}
}
