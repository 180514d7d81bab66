package pagetest

import (
	"fmt"
	"strings"
)

// Option is one row of an option group fixture
type Option struct {
	Name  string
	Price string
}

// Document wraps sections into a full page
func Document(sections ...string) string {
	return "<html><body><main>" + strings.Join(sections, "") + "</main></body></html>"
}

// Category renders a menu section; an empty name omits the title element
func Category(name string, rows ...string) string {
	title := ""
	if name != "" {
		title = fmt.Sprintf(`<h2 data-testid="list-title">%s</h2>`, name)
	}
	return fmt.Sprintf(`<section data-testid="store-content">%s%s</section>`, title, strings.Join(rows, ""))
}

// Product renders a product row; id is matched against ModalSite layers
func Product(id, name, description, price string) string {
	desc := ""
	if description != "" {
		desc = fmt.Sprintf(`<p data-testid="product-row-description__highlighter">%s</p>`, description)
	}
	return fmt.Sprintf(`<div data-testid="product-row-content" data-product="%s">`+
		`<span data-testid="product-row-name__highlighter">%s</span>%s`+
		`<span data-testid="product-price-effective">%s</span></div>`, id, name, desc, price)
}

// ProductModal renders a product dialog layer with its option list
func ProductModal(groups ...string) string {
	return `<div data-testid="modal-overlay"></div><div data-testid="modal-window">` +
		`<div data-testid="custom-product-form">` + strings.Join(groups, "") + `</div></div>`
}

// EmptyModal renders a product dialog whose option list never shows up
func EmptyModal() string {
	return `<div data-testid="modal-overlay"></div><div data-testid="modal-window"><p>Loading</p></div>`
}

// AddressPrompt renders the address dialog some storefronts show on top of a product
func AddressPrompt() string {
	return `<div data-testid="modal-overlay"></div>` +
		`<div data-testid="address-input-modal-container"><input type="text" placeholder="Address"></div>`
}

// OptionGroup renders one option group. input is "radio", "checkbox" or "" for none.
func OptionGroup(title, subtitle string, required bool, input string, options ...Option) string {
	var b strings.Builder
	b.WriteString("<div>")
	if title != "" {
		fmt.Fprintf(&b, `<h3 data-testid="custom-product-form-title">%s</h3>`, title)
	}
	if subtitle != "" || required {
		badge := ""
		if required {
			badge = `<span data-testid="custom-product-form-required">Required</span>`
		}
		fmt.Fprintf(&b, `<p data-testid="custom-product-form-subtitle">%s %s</p>`, subtitle, badge)
	}
	b.WriteString(`<div data-testid="custom-product-form-content">`)
	for _, option := range options {
		control := ""
		if input != "" {
			control = fmt.Sprintf(`<input type="%s" name="%s">`, input, title)
		}
		price := ""
		if option.Price != "" {
			price = fmt.Sprintf(`<span data-testid="custom-product-form-option-price">%s</span>`, option.Price)
		}
		fmt.Fprintf(&b, `<label data-testid="custom-product-form-option">%s`+
			`<span data-testid="custom-product-form-option-name">%s %s</span></label>`, control, option.Name, price)
	}
	b.WriteString("</div></div>")
	return b.String()
}
