package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"menu-extractor/adapters"
	"menu-extractor/internal/catalog"
	"menu-extractor/internal/pagetest"
)

func TestParseModifierMarkup(t *testing.T) {
	html := pagetest.ProductModal(
		pagetest.OptionGroup("Extras", "Pick any", true, "checkbox",
			pagetest.Option{Name: "Bacon", Price: "+1,50 €"},
			pagetest.Option{Name: "Cheese", Price: "+0,80 €"},
			pagetest.Option{Name: "Onions"},
		),
		pagetest.OptionGroup("Size", "", false, "radio",
			pagetest.Option{Name: "Regular"},
			pagetest.Option{Name: "Large", Price: "+2,00 €"},
		),
		pagetest.OptionGroup("", "", false, "",
			pagetest.Option{Name: "No cutlery"},
		),
	)

	modifiers, err := adapters.ParseModifierMarkup(html)
	require.NoError(t, err)
	require.Len(t, modifiers, 3)

	extras := modifiers[0]
	assert.Equal(t, "Extras", extras.Name)
	assert.Equal(t, "Pick any", extras.Description)
	assert.True(t, extras.Required)
	assert.Equal(t, catalog.ChoiceCheckbox, extras.Choice)
	require.Len(t, extras.Items, 3)
	assert.Equal(t, catalog.RawModifierItem{Name: "Bacon", PriceText: "+1,50 €"}, extras.Items[0])
	assert.Equal(t, catalog.RawModifierItem{Name: "Onions"}, extras.Items[2])

	size := modifiers[1]
	assert.False(t, size.Required)
	assert.Empty(t, size.Description)
	assert.Equal(t, catalog.ChoiceRadio, size.Choice)

	unnamed := modifiers[2]
	assert.Equal(t, "Unnamed modifier", unnamed.Name)
	assert.Equal(t, catalog.ChoiceUnknown, unnamed.Choice)
	require.Len(t, unnamed.Items, 1)
}

func TestParseModifierMarkup_NameExcludesNestedPrice(t *testing.T) {
	html := `<div data-testid="custom-product-form"><div>
		<div data-testid="custom-product-form-content">
			<div data-testid="custom-product-form-option">
				<span data-testid="custom-product-form-option-name">
					Extra sauce
					<span data-testid="custom-product-form-option-price">+0,50 €</span>
				</span>
			</div>
		</div>
	</div></div>`

	modifiers, err := adapters.ParseModifierMarkup(html)
	require.NoError(t, err)
	require.Len(t, modifiers, 1)
	require.Len(t, modifiers[0].Items, 1)
	assert.Equal(t, "Extra sauce", modifiers[0].Items[0].Name)
	assert.Equal(t, "+0,50 €", modifiers[0].Items[0].PriceText)
}

func TestParseModifierMarkup_SelectionBounds(t *testing.T) {
	html := pagetest.ProductModal(
		pagetest.OptionGroup("Toppings", "", true, "checkbox",
			pagetest.Option{Name: "A"}, pagetest.Option{Name: "B"}, pagetest.Option{Name: "C"}),
		pagetest.OptionGroup("Bread", "", false, "radio",
			pagetest.Option{Name: "White"}, pagetest.Option{Name: "Brown"}),
		pagetest.OptionGroup("Notes", "", false, "",
			pagetest.Option{Name: "Well done"}),
	)

	modifiers, err := adapters.ParseModifierMarkup(html)
	require.NoError(t, err)

	groups := catalog.FromDOM([]catalog.RawCategory{{
		Name:     "Any",
		Products: []catalog.RawProduct{{Name: "Sandwich", Modifiers: modifiers}},
	}})[0].Items[0].ChildModifiers

	require.Len(t, groups, 3)
	assert.Equal(t, [2]int{1, 3}, [2]int{groups[0].MinSelection, groups[0].MaxSelection})
	assert.Equal(t, [2]int{0, 1}, [2]int{groups[1].MinSelection, groups[1].MaxSelection})
	assert.Equal(t, [2]int{0, 0}, [2]int{groups[2].MinSelection, groups[2].MaxSelection})
}

func TestParseModifierMarkup_MissingList(t *testing.T) {
	_, err := adapters.ParseModifierMarkup(pagetest.EmptyModal())
	assert.ErrorIs(t, err, adapters.ErrElementNotFound)
}
