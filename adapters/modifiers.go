package adapters

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"menu-extractor/internal/catalog"
)

const defaultModifierName = "Unnamed modifier"

// ParseModifierMarkup reads the option groups out of the markup of a product
// modal. Every direct child of the option list is one group.
func ParseModifierMarkup(html string) ([]catalog.RawModifier, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse modal markup: %w", err)
	}

	list := doc.Find(ModifiersList.Query()).First()
	if list.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", ModifiersList, ErrElementNotFound)
	}

	var modifiers []catalog.RawModifier
	list.Children().Each(func(i int, group *goquery.Selection) {
		modifiers = append(modifiers, parseModifierGroup(group))
	})
	return modifiers, nil
}

func parseModifierGroup(group *goquery.Selection) catalog.RawModifier {
	modifier := catalog.RawModifier{
		Name: selectionText(group.Find(ModifierTitle.Query()).First(), defaultModifierName),
	}

	subtitle := group.Find(ModifierSubtitle.Query()).First()
	if subtitle.Length() > 0 {
		// the badge sits inside the subtitle and must not leak into the description
		modifier.Required = subtitle.Find(ModifierRequired.Query()).Length() > 0
		modifier.Description = ownText(subtitle, ModifierRequired)
	}

	switch {
	case group.Find(RadioInput.Query()).Length() > 0:
		modifier.Choice = catalog.ChoiceRadio
	case group.Find(CheckboxInput.Query()).Length() > 0:
		modifier.Choice = catalog.ChoiceCheckbox
	}

	group.Find(ModifierContent.Query()).First().Find(ModifierItem.Query()).Each(func(i int, option *goquery.Selection) {
		modifier.Items = append(modifier.Items, catalog.RawModifierItem{
			Name:      firstTextNode(option.Find(ModifierItemName.Query()).First()),
			PriceText: selectionText(option.Find(ModifierItemPrice.Query()).First(), ""),
		})
	})
	return modifier
}

func selectionText(s *goquery.Selection, def string) string {
	if s.Length() == 0 {
		return def
	}
	if text := catalog.CleanText(s.Text()); text != "" {
		return text
	}
	return def
}

// firstTextNode returns the first non-blank text node directly under s. The
// price label nested inside the name label is an element, so its text is skipped.
func firstTextNode(s *goquery.Selection) string {
	var name string
	s.Contents().EachWithBreak(func(i int, node *goquery.Selection) bool {
		if goquery.NodeName(node) != "#text" {
			return true
		}
		if text := catalog.CleanText(node.Text()); text != "" {
			name = text
			return false
		}
		return true
	})
	return name
}

// ownText returns the text of s with every descendant matching skip removed
func ownText(s *goquery.Selection, skip Selector) string {
	clone := s.Clone()
	clone.Find(skip.Query()).Remove()
	return catalog.CleanText(clone.Text())
}
