package enums

import "fmt"

// MenuCategory groups dishes on the menu.
type MenuCategory string

const (
	CategoryShawarma MenuCategory = "shawarma"
	CategoryKebab    MenuCategory = "kebab"
	CategoryGrill    MenuCategory = "grill"
	CategoryBurgers  MenuCategory = "burgers"
	CategoryHotdogs  MenuCategory = "hotdogs"
	CategorySides    MenuCategory = "sides"
	CategorySauces   MenuCategory = "sauces"
	CategoryDrinks   MenuCategory = "drinks"
	CategoryDesserts MenuCategory = "desserts"
	CategoryCombos   MenuCategory = "combos"
)

var validMenuCategories = []MenuCategory{
	CategoryShawarma,
	CategoryKebab,
	CategoryGrill,
	CategoryBurgers,
	CategoryHotdogs,
	CategorySides,
	CategorySauces,
	CategoryDrinks,
	CategoryDesserts,
	CategoryCombos,
}

// String implements fmt.Stringer.
func (m MenuCategory) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MenuCategory.
func (m MenuCategory) IsValid() bool {
	for _, candidate := range validMenuCategories {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMenuCategory converts raw input into a MenuCategory.
func ParseMenuCategory(value string) (MenuCategory, error) {
	for _, candidate := range validMenuCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid menu category %q", value)
}

// MenuCategories returns every known category in menu order.
func MenuCategories() []MenuCategory {
	out := make([]MenuCategory, len(validMenuCategories))
	copy(out, validMenuCategories)
	return out
}
