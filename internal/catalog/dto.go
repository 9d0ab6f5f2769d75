package catalog

import (
	"strings"

	"github.com/arkfood/ordering-backend/pkg/db/models"
	"github.com/arkfood/ordering-backend/pkg/enums"
)

// SizeDTO is a portion variant of a dish.
type SizeDTO struct {
	Name   string  `json:"name"`
	Price  int     `json:"price"`
	Weight *string `json:"weight,omitempty"`
}

// DishDTO is the API and cart-facing shape of a menu entry.
type DishDTO struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	Price           int                `json:"price"`
	OriginalPrice   *int               `json:"original_price,omitempty"`
	Weight          *string            `json:"weight,omitempty"`
	Image           string             `json:"image,omitempty"`
	Category        enums.MenuCategory `json:"category"`
	Allergens       []string           `json:"allergens,omitempty"`
	Popular         bool               `json:"popular,omitempty"`
	Vegetarian      bool               `json:"vegetarian,omitempty"`
	Vegan           bool               `json:"vegan,omitempty"`
	Rating          *float64           `json:"rating,omitempty"`
	Calories        *int               `json:"calories,omitempty"`
	PreparationTime int                `json:"preparation_time,omitempty"`
	AvailableHours  *string            `json:"available_hours,omitempty"`
	Sizes           []SizeDTO          `json:"sizes,omitempty"`
}

// MenuSectionDTO groups the dishes of one category.
type MenuSectionDTO struct {
	Category enums.MenuCategory `json:"category"`
	Dishes   []DishDTO          `json:"dishes"`
}

// MenuDTO is the full published menu.
type MenuDTO struct {
	Sections []MenuSectionDTO `json:"sections"`
}

// Size returns the variant matching name, comparing case-insensitively.
func (d DishDTO) Size(name string) (SizeDTO, bool) {
	for _, s := range d.Sizes {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return SizeDTO{}, false
}

// PriceFor returns the price for the given size name, falling back to the
// base price when the dish has no sizes or no size was requested.
func (d DishDTO) PriceFor(sizeName string) (int, bool) {
	if sizeName == "" {
		return d.Price, true
	}
	size, ok := d.Size(sizeName)
	if !ok {
		return 0, false
	}
	return size.Price, true
}

func toDishDTO(dish models.Dish) DishDTO {
	dto := DishDTO{
		ID:              dish.ID,
		Name:            dish.Name,
		Description:     dish.Description,
		Price:           dish.Price,
		OriginalPrice:   dish.OriginalPrice,
		Weight:          dish.Weight,
		Image:           dish.Image,
		Category:        dish.Category,
		Allergens:       dish.Allergens,
		Popular:         dish.Popular,
		Vegetarian:      dish.Vegetarian,
		Vegan:           dish.Vegan,
		Rating:          dish.Rating,
		Calories:        dish.Calories,
		PreparationTime: dish.PreparationTime,
		AvailableHours:  dish.AvailableHours,
	}
	for _, size := range dish.Sizes {
		dto.Sizes = append(dto.Sizes, SizeDTO{
			Name:   size.Name,
			Price:  size.Price,
			Weight: size.Weight,
		})
	}
	return dto
}

func toDishDTOs(dishes []models.Dish) []DishDTO {
	out := make([]DishDTO, 0, len(dishes))
	for _, dish := range dishes {
		out = append(out, toDishDTO(dish))
	}
	return out
}
