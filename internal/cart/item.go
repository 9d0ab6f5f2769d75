package cart

import (
	"strings"
	"time"

	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/pkg/enums"
)

const stateVersion = "1.0"

// LineItem is one cart line. Price and weight are snapshotted at add time
// so a later menu change never silently reprices the cart.
type LineItem struct {
	ID          string             `json:"id"`
	DishID      string             `json:"dishId"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Price       int                `json:"price"`
	Quantity    int                `json:"quantity"`
	Size        string             `json:"size,omitempty"`
	Weight      string             `json:"weight,omitempty"`
	Image       string             `json:"image,omitempty"`
	Category    enums.MenuCategory `json:"category,omitempty"`
	Allergens   []string           `json:"allergens,omitempty"`
	AddedAt     time.Time          `json:"addedAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// DisplayName returns the name with the size suffix users see in notices.
func (li LineItem) DisplayName() string {
	if li.Size == "" {
		return li.Name
	}
	return li.Name + " (" + li.Size + ")"
}

// LineID derives the deterministic line id for a dish and optional size.
// The same dish in two sizes occupies two lines.
func LineID(dishID, size string) string {
	if size == "" {
		return dishID
	}
	return dishID + "-" + strings.ToLower(size)
}

// persistedState is the stored cart layout. Unknown fields in stored data
// are ignored on decode.
type persistedState struct {
	Items   []LineItem `json:"items"`
	SavedAt time.Time  `json:"savedAt"`
	Version string     `json:"version"`
}

func newLineItem(dish catalog.DishDTO, sizeName string, quantity int, now time.Time) LineItem {
	price := dish.Price
	weight := ""
	if dish.Weight != nil {
		weight = *dish.Weight
	}
	if sizeName != "" {
		if size, ok := dish.Size(sizeName); ok {
			price = size.Price
			sizeName = size.Name
			if size.Weight != nil {
				weight = *size.Weight
			}
		}
	}
	return LineItem{
		ID:          LineID(dish.ID, sizeName),
		DishID:      dish.ID,
		Name:        dish.Name,
		Description: dish.Description,
		Price:       price,
		Quantity:    quantity,
		Size:        sizeName,
		Weight:      weight,
		Image:       dish.Image,
		Category:    dish.Category,
		Allergens:   dish.Allergens,
		AddedAt:     now,
		UpdatedAt:   now,
	}
}
