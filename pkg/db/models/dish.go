package models

import (
	"time"

	"github.com/arkfood/ordering-backend/pkg/enums"
)

// Dish is a menu entry. Prices are hryvnias as whole numbers, the way the
// menu is published. Allergens are stored as a JSON array so the model
// works on both postgres and sqlite.
type Dish struct {
	ID              string             `gorm:"column:id;primaryKey"`
	Name            string             `gorm:"column:name;not null"`
	Description     string             `gorm:"column:description;not null;default:''"`
	Price           int                `gorm:"column:price;not null"`
	OriginalPrice   *int               `gorm:"column:original_price"`
	Weight          *string            `gorm:"column:weight"`
	Image           string             `gorm:"column:image;not null;default:''"`
	Category        enums.MenuCategory `gorm:"column:category;not null;index"`
	Allergens       []string           `gorm:"column:allergens;serializer:json"`
	Popular         bool               `gorm:"column:popular;not null;default:false"`
	Vegetarian      bool               `gorm:"column:vegetarian;not null;default:false"`
	Vegan           bool               `gorm:"column:vegan;not null;default:false"`
	Rating          *float64           `gorm:"column:rating"`
	Calories        *int               `gorm:"column:calories"`
	PreparationTime int                `gorm:"column:preparation_time;not null;default:0"`
	AvailableHours  *string            `gorm:"column:available_hours"`
	Available       bool               `gorm:"column:available;not null;default:true"`
	Sizes           []DishSize         `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
