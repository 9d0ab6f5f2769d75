package models

import (
	"time"

	"github.com/google/uuid"
)

// DishSize is a named portion variant of a dish with its own price.
type DishSize struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DishID    string    `gorm:"column:dish_id;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Price     int       `gorm:"column:price;not null"`
	Weight    *string   `gorm:"column:weight"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
