package catalog

import (
	"context"

	"github.com/arkfood/ordering-backend/pkg/db"
	"github.com/arkfood/ordering-backend/pkg/db/models"
	"github.com/arkfood/ordering-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes menu persistence.
type Repository struct {
	client *db.Client
}

func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) gorm(ctx context.Context) *gorm.DB {
	return r.client.DB().WithContext(ctx)
}

// FindByID loads a dish with its size variants. Returns gorm.ErrRecordNotFound
// when the dish does not exist.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Dish, error) {
	var dish models.Dish
	err := r.gorm(ctx).
		Preload("Sizes").
		Where("id = ?", id).
		First(&dish).Error
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

// List returns every available dish ordered by category then name.
func (r *Repository) List(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	err := r.gorm(ctx).
		Preload("Sizes").
		Where("available = ?", true).
		Order("category, name").
		Find(&dishes).Error
	if err != nil {
		return nil, err
	}
	return dishes, nil
}

// ListByCategory returns the available dishes in one category.
func (r *Repository) ListByCategory(ctx context.Context, category enums.MenuCategory) ([]models.Dish, error) {
	var dishes []models.Dish
	err := r.gorm(ctx).
		Preload("Sizes").
		Where("available = ? AND category = ?", true, category).
		Order("name").
		Find(&dishes).Error
	if err != nil {
		return nil, err
	}
	return dishes, nil
}

// ListPopular returns up to limit dishes flagged as popular, best rated first.
func (r *Repository) ListPopular(ctx context.Context, limit int) ([]models.Dish, error) {
	var dishes []models.Dish
	q := r.gorm(ctx).
		Preload("Sizes").
		Where("available = ? AND popular = ?", true, true).
		Order("rating DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}
