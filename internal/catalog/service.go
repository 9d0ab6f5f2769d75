package catalog

import (
	"context"
	"errors"

	"github.com/arkfood/ordering-backend/pkg/enums"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"gorm.io/gorm"
)

// Lookup is the read surface the cart core depends on.
type Lookup interface {
	Dish(ctx context.Context, id string) (DishDTO, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes menu reads and recommendations.
type Service interface {
	Lookup
	Menu(ctx context.Context) (MenuDTO, error)
	Category(ctx context.Context, category enums.MenuCategory) ([]DishDTO, error)
	Popular(ctx context.Context, limit int) ([]DishDTO, error)
	Recommendations(ctx context.Context, inCart []DishDTO) ([]DishDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Dish returns one dish by id.
func (s *service) Dish(ctx context.Context, id string) (DishDTO, error) {
	if id == "" {
		return DishDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "dish id is required")
	}
	dish, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DishDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "dish not found")
		}
		return DishDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dish")
	}
	return toDishDTO(*dish), nil
}

// Menu returns the full menu grouped by category in publication order.
func (s *service) Menu(ctx context.Context) (MenuDTO, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		return MenuDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu")
	}

	byCategory := make(map[enums.MenuCategory][]DishDTO)
	for _, dish := range dishes {
		byCategory[dish.Category] = append(byCategory[dish.Category], toDishDTO(dish))
	}

	menu := MenuDTO{}
	for _, category := range enums.MenuCategories() {
		if section, ok := byCategory[category]; ok {
			menu.Sections = append(menu.Sections, MenuSectionDTO{
				Category: category,
				Dishes:   section,
			})
		}
	}
	return menu, nil
}

// Category returns the dishes of one category.
func (s *service) Category(ctx context.Context, category enums.MenuCategory) ([]DishDTO, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown menu category")
	}
	dishes, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list category")
	}
	return toDishDTOs(dishes), nil
}

// Popular returns the best rated popular dishes.
func (s *service) Popular(ctx context.Context, limit int) ([]DishDTO, error) {
	dishes, err := s.repo.ListPopular(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list popular")
	}
	return toDishDTOs(dishes), nil
}
