package catalog

import (
	"context"

	"github.com/arkfood/ordering-backend/pkg/enums"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
)

const (
	maxRecommendations  = 4
	popularFallbackSize = 2
)

// Recommendations suggests items that pair with what is already in the cart.
// Shawarma and kebab pull drinks and sauces, grill pulls sides and drinks,
// burgers pull fries. Anything else falls back to the popular list. Items
// already in the cart are excluded and the result is capped at four.
func (s *service) Recommendations(ctx context.Context, inCart []DishDTO) ([]DishDTO, error) {
	if len(inCart) == 0 {
		return nil, nil
	}

	inCartIDs := make(map[string]struct{}, len(inCart))
	seenCategories := make(map[enums.MenuCategory]struct{})
	var categories []enums.MenuCategory
	for _, dish := range inCart {
		inCartIDs[dish.ID] = struct{}{}
		if _, ok := seenCategories[dish.Category]; !ok {
			seenCategories[dish.Category] = struct{}{}
			categories = append(categories, dish.Category)
		}
	}

	var pool []DishDTO
	for _, category := range categories {
		complementary, err := s.complementary(ctx, category)
		if err != nil {
			return nil, err
		}
		pool = append(pool, complementary...)
	}

	seen := make(map[string]struct{}, len(pool))
	var out []DishDTO
	for _, dish := range pool {
		if _, inCart := inCartIDs[dish.ID]; inCart {
			continue
		}
		if _, dup := seen[dish.ID]; dup {
			continue
		}
		seen[dish.ID] = struct{}{}
		out = append(out, dish)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out, nil
}

func (s *service) complementary(ctx context.Context, category enums.MenuCategory) ([]DishDTO, error) {
	switch category {
	case enums.CategoryShawarma, enums.CategoryKebab:
		return s.categoriesUnion(ctx, enums.CategoryDrinks, enums.CategorySauces)

	case enums.CategoryGrill:
		return s.categoriesUnion(ctx, enums.CategorySides, enums.CategoryDrinks)

	case enums.CategoryBurgers:
		sides, err := s.repo.ListByCategory(ctx, enums.CategorySides)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sides")
		}
		var fries []DishDTO
		for _, dish := range sides {
			if dish.ID == "fries" {
				fries = append(fries, toDishDTO(dish))
			}
		}
		return fries, nil

	default:
		popular, err := s.repo.ListPopular(ctx, popularFallbackSize)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list popular")
		}
		return toDishDTOs(popular), nil
	}
}

func (s *service) categoriesUnion(ctx context.Context, categories ...enums.MenuCategory) ([]DishDTO, error) {
	var out []DishDTO
	for _, category := range categories {
		dishes, err := s.repo.ListByCategory(ctx, category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list category")
		}
		out = append(out, toDishDTOs(dishes)...)
	}
	return out, nil
}
