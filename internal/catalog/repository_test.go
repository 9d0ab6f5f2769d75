package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/arkfood/ordering-backend/pkg/db/models"
	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryFindByIDPreloadsSizes(t *testing.T) {
	client := newTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	mustCreateDish(t, client, models.Dish{
		ID:       "shawarma-chicken",
		Name:     "Шаурма Курка",
		Price:    125,
		Category: enums.CategoryShawarma,
		Sizes: []models.DishSize{
			{ID: uuid.New(), Name: "Мала", Price: 115},
			{ID: uuid.New(), Name: "Звичайна", Price: 125},
		},
	})

	dish, err := repo.FindByID(ctx, "shawarma-chicken")
	require.NoError(t, err)
	require.Equal(t, "Шаурма Курка", dish.Name)
	require.Len(t, dish.Sizes, 2)

	_, err = repo.FindByID(ctx, "missing")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryCarriesAvailabilityWindow(t *testing.T) {
	client := newTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	mustCreateDish(t, client, models.Dish{
		ID:             "lunch-deal",
		Name:           "Бізнес-ланч",
		Price:          140,
		Category:       enums.CategoryCombos,
		AvailableHours: strPtr("11:00-16:00"),
	})

	dish, err := repo.FindByID(ctx, "lunch-deal")
	require.NoError(t, err)
	require.NotNil(t, dish.AvailableHours)
	require.Equal(t, "11:00-16:00", *dish.AvailableHours)

	dto := toDishDTO(*dish)
	require.NotNil(t, dto.AvailableHours)
	require.Equal(t, "11:00-16:00", *dto.AvailableHours)
}

func TestRepositoryListFiltersUnavailable(t *testing.T) {
	client := newTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	mustCreateDish(t, client, models.Dish{ID: "fries", Name: "Картопля фрі", Price: 60, Category: enums.CategorySides})
	hidden := models.Dish{ID: "old-dish", Name: "Знято з меню", Price: 10, Category: enums.CategorySides}
	require.NoError(t, client.DB().Create(&hidden).Error)
	require.NoError(t, client.DB().Model(&models.Dish{}).Where("id = ?", "old-dish").Update("available", false).Error)

	dishes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	require.Equal(t, "fries", dishes[0].ID)
}

func TestRepositoryListByCategory(t *testing.T) {
	client := newTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	mustCreateDish(t, client, models.Dish{ID: "cola", Name: "Кола", Price: 25, Category: enums.CategoryDrinks})
	mustCreateDish(t, client, models.Dish{ID: "water", Name: "Вода", Price: 20, Category: enums.CategoryDrinks})
	mustCreateDish(t, client, models.Dish{ID: "fries", Name: "Картопля фрі", Price: 60, Category: enums.CategorySides})

	drinks, err := repo.ListByCategory(ctx, enums.CategoryDrinks)
	require.NoError(t, err)
	require.Len(t, drinks, 2)
	for _, dish := range drinks {
		require.Equal(t, enums.CategoryDrinks, dish.Category)
	}
}

func TestRepositoryListPopularOrdersByRating(t *testing.T) {
	client := newTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	mustCreateDish(t, client, models.Dish{ID: "a", Name: "A", Price: 100, Popular: true, Rating: floatPtr(4.5)})
	mustCreateDish(t, client, models.Dish{ID: "b", Name: "B", Price: 100, Popular: true, Rating: floatPtr(4.9)})
	mustCreateDish(t, client, models.Dish{ID: "c", Name: "C", Price: 100, Popular: false, Rating: floatPtr(5.0)})

	popular, err := repo.ListPopular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	require.Equal(t, "b", popular[0].ID)
}
