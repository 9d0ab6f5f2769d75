package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/arkfood/ordering-backend/pkg/config"
	"github.com/arkfood/ordering-backend/pkg/db"
	"github.com/arkfood/ordering-backend/pkg/db/models"
	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *db.Client {
	t.Helper()
	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Dish{}, &models.DishSize{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func mustCreateDish(t *testing.T, client *db.Client, dish models.Dish) models.Dish {
	t.Helper()
	if dish.Category == "" {
		dish.Category = enums.CategoryShawarma
	}
	dish.Available = true
	for i := range dish.Sizes {
		if dish.Sizes[i].ID == uuid.Nil {
			dish.Sizes[i].ID = uuid.New()
		}
	}
	if err := client.DB().Create(&dish).Error; err != nil {
		t.Fatalf("create dish %s: %v", dish.ID, err)
	}
	return dish
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
