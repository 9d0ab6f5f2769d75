package telemetry

import (
	"context"

	"github.com/arkfood/ordering-backend/internal/cart"
	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/arkfood/ordering-backend/pkg/logger"
)

type addToCartPayload struct {
	DishID    string `json:"dish_id"`
	DishName  string `json:"dish_name"`
	Price     int    `json:"price"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	CartTotal int    `json:"cart_total"`
}

type removeFromCartPayload struct {
	DishID   string `json:"dish_id"`
	DishName string `json:"dish_name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type quantityChangedPayload struct {
	DishID          string `json:"dish_id"`
	OldQuantity     int    `json:"old_quantity"`
	NewQuantity     int    `json:"new_quantity"`
	PriceDifference int    `json:"price_difference"`
}

type cartClearedPayload struct {
	ItemsCount int `json:"items_count"`
}

type cartOpenedPayload struct {
	ItemsCount int `json:"items_count"`
	CartValue  int `json:"cart_value"`
}

type checkoutStartedPayload struct {
	ItemsCount  int `json:"items_count"`
	TotalAmount int `json:"total_amount"`
	DeliveryFee int `json:"delivery_fee"`
}

// CartListener bridges cart events onto a tracker. Subscribe the returned
// listener on a cart emitter; it never calls back into the store.
func CartListener(tracker Tracker, logg *logger.Logger) cart.Listener {
	return func(ctx context.Context, event cart.Event) {
		eventType, payload, ok := translate(event)
		if !ok {
			return
		}

		env, err := NewEnvelope(eventType, event.SessionID, event.At, payload)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "building telemetry envelope failed", err)
			}
			return
		}
		tracker.Track(ctx, env)
	}
}

func translate(event cart.Event) (enums.TelemetryEvent, any, bool) {
	switch event.Type {
	case cart.EventItemAdded:
		return enums.EventAddToCart, addToCartPayload{
			DishID:    event.Item.DishID,
			DishName:  event.Item.Name,
			Price:     event.Item.Price,
			Size:      event.Item.Size,
			Quantity:  event.NewQuantity,
			CartTotal: event.Subtotal,
		}, true
	case cart.EventItemRemoved:
		return enums.EventRemoveFromCart, removeFromCartPayload{
			DishID:   event.Item.DishID,
			DishName: event.Item.Name,
			Price:    event.Item.Price,
			Quantity: event.OldQuantity,
		}, true
	case cart.EventQuantityChanged:
		return enums.EventCartQuantityChanged, quantityChangedPayload{
			DishID:          event.Item.DishID,
			OldQuantity:     event.OldQuantity,
			NewQuantity:     event.NewQuantity,
			PriceDifference: (event.NewQuantity - event.OldQuantity) * event.Item.Price,
		}, true
	case cart.EventCartCleared:
		return enums.EventCartCleared, cartClearedPayload{
			ItemsCount: event.ItemCount,
		}, true
	case cart.EventOpenRequested:
		return enums.EventCartOpened, cartOpenedPayload{
			ItemsCount: event.ItemCount,
			CartValue:  event.Subtotal,
		}, true
	case cart.EventCheckoutStarted:
		return enums.EventCheckoutStarted, checkoutStartedPayload{
			ItemsCount:  event.ItemCount,
			TotalAmount: event.Total,
			DeliveryFee: event.DeliveryFee,
		}, true
	default:
		// Reload events are sync plumbing, not analytics.
		return "", nil, false
	}
}
