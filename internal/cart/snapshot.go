package cart

import (
	"regexp"
	"time"

	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ValidationIssue explains why a cart cannot proceed to checkout.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	IssueCartEmpty    = "cart_empty"
	IssueBelowMinimum = "below_minimum"
	IssueClosed       = "restaurant_closed"
)

// DeliveryWindow is the estimated delivery span in minutes.
type DeliveryWindow struct {
	MinMinutes int `json:"min_minutes"`
	MaxMinutes int `json:"max_minutes"`
}

// Snapshot is a point-in-time view of the cart with every derived figure
// recomputed from the items. It is safe to hold after the cart changes.
type Snapshot struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`

	ItemCount   int `json:"item_count"`
	LineCount   int `json:"line_count"`
	Subtotal    int `json:"subtotal"`
	DeliveryFee int `json:"delivery_fee"`
	Total       int `json:"total"`

	TotalWeight          decimal.Decimal            `json:"total_weight"`
	EstimatedTimeMinutes int                        `json:"estimated_time_minutes"`
	DeliveryWindow       DeliveryWindow             `json:"delivery_window"`
	Categories           map[enums.MenuCategory]int `json:"categories,omitempty"`
	Allergens            []string                   `json:"allergens,omitempty"`
	HasAllergens         bool                       `json:"has_allergens"`

	IsValid bool              `json:"is_valid"`
	Issues  []ValidationIssue `json:"issues,omitempty"`

	TakenAt time.Time `json:"taken_at"`
}

// ExportPayload wraps a snapshot for the export endpoint.
type ExportPayload struct {
	Snapshot
	ExportedAt time.Time `json:"exportedAt"`
	Restaurant string    `json:"restaurant"`
	Version    string    `json:"version"`
}

var weightDigitsRe = regexp.MustCompile(`[^\d.]`)

// parseWeight extracts the numeric part of a display weight like "280г"
// or "330мл". Unparseable weights count as zero.
func parseWeight(value string) decimal.Decimal {
	cleaned := weightDigitsRe.ReplaceAllString(value, "")
	if cleaned == "" {
		return decimal.Zero
	}
	weight, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return weight
}

func itemCount(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func subtotal(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Price * item.Quantity
	}
	return total
}

func totalWeight(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Weight == "" {
			continue
		}
		total = total.Add(parseWeight(item.Weight).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func categoryBreakdown(items []LineItem) map[enums.MenuCategory]int {
	if len(items) == 0 {
		return nil
	}
	categories := make(map[enums.MenuCategory]int)
	for _, item := range items {
		categories[item.Category] += item.Quantity
	}
	return categories
}

func allergenUnion(items []LineItem) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		for _, allergen := range item.Allergens {
			if _, ok := seen[allergen]; ok {
				continue
			}
			seen[allergen] = struct{}{}
			out = append(out, allergen)
		}
	}
	return out
}
