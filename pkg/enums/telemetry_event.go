package enums

import "fmt"

// TelemetryEvent names an analytics event recorded by the telemetry pipeline.
type TelemetryEvent string

const (
	EventAddToCart           TelemetryEvent = "add_to_cart"
	EventRemoveFromCart      TelemetryEvent = "remove_from_cart"
	EventCartQuantityChanged TelemetryEvent = "cart_quantity_changed"
	EventCartCleared         TelemetryEvent = "cart_cleared"
	EventCartOpened          TelemetryEvent = "cart_opened"
	EventCheckoutStarted     TelemetryEvent = "checkout_started"
)

var validTelemetryEvents = []TelemetryEvent{
	EventAddToCart,
	EventRemoveFromCart,
	EventCartQuantityChanged,
	EventCartCleared,
	EventCartOpened,
	EventCheckoutStarted,
}

// String implements fmt.Stringer.
func (t TelemetryEvent) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TelemetryEvent.
func (t TelemetryEvent) IsValid() bool {
	for _, candidate := range validTelemetryEvents {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTelemetryEvent converts raw input into a TelemetryEvent.
func ParseTelemetryEvent(value string) (TelemetryEvent, error) {
	for _, candidate := range validTelemetryEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid telemetry event %q", value)
}
