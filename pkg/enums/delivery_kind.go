package enums

import "fmt"

// DeliveryKind distinguishes immediate deliveries from scheduled ones.
type DeliveryKind string

const (
	// DeliveryKindExpress is delivered in the currently open slot.
	DeliveryKindExpress DeliveryKind = "express"
	// DeliveryKindEarly is booked for a future weekday and window.
	DeliveryKindEarly DeliveryKind = "early"
)

var validDeliveryKinds = []DeliveryKind{
	DeliveryKindExpress,
	DeliveryKindEarly,
}

// String implements fmt.Stringer.
func (d DeliveryKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryKind.
func (d DeliveryKind) IsValid() bool {
	for _, candidate := range validDeliveryKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryKind converts raw input into a DeliveryKind.
func ParseDeliveryKind(value string) (DeliveryKind, error) {
	for _, candidate := range validDeliveryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery kind %q", value)
}
