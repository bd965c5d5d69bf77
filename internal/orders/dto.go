package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// ItemInput is one cart line at checkout.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// NewAddressInput creates a delivery address on the fly during checkout.
type NewAddressInput struct {
	Label    string
	Address1 string
	Address2 *string
	City     string
	Zipcode  string
	Lat      float64
	Lng      float64
	PlaceID  string
}

// SlotInput is the requested delivery window. WeekDay defaults to today.
type SlotInput struct {
	WeekDay *int
	TimeMin int
	TimeMax int
	Kind    enums.DeliveryKind
}

// CreateInput carries everything the checkout transaction needs.
type CreateInput struct {
	UserID          uuid.UUID
	Items           []ItemInput
	AddressID       *uuid.UUID
	NewAddress      *NewAddressInput
	TelephoneID     uuid.UUID
	Slot            SlotInput
	PaymentMethod   string
	PromoCode       *string
	SponsorshipCode *string
}

// HistoryFilters narrows the staff history listing.
type HistoryFilters struct {
	From *time.Time
	To   *time.Time
	Page int
}

// HistoryPage is one page of completed orders plus the total match count.
type HistoryPage struct {
	Orders []OrderSummary `json:"orders"`
	Total  int64          `json:"total"`
}

// OrderSummary is the list representation of an order, with the item
// quantity total precomputed for the dashboard.
type OrderSummary struct {
	ID            uuid.UUID         `json:"id"`
	Date          time.Time         `json:"date"`
	Status        enums.OrderStatus `json:"status"`
	Total         string            `json:"total"`
	TotalTax      string            `json:"total_tax"`
	ItemCount     int               `json:"item_count"`
	DeliveryKind  string            `json:"delivery_kind"`
	TslotMin      time.Time         `json:"tslot_min"`
	TslotMax      time.Time         `json:"tslot_max"`
	CustomerName  string            `json:"customer_name"`
	AddressCity   string            `json:"address_city"`
	PaymentMethod string            `json:"payment_method"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// LiveStatus is the courier-facing status check for an in-flight express order.
type LiveStatus struct {
	Status      enums.OrderStatus `json:"status"`
	OutForSince *time.Time        `json:"out_for_since,omitempty"`
}
