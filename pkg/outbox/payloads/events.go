package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// OrderCreatedEvent signals a freshly committed checkout. It carries enough
// of the order snapshot for the kitchen display and the invoice worker to
// act without re-querying.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID          `json:"order_id"`
	UserID        uuid.UUID          `json:"user_id"`
	Status        enums.OrderStatus  `json:"status"`
	Total         decimal.Decimal    `json:"total"`
	TotalTax      decimal.Decimal    `json:"total_tax"`
	DeliveryKind  enums.DeliveryKind `json:"delivery_kind"`
	TslotMin      time.Time          `json:"tslot_min"`
	TslotMax      time.Time          `json:"tslot_max"`
	ItemCount     int                `json:"item_count"`
	CustomerEmail *string            `json:"customer_email,omitempty"`
	CustomerName  string             `json:"customer_name"`
}

// OrderStatusChangedEvent is emitted on every legal fulfillment transition.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	UserID    uuid.UUID         `json:"user_id"`
	OldStatus enums.OrderStatus `json:"old_status"`
	NewStatus enums.OrderStatus `json:"new_status"`
	ChangedAt time.Time         `json:"changed_at"`
}

// UserRegisteredEvent is emitted after signup commits, including whether a
// sponsor code was redeemed.
type UserRegisteredEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     *string   `json:"email,omitempty"`
	Sponsored bool      `json:"sponsored"`
}
