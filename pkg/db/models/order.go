package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// Order is the checkout result. Totals are finalized inside the creation
// transaction; only Status mutates afterwards.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date            time.Time         `gorm:"column:date;not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	TotalTax        decimal.Decimal   `gorm:"column:total_tax;type:numeric(10,2);not null"`
	Discount        decimal.Decimal   `gorm:"column:discount;type:numeric(10,2);not null;default:0"`
	DiscountTax     decimal.Decimal   `gorm:"column:discount_tax;type:numeric(10,2);not null;default:0"`
	DeliveryCost    decimal.Decimal   `gorm:"column:delivery_cost;type:numeric(10,2);not null;default:0"`
	DeliveryCostTax decimal.Decimal   `gorm:"column:delivery_cost_tax;type:numeric(10,2);not null;default:0"`
	PaymentMethod   string            `gorm:"column:payment_method;not null"`
	TslotMin        time.Time         `gorm:"column:tslot_min;not null"`
	TslotMax        time.Time         `gorm:"column:tslot_max;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:pending;index"`
	InvoiceURL      *string           `gorm:"column:invoice_url"`

	UserID                uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID             uuid.UUID  `gorm:"column:address_id;type:uuid;not null"`
	TelephoneID           uuid.UUID  `gorm:"column:telephone_id;type:uuid;not null"`
	DeliveryTypeID        uuid.UUID  `gorm:"column:delivery_type_id;type:uuid;not null"`
	PromotionalCodeID     *uuid.UUID `gorm:"column:promotional_code_id;type:uuid"`
	SponsorshipDiscountID *uuid.UUID `gorm:"column:sponsorship_discount_id;type:uuid"`

	User                *User                `gorm:"foreignKey:UserID"`
	Address             *Address             `gorm:"foreignKey:AddressID"`
	Telephone           *Telephone           `gorm:"foreignKey:TelephoneID"`
	DeliveryType        *DeliveryType        `gorm:"foreignKey:DeliveryTypeID"`
	PromotionalCode     *PromotionalCode     `gorm:"foreignKey:PromotionalCodeID"`
	SponsorshipDiscount *SponsorshipDiscount `gorm:"foreignKey:SponsorshipDiscountID"`
	Items               []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots a product line at purchase time so later menu edits
// do not rewrite history.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name             string          `gorm:"column:name;not null"`
	ShortDescription *string         `gorm:"column:short_description"`
	PictureURL       *string         `gorm:"column:picture_url"`
	Quantity         int             `gorm:"column:quantity;not null"`
	Total            decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null"`
	TotalTax         decimal.Decimal `gorm:"column:total_tax;type:numeric(10,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
