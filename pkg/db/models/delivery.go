package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	"github.com/Max3uc3Planz/lcdt-back/pkg/types"
)

// DeliveryZone is a served area. Orders may only ship to addresses whose
// coordinates fall inside at least one zone polygon.
type DeliveryZone struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Polygon           types.Polygon   `gorm:"column:polygon;type:jsonb;not null"`
	AdditionalCost    decimal.Decimal `gorm:"column:additional_cost;type:numeric(10,2);not null;default:0"`
	AdditionalCostTax decimal.Decimal `gorm:"column:additional_cost_tax;type:numeric(10,2);not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryType carries the surcharge for each delivery kind.
type DeliveryType struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind              enums.DeliveryKind `gorm:"column:kind;not null;uniqueIndex"`
	Label             string             `gorm:"column:label;not null"`
	AdditionalCost    decimal.Decimal    `gorm:"column:additional_cost;type:numeric(10,2);not null;default:0"`
	AdditionalCostTax decimal.Decimal    `gorm:"column:additional_cost_tax;type:numeric(10,2);not null;default:0"`
	Slots             []TimeSlot         `gorm:"foreignKey:DeliveryTypeID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TimeSlot is a weekly recurring delivery window. TimeMin and TimeMax are
// HHMM integers (930 = 09:30).
type TimeSlot struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WeekDay        int           `gorm:"column:week_day;not null"`
	TimeMin        int           `gorm:"column:time_min;not null"`
	TimeMax        int           `gorm:"column:time_max;not null"`
	DeliveryTypeID uuid.UUID     `gorm:"column:delivery_type_id;type:uuid;not null"`
	DeliveryType   *DeliveryType `gorm:"foreignKey:DeliveryTypeID"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
