package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Setting is the single row of global platform knobs read at checkout.
// Version increments on every update so concurrent admin edits are
// detectable.
type Setting struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MinimumOrderAmount   decimal.Decimal `gorm:"column:minimum_order_amount;type:numeric(10,2);not null;default:0"`
	SponsorshipEnabled   bool            `gorm:"column:sponsorship_enabled;not null;default:true"`
	SponsorshipAmount    decimal.Decimal `gorm:"column:sponsorship_amount;type:numeric(10,2);not null;default:0"`
	SponsorshipAmountTax decimal.Decimal `gorm:"column:sponsorship_amount_tax;type:numeric(10,2);not null;default:0"`
	Version              int             `gorm:"column:version;not null;default:1"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
