package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// PromotionalCode is an admin-issued discount. Exactly one of Amount or
// AmountPercentage is set. Usage is counted live from non-canceled orders
// referencing the code; there is no consumed flag.
type PromotionalCode struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string              `gorm:"column:code;not null;uniqueIndex"`
	Amount           *decimal.Decimal    `gorm:"column:amount;type:numeric(10,2)"`
	AmountTax        *decimal.Decimal    `gorm:"column:amount_tax;type:numeric(10,2)"`
	AmountPercentage *decimal.Decimal    `gorm:"column:amount_percentage;type:numeric(5,2)"`
	UsageLimit       *int                `gorm:"column:usage_limit"`
	ExpirationDate   *time.Time          `gorm:"column:expiration_date"`
	FirstOrderOnly   bool                `gorm:"column:first_order_only;not null;default:false"`
	Type             enums.PromoCodeType `gorm:"column:type;not null"`
	Orders           []Order             `gorm:"foreignKey:PromotionalCodeID"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// SponsorshipDiscount is a one-shot discount grant created when a new user
// signs up with a sponsor's referral code. Two rows are written per
// sponsorship: one for the sponsor, one for the sponsee.
type SponsorshipDiscount struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex:idx_sponsorship_code_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_sponsorship_code_user"`
	Consumed  bool      `gorm:"column:consumed;not null;default:false"`
	User      *User     `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
