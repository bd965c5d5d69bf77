package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products on the menu.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Tag is a free-form label attached to products (vegetarian, spicy, ...).
type Tag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Product is a dish on the menu. CurrentStock is the portion count still
// sellable today; it is decremented inside the checkout transaction.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title            string          `gorm:"column:title;not null"`
	Description      *string         `gorm:"column:description"`
	ShortDescription *string         `gorm:"column:short_description"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	PriceTax         decimal.Decimal `gorm:"column:price_tax;type:numeric(10,2);not null"`
	PictureURL       *string         `gorm:"column:picture_url"`
	Ingredients      *string         `gorm:"column:ingredients"`
	Preparation      *string         `gorm:"column:preparation"`
	PersonsNb        int             `gorm:"column:persons_nb;not null;default:1"`
	CurrentStock     int             `gorm:"column:current_stock;not null;default:0"`
	CategoryID       *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Category         *Category       `gorm:"foreignKey:CategoryID"`
	Tags             []Tag           `gorm:"many2many:product_tags"`
	Stocks           []DayStock      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DayStock marks a product as cookable on a given day. A product is only
// orderable when an active DayStock exists within the lookahead window.
type DayStock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_day_stock_product_date"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_day_stock_product_date"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	Active    bool      `gorm:"column:active;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
