package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/pagination"
)

// ProductInput carries the writable fields of a dish.
type ProductInput struct {
	Title            string
	Description      *string
	ShortDescription *string
	Price            decimal.Decimal
	PriceTax         decimal.Decimal
	PictureURL       *string
	Ingredients      *string
	Preparation      *string
	PersonsNb        int
	CategoryID       *uuid.UUID
	TagIDs           []uuid.UUID
}

// ListInput combines browse filters with cursor pagination.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ProductPage is one page of the menu plus the cursor to the next one.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name     string
	Position int
}

// DayStockInput plans the portions cookable for a product on a date.
type DayStockInput struct {
	ProductID uuid.UUID
	Date      string // YYYY-MM-DD
	Stock     int
	Active    bool
}
