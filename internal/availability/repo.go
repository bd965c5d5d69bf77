package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
)

// Repository defines the stock lookups behind availability checks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SellableWithinWindow(ctx context.Context, id uuid.UUID, quantity int, from, to time.Time) (bool, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an availability repository bound to the provided
// gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// FindProductForUpdate loads a product with a row lock so the stock
// decrement later in the same transaction cannot race a concurrent
// checkout.
func (r *repository) FindProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SellableWithinWindow reports whether the product has enough current stock
// for the quantity and an active cooking day inside [from, to].
func (r *repository) SellableWithinWindow(ctx context.Context, id uuid.UUID, quantity int, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN day_stocks ds ON ds.product_id = products.id").
		Where("products.id = ?", id).
		Where("products.current_stock > 0 AND products.current_stock >= ?", quantity).
		Where("ds.active = ?", true).
		Where("ds.date BETWEEN ? AND ?", from, to).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DecrementStock subtracts the purchased quantity from the product's
// current stock.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("current_stock", gorm.Expr("current_stock - ?", quantity)).
		Error
}
