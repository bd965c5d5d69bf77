package notifier

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
)

// Repository loads and updates orders for the notification worker.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindForInvoice loads the order with every relation the invoice and the
// confirmation email need.
func (r *Repository) FindForInvoice(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Preload("Address").
		Preload("Telephone").
		Preload("DeliveryType").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetInvoiceURL records where the generated invoice was stored.
func (r *Repository) SetInvoiceURL(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("invoice_url", path).
		Error
}
