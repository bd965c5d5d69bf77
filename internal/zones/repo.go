package zones

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
)

// Repository encapsulates delivery zone persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a zone repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListAll returns every zone ordered by creation time. The zone count is
// small (a handful of polygons), so the lookup scans them all in memory.
func (r *Repository) ListAll(ctx context.Context) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// FindByID returns a single zone.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryZone, error) {
	var zone models.DeliveryZone
	if err := r.db.WithContext(ctx).First(&zone, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

// Create inserts a zone.
func (r *Repository) Create(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error) {
	if err := r.db.WithContext(ctx).Create(zone).Error; err != nil {
		return nil, err
	}
	return zone, nil
}

// Update persists zone edits.
func (r *Repository) Update(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error) {
	if err := r.db.WithContext(ctx).Save(zone).Error; err != nil {
		return nil, err
	}
	return zone, nil
}

// Delete removes a zone.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DeliveryZone{}, "id = ?", id).Error
}
