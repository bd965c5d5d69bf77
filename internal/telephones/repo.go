package telephones

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
)

// Repository is the persistence surface for contact numbers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Telephone, error)
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Telephone, error)
	Create(ctx context.Context, telephone *models.Telephone) error
	Update(ctx context.Context, telephone *models.Telephone) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearMain(ctx context.Context, userID uuid.UUID) error
	PromoteOldest(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed telephone repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Telephone, error) {
	var rows []models.Telephone
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Telephone, error) {
	var row models.Telephone
	if err := r.db.WithContext(ctx).First(&row, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, telephone *models.Telephone) error {
	return r.db.WithContext(ctx).Create(telephone).Error
}

func (r *repository) Update(ctx context.Context, telephone *models.Telephone) error {
	return r.db.WithContext(ctx).Save(telephone).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Telephone{}, "id = ?", id).Error
}

func (r *repository) ClearMain(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Telephone{}).
		Where("user_id = ? AND is_main = TRUE", userID).
		UpdateColumn("is_main", false).Error
}

func (r *repository) PromoteOldest(ctx context.Context, userID uuid.UUID) error {
	sub := r.db.
		Model(&models.Telephone{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(1)
	return r.db.WithContext(ctx).
		Model(&models.Telephone{}).
		Where("id = (?)", sub).
		UpdateColumn("is_main", true).Error
}
