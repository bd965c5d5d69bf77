package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
)

// Repository encapsulates persistence for the settings singleton.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a settings repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Get loads the settings row. The table holds exactly one row, seeded by
// migration.
func (r *Repository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateVersioned persists new values for the row identified by id, but only
// if the stored version still matches. Returns gorm.ErrRecordNotFound
// semantics via rows-affected inspection at the caller.
func (r *Repository) UpdateVersioned(ctx context.Context, setting *models.Setting, expectedVersion int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Setting{}).
		Where("id = ? AND version = ?", setting.ID, expectedVersion).
		Updates(map[string]any{
			"minimum_order_amount":   setting.MinimumOrderAmount,
			"sponsorship_enabled":    setting.SponsorshipEnabled,
			"sponsorship_amount":     setting.SponsorshipAmount,
			"sponsorship_amount_tax": setting.SponsorshipAmountTax,
			"version":                expectedVersion + 1,
		})
	return res.RowsAffected, res.Error
}
