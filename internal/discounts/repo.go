package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// Repository defines persistence for promotional codes and sponsorship
// discounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPromoByCode(ctx context.Context, code string) (*models.PromotionalCode, error)
	// CountPromoUses counts non-canceled orders referencing the code,
	// optionally scoped to one user for per-user codes.
	CountPromoUses(ctx context.Context, promoID uuid.UUID, userID *uuid.UUID) (int64, error)
	UserHasOrders(ctx context.Context, userID uuid.UUID) (bool, error)
	FindUnconsumedSponsorship(ctx context.Context, code string, userID uuid.UUID) (*models.SponsorshipDiscount, error)
	MarkSponsorshipConsumed(ctx context.Context, id uuid.UUID) error
	CreatePromo(ctx context.Context, promo *models.PromotionalCode) (*models.PromotionalCode, error)
	ListPromos(ctx context.Context) ([]models.PromotionalCode, error)
	DeletePromo(ctx context.Context, id uuid.UUID) error
	CreateSponsorshipPair(ctx context.Context, rows []models.SponsorshipDiscount) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a discounts repository bound to the provided
// gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindPromoByCode(ctx context.Context, code string) (*models.PromotionalCode, error) {
	var promo models.PromotionalCode
	if err := r.db.WithContext(ctx).First(&promo, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) CountPromoUses(ctx context.Context, promoID uuid.UUID, userID *uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("promotional_code_id = ?", promoID).
		Where("status <> ?", enums.OrderStatusCanceled)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) UserHasOrders(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindUnconsumedSponsorship(ctx context.Context, code string, userID uuid.UUID) (*models.SponsorshipDiscount, error) {
	var discount models.SponsorshipDiscount
	err := r.db.WithContext(ctx).
		First(&discount, "code = ? AND user_id = ? AND consumed = ?", code, userID, false).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) MarkSponsorshipConsumed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SponsorshipDiscount{}).
		Where("id = ?", id).
		Update("consumed", true).
		Error
}

func (r *repository) CreatePromo(ctx context.Context, promo *models.PromotionalCode) (*models.PromotionalCode, error) {
	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

func (r *repository) ListPromos(ctx context.Context) ([]models.PromotionalCode, error) {
	var promos []models.PromotionalCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *repository) DeletePromo(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PromotionalCode{}, "id = ?", id).Error
}

func (r *repository) CreateSponsorshipPair(ctx context.Context, rows []models.SponsorshipDiscount) error {
	return r.db.WithContext(ctx).Create(&rows).Error
}
