package timeslot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// Repository defines persistence for delivery types and their weekly slots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// FindCandidates returns the slots that could serve an order placed at
	// now: an express window open right now, an early window still
	// reachable today after the one hour preparation lead, or any early
	// window tomorrow.
	FindCandidates(ctx context.Context, now, earliest, tomorrow time.Time) ([]models.TimeSlot, error)
	FindDeliveryTypeByKind(ctx context.Context, kind enums.DeliveryKind) (*models.DeliveryType, error)
	ListDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error)
	CreateSlot(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a timeslot repository bound to the provided
// gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindCandidates(ctx context.Context, now, earliest, tomorrow time.Time) ([]models.TimeSlot, error) {
	nowHHMM := clock.HHMM(now)
	earliestHHMM := clock.HHMM(earliest)

	var slots []models.TimeSlot
	err := r.db.WithContext(ctx).
		Joins("JOIN delivery_types dt ON dt.id = time_slots.delivery_type_id").
		Where(
			r.db.Where("time_slots.week_day = ? AND time_slots.time_min <= ? AND time_slots.time_max >= ? AND dt.kind = ?",
				int(now.Weekday()), nowHHMM, nowHHMM, enums.DeliveryKindExpress).
				Or("time_slots.week_day = ? AND time_slots.time_max >= ? AND dt.kind = ?",
					int(earliest.Weekday()), earliestHHMM, enums.DeliveryKindEarly).
				Or("time_slots.week_day = ? AND dt.kind = ?",
					int(tomorrow.Weekday()), enums.DeliveryKindEarly),
		).
		Preload("DeliveryType").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *repository) FindDeliveryTypeByKind(ctx context.Context, kind enums.DeliveryKind) (*models.DeliveryType, error) {
	var dt models.DeliveryType
	if err := r.db.WithContext(ctx).First(&dt, "kind = ?", kind).Error; err != nil {
		return nil, err
	}
	return &dt, nil
}

func (r *repository) ListDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error) {
	var types []models.DeliveryType
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("week_day ASC, time_min ASC")
		}).
		Order("kind ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repository) CreateSlot(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error) {
	if err := r.db.WithContext(ctx).Create(slot).Error; err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *repository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TimeSlot{}, "id = ?", id).Error
}
