package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// Repository defines persistence operations for checkout and order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindBare(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
	ListHistory(ctx context.Context, from, to *time.Time, limit, offset int) ([]models.Order, int64, error)
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)

	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	FindAddressOwned(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
	CreateAddress(ctx context.Context, address *models.Address) error
	FindTelephoneOwned(ctx context.Context, id, userID uuid.UUID) (*models.Telephone, error)
}
