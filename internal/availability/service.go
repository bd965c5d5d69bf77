package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

// Service answers whether a product can be sold right now.
type Service interface {
	// Check validates that the product exists and can fulfil the quantity.
	// It returns the locked product row so the caller can snapshot prices
	// and decrement stock inside the same transaction.
	Check(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error)
	// Reserve runs Check and then decrements the product's current stock.
	// It must run inside the checkout transaction.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error)
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo          Repository
	clk           clock.Clock
	lookaheadDays int
}

// NewService builds the availability service. lookaheadDays bounds how far
// ahead an active cooking day may be for the product to count as sellable.
func NewService(repo Repository, clk clock.Clock, lookaheadDays int) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "availability repo is required")
	}
	if clk == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clock is required")
	}
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}
	return &service{repo: repo, clk: clk, lookaheadDays: lookaheadDays}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), clk: s.clk, lookaheadDays: s.lookaheadDays}
}

func (s *service) Check(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.repo.FindProductForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	now := s.clk.Now()
	from := truncateToDay(now)
	to := from.AddDate(0, 0, s.lookaheadDays)

	sellable, err := s.repo.SellableWithinWindow(ctx, productID, quantity, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking product stock")
	}
	if !sellable {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is no longer available")
	}
	return product, nil
}

func (s *service) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	product, err := s.Check(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DecrementStock(ctx, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving product stock")
	}
	product.CurrentStock -= quantity
	return product, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
