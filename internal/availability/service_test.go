package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

type stubAvailabilityRepo struct {
	product      *models.Product
	sellable     bool
	windowFrom   time.Time
	windowTo     time.Time
	askedQty     int
	decremented  int
	decrementErr error
}

func (s *stubAvailabilityRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubAvailabilityRepo) FindProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubAvailabilityRepo) SellableWithinWindow(ctx context.Context, id uuid.UUID, quantity int, from, to time.Time) (bool, error) {
	s.askedQty = quantity
	s.windowFrom = from
	s.windowTo = to
	return s.sellable, nil
}

func (s *stubAvailabilityRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if s.decrementErr != nil {
		return s.decrementErr
	}
	s.decremented += quantity
	return nil
}

func TestCheckReturnsProductWhenSellable(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Title: "Boeuf bourguignon", CurrentStock: 10}
	repo := &stubAvailabilityRepo{product: product, sellable: true}
	now := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)

	svc, err := NewService(repo, clock.Fixed{T: now}, 7)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	got, err := svc.Check(context.Background(), product.ID, 2)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if got.ID != product.ID {
		t.Fatal("unexpected product returned")
	}

	wantFrom := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !repo.windowFrom.Equal(wantFrom) {
		t.Fatalf("window start %v, want %v", repo.windowFrom, wantFrom)
	}
	if !repo.windowTo.Equal(wantFrom.AddDate(0, 0, 7)) {
		t.Fatalf("window end %v, want 7 days ahead", repo.windowTo)
	}
	if repo.askedQty != 2 {
		t.Fatalf("quantity %d passed to stock query, want 2", repo.askedQty)
	}
}

func TestCheckUnknownProduct(t *testing.T) {
	svc, err := NewService(&stubAvailabilityRepo{}, clock.Fixed{T: time.Now()}, 7)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Check(context.Background(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckOutOfStock(t *testing.T) {
	product := &models.Product{ID: uuid.New(), CurrentStock: 0}
	repo := &stubAvailabilityRepo{product: product, sellable: false}

	svc, err := NewService(repo, clock.Fixed{T: time.Now()}, 7)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Check(context.Background(), product.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unsellable product, got %v", err)
	}
}

func TestCheckRejectsBadInput(t *testing.T) {
	svc, err := NewService(&stubAvailabilityRepo{}, clock.Fixed{T: time.Now()}, 7)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Check(context.Background(), uuid.Nil, 1); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for nil product id")
	}
	if _, err := svc.Check(context.Background(), uuid.New(), 0); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero quantity")
	}
}
