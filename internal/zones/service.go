package zones

import (
	"context"

	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

// Service answers point-in-zone questions and manages the zone catalog.
type Service interface {
	// ZoneForPoint returns the first zone containing the point, in zone
	// creation order, or a not-found error when no zone covers it.
	ZoneForPoint(ctx context.Context, lat, lng float64) (*models.DeliveryZone, error)
	// Covered reports whether any zone contains the point.
	Covered(ctx context.Context, lat, lng float64) (bool, error)
	List(ctx context.Context) ([]models.DeliveryZone, error)
	Create(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error)
	Update(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	ListAll(ctx context.Context) ([]models.DeliveryZone, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryZone, error)
	Create(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error)
	Update(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

// NewService builds the zone service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ZoneForPoint(ctx context.Context, lat, lng float64) (*models.DeliveryZone, error) {
	zones, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing delivery zones")
	}
	// Overlapping polygons resolve to the oldest zone so surcharge pricing
	// stays deterministic.
	for i := range zones {
		if zones[i].Polygon.Contains(lat, lng) {
			return &zones[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address is outside the delivery area")
}

func (s *service) Covered(ctx context.Context, lat, lng float64) (bool, error) {
	_, err := s.ZoneForPoint(ctx, lat, lng)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) List(ctx context.Context) ([]models.DeliveryZone, error) {
	zones, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing delivery zones")
	}
	return zones, nil
}

func (s *service) Create(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error) {
	if err := validateZone(zone); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, zone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating delivery zone")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error) {
	if zone.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone id is required")
	}
	if err := validateZone(zone); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, zone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating delivery zone")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting delivery zone")
	}
	return nil
}

func validateZone(zone *models.DeliveryZone) error {
	if zone == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone is required")
	}
	if zone.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone name is required")
	}
	if len(zone.Polygon) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone polygon needs at least 3 vertices")
	}
	if zone.AdditionalCost.IsNegative() || zone.AdditionalCostTax.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone surcharge cannot be negative")
	}
	return nil
}
