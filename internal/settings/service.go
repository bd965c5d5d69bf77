package settings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

// UpdateInput carries the editable platform knobs plus the version the
// admin read, so concurrent edits are rejected instead of silently merged.
type UpdateInput struct {
	MinimumOrderAmount   decimal.Decimal
	SponsorshipEnabled   bool
	SponsorshipAmount    decimal.Decimal
	SponsorshipAmountTax decimal.Decimal
	Version              int
}

// Service exposes reads and admin updates of the global settings row.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Snapshot(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, input UpdateInput) (*models.Setting, error)
}

type repository interface {
	Get(ctx context.Context) (*models.Setting, error)
	UpdateVersioned(ctx context.Context, setting *models.Setting, expectedVersion int) (int64, error)
}

type service struct {
	repo     repository
	cacheTTL time.Duration

	mu       sync.Mutex
	cached   *models.Setting
	cachedAt time.Time
}

// NewService builds the settings service. A zero cacheTTL disables the
// snapshot cache.
func NewService(repo repository, cacheTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings repo is required")
	}
	return &service{repo: repo, cacheTTL: cacheTTL}, nil
}

// Get always reads the settings row from the database.
func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "settings row missing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}
	return setting, nil
}

// Snapshot returns a possibly cached copy of the settings. Checkout calls
// this on every order; a short TTL keeps the hot path off the database
// without letting admin edits lag noticeably.
func (s *service) Snapshot(ctx context.Context) (*models.Setting, error) {
	if s.cacheTTL <= 0 {
		return s.Get(ctx)
	}

	s.mu.Lock()
	if s.cached != nil && time.Since(s.cachedAt) < s.cacheTTL {
		cached := *s.cached
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	copied := *setting
	s.cached = &copied
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return setting, nil
}

// Update applies admin edits with optimistic concurrency on Version.
func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Setting, error) {
	if input.MinimumOrderAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order amount cannot be negative")
	}
	if input.SponsorshipAmount.IsNegative() || input.SponsorshipAmountTax.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sponsorship amounts cannot be negative")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	current.MinimumOrderAmount = input.MinimumOrderAmount
	current.SponsorshipEnabled = input.SponsorshipEnabled
	current.SponsorshipAmount = input.SponsorshipAmount
	current.SponsorshipAmountTax = input.SponsorshipAmountTax

	affected, err := s.repo.UpdateVersioned(ctx, current, input.Version)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating settings")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "settings were modified by another admin")
	}

	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	return s.Get(ctx)
}
