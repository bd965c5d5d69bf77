package telephones

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input carries the writable fields of a telephone.
type Input struct {
	Phone  string
	IsMain bool
}

// Service manages the customer's contact numbers. The main flag follows
// the same single-main rule as addresses.
type Service interface {
	List(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.Telephone, error)
	Create(ctx context.Context, actor auth.Actor, userID uuid.UUID, input Input) (*models.Telephone, error)
	Update(ctx context.Context, actor auth.Actor, userID, telephoneID uuid.UUID, input Input) (*models.Telephone, error)
	Delete(ctx context.Context, actor auth.Actor, userID, telephoneID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the telephone service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telephone repo is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.Telephone, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing telephones")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, userID uuid.UUID, input Input) (*models.Telephone, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	telephone := &models.Telephone{
		UserID: userID,
		Phone:  phone,
		IsMain: input.IsMain,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing telephones")
		}
		if len(existing) == 0 {
			telephone.IsMain = true
		} else if telephone.IsMain {
			if err := repo.ClearMain(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing main telephone")
			}
		}
		if err := repo.Create(ctx, telephone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating telephone")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return telephone, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, userID, telephoneID uuid.UUID, input Input) (*models.Telephone, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	var updated *models.Telephone
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		telephone, err := repo.FindOwned(ctx, telephoneID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "telephone not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading telephone")
		}

		if input.IsMain && !telephone.IsMain {
			if err := repo.ClearMain(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing main telephone")
			}
		}

		telephone.Phone = phone
		if input.IsMain {
			telephone.IsMain = true
		}
		if err := repo.Update(ctx, telephone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating telephone")
		}
		updated = telephone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the telephone and promotes the oldest remaining one when
// the deleted row was main.
func (s *service) Delete(ctx context.Context, actor auth.Actor, userID, telephoneID uuid.UUID) error {
	if !actor.CanActFor(userID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		telephone, err := repo.FindOwned(ctx, telephoneID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "telephone not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading telephone")
		}
		if err := repo.Delete(ctx, telephoneID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting telephone")
		}
		if telephone.IsMain {
			if err := repo.PromoteOldest(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promoting telephone")
			}
		}
		return nil
	})
}
