package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox/payloads"
	"github.com/Max3uc3Planz/lcdt-back/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Password config.PasswordConfig
}

// Service exposes signup and account management.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	GetByID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateInput) (*models.User, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	List(ctx context.Context, actor auth.Actor) ([]models.User, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	password config.PasswordConfig
}

// NewService builds the users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher is required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		password: params.Password,
	}, nil
}

// Register creates the account, its main telephone and, when a sponsor
// code is redeemed, a sponsorship discount for both sides.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
		}

		var sponsor *models.User
		if input.SponsorCode != nil {
			code := strings.TrimSpace(*input.SponsorCode)
			sponsor, err = repo.FindBySponsorshipCode(ctx, code)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "sponsor code is invalid")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up sponsor")
			}
		}

		ownCode, err := sponsorshipCode(input.FirstName, input.LastName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating sponsorship code")
		}

		user := &models.User{
			Email:           &email,
			PasswordHash:    hash,
			FirstName:       strings.TrimSpace(input.FirstName),
			LastName:        strings.TrimSpace(input.LastName),
			Role:            enums.RoleUser,
			SponsorshipCode: &ownCode,
		}
		if sponsor != nil {
			user.SponsorCode = sponsor.SponsorshipCode
		}
		if err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
		}

		telephone := &models.Telephone{
			UserID: user.ID,
			Phone:  strings.TrimSpace(input.Phone),
			IsMain: true,
		}
		if err := repo.CreateTelephone(ctx, telephone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating telephone")
		}

		if sponsor != nil {
			// Both sides earn a one-shot discount: the newcomer's is keyed
			// by the code they typed, the sponsor's by the newcomer's own
			// code.
			rows := []models.SponsorshipDiscount{
				{Code: *user.SponsorCode, UserID: user.ID},
				{Code: *user.SponsorshipCode, UserID: sponsor.ID},
			}
			if err := repo.CreateSponsorshipDiscounts(ctx, rows); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating sponsorship discounts")
			}
		}

		event := payloads.UserRegisteredEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Sponsored: sponsor != nil,
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data:          event,
		}); err != nil {
			return err
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.User, error) {
	if !actor.CanActFor(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return s.findActive(ctx, id)
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateInput) (*models.User, error) {
	if !actor.CanActFor(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}

	user, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		user.Email = &email
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user")
	}
	return user, nil
}

// Delete soft-deletes the account so order history keeps its references.
func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.CanActFor(id) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if _, err := s.findActive(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting user")
	}
	return nil
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}
	return users, nil
}

func (s *service) findActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user.Deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// sponsorshipCode builds a referral code from the user's initials plus a
// random suffix, e.g. "JDUP3f9a81c2".
func sponsorshipCode(firstName, lastName string) (string, error) {
	initials := strings.ToUpper(firstPart(firstName, 1) + firstPart(lastName, 3))

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s", initials, hex.EncodeToString(suffix)), nil
}

func firstPart(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
