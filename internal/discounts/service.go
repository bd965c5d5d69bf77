package discounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Amounts is a discount expressed both without and with tax.
type Amounts struct {
	Amount decimal.Decimal
	Tax    decimal.Decimal
}

// Service validates discount codes at checkout and manages the promo
// catalog.
type Service interface {
	// ValidatePromo checks every usage rule of the code for the given user
	// and returns the code when it may be applied.
	ValidatePromo(ctx context.Context, code string, userID uuid.UUID) (*models.PromotionalCode, error)
	// PromoAmounts computes the discount a validated code grants on the
	// given totals.
	PromoAmounts(promo *models.PromotionalCode, total, totalTax decimal.Decimal) Amounts
	// ValidateSponsorship returns the user's unconsumed sponsorship grant
	// for the code.
	ValidateSponsorship(ctx context.Context, code string, userID uuid.UUID) (*models.SponsorshipDiscount, error)
	ConsumeSponsorship(ctx context.Context, id uuid.UUID) error
	CreatePromo(ctx context.Context, promo *models.PromotionalCode) (*models.PromotionalCode, error)
	ListPromos(ctx context.Context) ([]models.PromotionalCode, error)
	DeletePromo(ctx context.Context, id uuid.UUID) error
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo Repository
	clk  clock.Clock
}

// NewService builds the discounts service. The clock decides promo expiry
// and must run in the restaurant's timezone.
func NewService(repo Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discounts repo is required")
	}
	if clk == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clock is required")
	}
	return &service{repo: repo, clk: clk}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), clk: s.clk}
}

func (s *service) ValidatePromo(ctx context.Context, code string, userID uuid.UUID) (*models.PromotionalCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	promo, err := s.repo.FindPromoByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading promo code")
	}

	if promo.UsageLimit != nil {
		var scope *uuid.UUID
		if promo.Type == enums.PromoCodeTypePerUser {
			scope = &userID
		}
		uses, err := s.repo.CountPromoUses(ctx, promo.ID, scope)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting promo uses")
		}
		if uses >= int64(*promo.UsageLimit) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "promo code usage limit reached")
		}
	}

	if promo.ExpirationDate != nil && s.clk.Now().After(*promo.ExpirationDate) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "promo code has expired")
	}

	if promo.FirstOrderOnly {
		hasOrders, err := s.repo.UserHasOrders(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking order history")
		}
		if hasOrders {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "promo code is reserved for first orders")
		}
	}

	return promo, nil
}

func (s *service) PromoAmounts(promo *models.PromotionalCode, total, totalTax decimal.Decimal) Amounts {
	if promo == nil {
		return Amounts{}
	}
	if promo.AmountPercentage != nil {
		pct := *promo.AmountPercentage
		return Amounts{
			Amount: total.Mul(pct).Div(hundred).Round(2),
			Tax:    totalTax.Mul(pct).Div(hundred).Round(2),
		}
	}
	out := Amounts{}
	if promo.Amount != nil {
		out.Amount = *promo.Amount
	}
	if promo.AmountTax != nil {
		out.Tax = *promo.AmountTax
	}
	return out
}

func (s *service) ValidateSponsorship(ctx context.Context, code string, userID uuid.UUID) (*models.SponsorshipDiscount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sponsorship code is required")
	}

	discount, err := s.repo.FindUnconsumedSponsorship(ctx, code, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no sponsorship discount for this code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sponsorship discount")
	}
	return discount, nil
}

func (s *service) ConsumeSponsorship(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sponsorship id is required")
	}
	if err := s.repo.MarkSponsorshipConsumed(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consuming sponsorship discount")
	}
	return nil
}

func (s *service) CreatePromo(ctx context.Context, promo *models.PromotionalCode) (*models.PromotionalCode, error) {
	if promo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo is required")
	}
	promo.Code = strings.TrimSpace(promo.Code)
	if promo.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	if !promo.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown promo code type")
	}

	hasFixed := promo.Amount != nil
	hasPct := promo.AmountPercentage != nil
	if hasFixed == hasPct {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo needs exactly one of amount or percentage")
	}
	if hasFixed && (promo.Amount.IsNegative() || (promo.AmountTax != nil && promo.AmountTax.IsNegative())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo amount cannot be negative")
	}
	if hasPct && (promo.AmountPercentage.IsNegative() || promo.AmountPercentage.GreaterThan(hundred)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo percentage must be between 0 and 100")
	}
	if promo.UsageLimit != nil && *promo.UsageLimit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}

	created, err := s.repo.CreatePromo(ctx, promo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating promo code")
	}
	return created, nil
}

func (s *service) ListPromos(ctx context.Context) ([]models.PromotionalCode, error) {
	promos, err := s.repo.ListPromos(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing promo codes")
	}
	return promos, nil
}

func (s *service) DeletePromo(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "promo id is required")
	}
	if err := s.repo.DeletePromo(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting promo code")
	}
	return nil
}
