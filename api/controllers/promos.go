package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	"github.com/Max3uc3Planz/lcdt-back/api/validators"
	"github.com/Max3uc3Planz/lcdt-back/internal/discounts"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

type promoPayload struct {
	Code             string  `json:"code" validate:"required"`
	Amount           *string `json:"amount,omitempty"`
	AmountTax        *string `json:"amount_tax,omitempty"`
	AmountPercentage *string `json:"amount_percentage,omitempty"`
	UsageLimit       *int    `json:"usage_limit,omitempty"`
	ExpirationDate   *string `json:"expiration_date,omitempty"`
	FirstOrderOnly   bool    `json:"first_order_only"`
	Type             string  `json:"type" validate:"required"`
}

func (p promoPayload) toModel() (*models.PromotionalCode, error) {
	promoType, err := enums.ParsePromoCodeType(p.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promo type")
	}

	promo := &models.PromotionalCode{
		Code:           p.Code,
		UsageLimit:     p.UsageLimit,
		FirstOrderOnly: p.FirstOrderOnly,
		Type:           promoType,
	}

	parseAmount := func(raw *string, name string) (*decimal.Decimal, error) {
		if raw == nil {
			return nil, nil
		}
		value, err := decimal.NewFromString(*raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
		}
		return &value, nil
	}

	if promo.Amount, err = parseAmount(p.Amount, "amount"); err != nil {
		return nil, err
	}
	if promo.AmountTax, err = parseAmount(p.AmountTax, "amount_tax"); err != nil {
		return nil, err
	}
	if promo.AmountPercentage, err = parseAmount(p.AmountPercentage, "amount_percentage"); err != nil {
		return nil, err
	}

	if p.ExpirationDate != nil {
		expiration, err := time.Parse(time.RFC3339, *p.ExpirationDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiration_date")
		}
		promo.ExpirationDate = &expiration
	}

	return promo, nil
}

// PromoValidate checks a code's usage rules for the caller and returns it
// when it can be applied at checkout.
func PromoValidate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discounts service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		code := chi.URLParam(r, "code")
		if code == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code is required"))
			return
		}

		promo, err := svc.ValidatePromo(ctx, code, actor.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, promo)
	}
}

// PromoCreate issues a promotional code, admin only.
func PromoCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discounts service unavailable"))
			return
		}

		var body promoPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		promo, err := body.toModel()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.CreatePromo(ctx, promo)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// PromoList returns every promotional code, admin only.
func PromoList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discounts service unavailable"))
			return
		}

		rows, err := svc.ListPromos(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// PromoDelete withdraws a promotional code, admin only.
func PromoDelete(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discounts service unavailable"))
			return
		}

		promoID, err := pathUUID(r, "promoId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeletePromo(ctx, promoID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
