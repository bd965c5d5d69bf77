package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	"github.com/Max3uc3Planz/lcdt-back/api/validators"
	"github.com/Max3uc3Planz/lcdt-back/internal/settings"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

type settingsPayload struct {
	MinimumOrderAmount   string `json:"minimum_order_amount" validate:"required"`
	SponsorshipEnabled   bool   `json:"sponsorship_enabled"`
	SponsorshipAmount    string `json:"sponsorship_amount" validate:"required"`
	SponsorshipAmountTax string `json:"sponsorship_amount_tax" validate:"required"`
	Version              int    `json:"version" validate:"required,min=1"`
}

// SettingsGet returns the global platform settings.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		setting, err := svc.Get(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

// SettingsUpdate replaces the global settings row, admin only. The version
// guards against concurrent edits.
func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var body settingsPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		minimum, err := decimal.NewFromString(body.MinimumOrderAmount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minimum_order_amount"))
			return
		}
		amount, err := decimal.NewFromString(body.SponsorshipAmount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sponsorship_amount"))
			return
		}
		amountTax, err := decimal.NewFromString(body.SponsorshipAmountTax)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sponsorship_amount_tax"))
			return
		}

		setting, err := svc.Update(ctx, settings.UpdateInput{
			MinimumOrderAmount:   minimum,
			SponsorshipEnabled:   body.SponsorshipEnabled,
			SponsorshipAmount:    amount,
			SponsorshipAmountTax: amountTax,
			Version:              body.Version,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
