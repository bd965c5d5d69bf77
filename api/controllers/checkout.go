package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	"github.com/Max3uc3Planz/lcdt-back/api/validators"
	"github.com/Max3uc3Planz/lcdt-back/internal/availability"
	"github.com/Max3uc3Planz/lcdt-back/internal/timeslot"
	"github.com/Max3uc3Planz/lcdt-back/internal/zones"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

type timeslotProbePayload struct {
	WeekDay *int   `json:"week_day,omitempty"`
	TimeMin int    `json:"time_min" validate:"required"`
	TimeMax int    `json:"time_max" validate:"required"`
	Kind    string `json:"kind" validate:"required"`
}

// CheckoutAvailability reports whether a product can fulfil the quantity
// before the customer commits to the order.
func CheckoutAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		quantity, err := strconv.Atoi(chi.URLParam(r, "qty"))
		if err != nil || quantity < 1 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer"))
			return
		}

		if _, err := svc.Check(ctx, productID, quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"available": true, "quantity": quantity})
	}
}

// CheckoutAddress reports whether a point falls inside a delivery zone and
// returns the matching zone with its delivery cost.
func CheckoutAddress(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "zones service unavailable"))
			return
		}

		lat, err := parseCoordinate(r.URL.Query().Get("latitude"), "latitude")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		lng, err := parseCoordinate(r.URL.Query().Get("longitude"), "longitude")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		zone, err := svc.ZoneForPoint(ctx, lat, lng)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, zone)
	}
}

// CheckoutTimeslot validates a requested delivery window and returns the
// concrete window the order would get.
func CheckoutTimeslot(svc timeslot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "timeslot service unavailable"))
			return
		}

		var body timeslotProbePayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		kind, err := enums.ParseDeliveryKind(body.Kind)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery kind"))
			return
		}

		resolution, err := svc.Resolve(ctx, timeslot.Request{
			WeekDay: body.WeekDay,
			TimeMin: body.TimeMin,
			TimeMax: body.TimeMax,
			Kind:    kind,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"slot":          resolution.Slot,
			"delivery_type": resolution.DeliveryType,
			"window_start":  resolution.WindowStart,
			"window_end":    resolution.WindowEnd,
		})
	}
}

func parseCoordinate(raw, name string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" query parameter required")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return value, nil
}
