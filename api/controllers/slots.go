package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	"github.com/Max3uc3Planz/lcdt-back/api/validators"
	"github.com/Max3uc3Planz/lcdt-back/internal/timeslot"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

type slotPayload struct {
	WeekDay        int    `json:"week_day" validate:"min=0,max=6"`
	TimeMin        int    `json:"time_min" validate:"required"`
	TimeMax        int    `json:"time_max" validate:"required"`
	DeliveryTypeID string `json:"delivery_type_id" validate:"required,uuid"`
}

// DeliveryTypeList returns the delivery types with their weekly slots.
func DeliveryTypeList(svc timeslot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "timeslot service unavailable"))
			return
		}

		rows, err := svc.ListDeliveryTypes(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SlotCreate adds a weekly delivery slot, admin only.
func SlotCreate(svc timeslot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "timeslot service unavailable"))
			return
		}

		var body slotPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		deliveryTypeID, err := uuid.Parse(body.DeliveryTypeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery_type_id"))
			return
		}

		slot, err := svc.CreateSlot(ctx, &models.TimeSlot{
			WeekDay:        body.WeekDay,
			TimeMin:        body.TimeMin,
			TimeMax:        body.TimeMax,
			DeliveryTypeID: deliveryTypeID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, slot)
	}
}

// SlotDelete removes a weekly delivery slot, admin only.
func SlotDelete(svc timeslot.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "timeslot service unavailable"))
			return
		}

		slotID, err := pathUUID(r, "slotId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteSlot(ctx, slotID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
