package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	"github.com/Max3uc3Planz/lcdt-back/api/validators"
	"github.com/Max3uc3Planz/lcdt-back/internal/zones"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/types"
)

type zoneVertexPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type zonePayload struct {
	Name              string              `json:"name" validate:"required"`
	Polygon           []zoneVertexPayload `json:"polygon" validate:"required,min=3"`
	AdditionalCost    string              `json:"additional_cost" validate:"required"`
	AdditionalCostTax string              `json:"additional_cost_tax" validate:"required"`
}

func (p zonePayload) toModel() (*models.DeliveryZone, error) {
	cost, err := decimal.NewFromString(p.AdditionalCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid additional_cost")
	}
	costTax, err := decimal.NewFromString(p.AdditionalCostTax)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid additional_cost_tax")
	}

	polygon := make(types.Polygon, 0, len(p.Polygon))
	for _, vertex := range p.Polygon {
		polygon = append(polygon, types.GeographyPoint{Lat: vertex.Lat, Lng: vertex.Lng})
	}

	return &models.DeliveryZone{
		Name:              p.Name,
		Polygon:           polygon,
		AdditionalCost:    cost,
		AdditionalCostTax: costTax,
	}, nil
}

// ZoneList returns every delivery zone, staff only.
func ZoneList(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "zones service unavailable"))
			return
		}

		rows, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ZoneCreate registers a delivery zone, admin only.
func ZoneCreate(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "zones service unavailable"))
			return
		}

		var body zonePayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		zone, err := body.toModel()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.Create(ctx, zone)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ZoneUpdate redraws or reprices a delivery zone, admin only.
func ZoneUpdate(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "zones service unavailable"))
			return
		}

		zoneID, err := pathUUID(r, "zoneId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body zonePayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		zone, err := body.toModel()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		zone.ID = zoneID

		updated, err := svc.Update(ctx, zone)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ZoneDelete removes a delivery zone, admin only.
func ZoneDelete(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "zones service unavailable"))
			return
		}

		zoneID, err := pathUUID(r, "zoneId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, zoneID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
