package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	"github.com/Max3uc3Planz/lcdt-back/api/validators"
	"github.com/Max3uc3Planz/lcdt-back/internal/orders"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

type orderItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type orderAddressPayload struct {
	Label    string  `json:"label" validate:"required"`
	Address1 string  `json:"address1" validate:"required"`
	Address2 *string `json:"address2,omitempty"`
	City     string  `json:"city" validate:"required"`
	Zipcode  string  `json:"zipcode" validate:"required"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	PlaceID  string  `json:"place_id"`
}

type orderSlotPayload struct {
	WeekDay *int   `json:"week_day,omitempty"`
	TimeMin int    `json:"time_min" validate:"required"`
	TimeMax int    `json:"time_max" validate:"required"`
	Kind    string `json:"kind" validate:"required"`
}

type createOrderPayload struct {
	Items           []orderItemPayload   `json:"items" validate:"required,min=1,dive"`
	AddressID       *string              `json:"address_id,omitempty"`
	NewAddress      *orderAddressPayload `json:"new_address,omitempty"`
	TelephoneID     string               `json:"telephone_id" validate:"required,uuid"`
	Slot            orderSlotPayload     `json:"slot" validate:"required"`
	PaymentMethod   string               `json:"payment_method" validate:"required"`
	PromoCode       *string              `json:"promo_code,omitempty"`
	SponsorshipCode *string              `json:"sponsorship_code,omitempty"`
}

type setStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func (p createOrderPayload) toInput(userID uuid.UUID) (orders.CreateInput, error) {
	input := orders.CreateInput{
		UserID:          userID,
		PaymentMethod:   p.PaymentMethod,
		PromoCode:       p.PromoCode,
		SponsorshipCode: p.SponsorshipCode,
	}

	for _, item := range p.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
		}
		input.Items = append(input.Items, orders.ItemInput{ProductID: productID, Quantity: item.Quantity})
	}

	if p.AddressID != nil {
		addressID, err := uuid.Parse(*p.AddressID)
		if err != nil {
			return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address_id")
		}
		input.AddressID = &addressID
	}
	if p.NewAddress != nil {
		input.NewAddress = &orders.NewAddressInput{
			Label:    p.NewAddress.Label,
			Address1: p.NewAddress.Address1,
			Address2: p.NewAddress.Address2,
			City:     p.NewAddress.City,
			Zipcode:  p.NewAddress.Zipcode,
			Lat:      p.NewAddress.Lat,
			Lng:      p.NewAddress.Lng,
			PlaceID:  p.NewAddress.PlaceID,
		}
	}

	telephoneID, err := uuid.Parse(p.TelephoneID)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid telephone_id")
	}
	input.TelephoneID = telephoneID

	kind, err := enums.ParseDeliveryKind(p.Slot.Kind)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery kind")
	}
	input.Slot = orders.SlotInput{
		WeekDay: p.Slot.WeekDay,
		TimeMin: p.Slot.TimeMin,
		TimeMax: p.Slot.TimeMax,
		Kind:    kind,
	}

	return input, nil
}

// OrderCreate runs the checkout and returns the created order.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body createOrderPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := body.toInput(actor.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Create(ctx, actor, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet returns one order. Customers can only read their own.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.GetByID(ctx, actor, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderListByUser returns a customer's orders, newest first.
func OrderListByUser(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListByUser(ctx, actor, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// OrderSetStatus advances an order through the fulfillment pipeline,
// staff only.
func OrderSetStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body setStatusPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.SetStatus(ctx, actor, orderID, body.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderQueue returns the kitchen queue for one pipeline status, staff only.
func OrderQueue(svc orders.Service, logg *logger.Logger, status enums.OrderStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.Queue(ctx, actor, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// OrderHistory pages through completed orders, staff only.
func OrderHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters := orders.HistoryFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
			page, err := strconv.Atoi(raw)
			if err != nil || page < 1 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "page must be a positive integer"))
				return
			}
			filters.Page = page
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from date"))
				return
			}
			filters.From = &from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to date"))
				return
			}
			filters.To = &to
		}

		page, err := svc.History(ctx, actor, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrderCounts returns the per-status totals for the dashboard, staff only.
func OrderCounts(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		counts, err := svc.Counts(ctx, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

// OrderLive is the customer-facing status check for an in-flight express order.
func OrderLive(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		live, err := svc.Live(ctx, actor, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, live)
	}
}
