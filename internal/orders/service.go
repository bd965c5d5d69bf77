package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/internal/availability"
	"github.com/Max3uc3Planz/lcdt-back/internal/discounts"
	"github.com/Max3uc3Planz/lcdt-back/internal/settings"
	"github.com/Max3uc3Planz/lcdt-back/internal/timeslot"
	"github.com/Max3uc3Planz/lcdt-back/internal/zones"
	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox/payloads"
)

// queueStatuses are the order states the kitchen dashboard polls.
var queueStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusProcessing,
	enums.OrderStatusPacking,
	enums.OrderStatusDelivery,
}

const historyPageSize = 25

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Outbox       outboxPublisher
	Availability availability.Service
	Timeslots    timeslot.Service
	Zones        zones.Service
	Discounts    discounts.Service
	Settings     settings.Service
	Clock        clock.Clock
	TxTimeout    time.Duration
}

// Service exposes the checkout workflow and the order lifecycle.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (*models.Order, error)
	SetStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status string) (*models.Order, error)
	GetByID(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.Order, error)
	Queue(ctx context.Context, actor auth.Actor, status enums.OrderStatus) ([]OrderSummary, error)
	History(ctx context.Context, actor auth.Actor, filters HistoryFilters) (*HistoryPage, error)
	Counts(ctx context.Context, actor auth.Actor) (map[string]int64, error)
	Live(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*LiveStatus, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	outbox       outboxPublisher
	availability availability.Service
	timeslots    timeslot.Service
	zones        zones.Service
	discounts    discounts.Service
	settings     settings.Service
	clk          clock.Clock
	txTimeout    time.Duration
}

// NewService builds the orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher is required")
	}
	if params.Availability == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "availability service is required")
	}
	if params.Timeslots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "timeslot service is required")
	}
	if params.Zones == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone service is required")
	}
	if params.Discounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discounts service is required")
	}
	if params.Settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings service is required")
	}
	if params.Clock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clock is required")
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		outbox:       params.Outbox,
		availability: params.Availability,
		timeslots:    params.Timeslots,
		zones:        params.Zones,
		discounts:    params.Discounts,
		settings:     params.Settings,
		clk:          params.Clock,
		txTimeout:    params.TxTimeout,
	}, nil
}

// Create runs the whole checkout inside one transaction: address and
// telephone resolution, slot validation, stock reservation, discounts,
// delivery surcharges and the outbox event.
func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*models.Order, error) {
	if err := validateCreateInput(actor, input); err != nil {
		return nil, err
	}

	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		avail := s.availability.WithTx(tx)
		disc := s.discounts.WithTx(tx)

		user, err := repo.FindUserByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
		}

		address, err := s.resolveAddress(ctx, repo, input)
		if err != nil {
			return err
		}

		zone, err := s.zones.ZoneForPoint(ctx, address.Lat, address.Lng)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "address is outside the delivery area")
			}
			return err
		}

		if _, err := repo.FindTelephoneOwned(ctx, input.TelephoneID, input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "telephone not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading telephone")
		}

		slot, err := s.timeslots.Resolve(ctx, timeslot.Request{
			WeekDay: input.Slot.WeekDay,
			TimeMin: input.Slot.TimeMin,
			TimeMax: input.Slot.TimeMax,
			Kind:    input.Slot.Kind,
		})
		if err != nil {
			return err
		}

		setting, err := s.settings.Snapshot(ctx)
		if err != nil {
			return err
		}

		var (
			promo         *models.PromotionalCode
			promoID       *uuid.UUID
			sponsorshipID *uuid.UUID
			discountAmt   decimal.Decimal
			discountTax   decimal.Decimal
		)
		switch {
		case input.SponsorshipCode != nil && setting.SponsorshipEnabled:
			grant, err := disc.ValidateSponsorship(ctx, *input.SponsorshipCode, input.UserID)
			if err != nil {
				return err
			}
			sponsorshipID = &grant.ID
			discountAmt = setting.SponsorshipAmount
			discountTax = setting.SponsorshipAmountTax
		case input.PromoCode != nil:
			promo, err = disc.ValidatePromo(ctx, *input.PromoCode, input.UserID)
			if err != nil {
				return err
			}
			promoID = &promo.ID
		}

		var (
			items    []models.OrderItem
			total    decimal.Decimal
			totalTax decimal.Decimal
		)
		for _, line := range input.Items {
			product, err := avail.Reserve(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			qty := decimal.NewFromInt(int64(line.Quantity))
			item := models.OrderItem{
				ProductID:        product.ID,
				Name:             product.Title,
				ShortDescription: product.ShortDescription,
				PictureURL:       product.PictureURL,
				Quantity:         line.Quantity,
				Total:            product.Price.Mul(qty),
				TotalTax:         product.PriceTax.Mul(qty),
			}
			items = append(items, item)
			total = total.Add(item.Total)
			totalTax = totalTax.Add(item.TotalTax)
		}

		if totalTax.LessThan(setting.MinimumOrderAmount) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("order total is below the %s minimum", setting.MinimumOrderAmount))
		}

		if promo != nil {
			amounts := disc.PromoAmounts(promo, total, totalTax)
			discountAmt = amounts.Amount
			discountTax = amounts.Tax
		}
		// A discount never drives a total negative.
		if discountAmt.GreaterThan(total) {
			discountAmt = total
		}
		if discountTax.GreaterThan(totalTax) {
			discountTax = totalTax
		}

		deliveryCost := zone.AdditionalCost.Add(slot.DeliveryType.AdditionalCost)
		deliveryCostTax := zone.AdditionalCostTax.Add(slot.DeliveryType.AdditionalCostTax)

		now := s.clk.Now()
		order := &models.Order{
			Date:                  now,
			Total:                 total.Sub(discountAmt).Add(deliveryCost),
			TotalTax:              totalTax.Sub(discountTax).Add(deliveryCostTax),
			Discount:              discountAmt,
			DiscountTax:           discountTax,
			DeliveryCost:          deliveryCost,
			DeliveryCostTax:       deliveryCostTax,
			PaymentMethod:         input.PaymentMethod,
			TslotMin:              slot.WindowStart,
			TslotMax:              slot.WindowEnd,
			Status:                enums.OrderStatusPending,
			UserID:                input.UserID,
			AddressID:             address.ID,
			TelephoneID:           input.TelephoneID,
			DeliveryTypeID:        slot.DeliveryType.ID,
			PromotionalCodeID:     promoID,
			SponsorshipDiscountID: sponsorshipID,
			Items:                 items,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		if sponsorshipID != nil {
			if err := disc.ConsumeSponsorship(ctx, *sponsorshipID); err != nil {
				return err
			}
		}

		event := payloads.OrderCreatedEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Status:        order.Status,
			Total:         order.Total,
			TotalTax:      order.TotalTax,
			DeliveryKind:  slot.DeliveryType.Kind,
			TslotMin:      order.TslotMin,
			TslotMax:      order.TslotMax,
			ItemCount:     countItems(order.Items),
			CustomerEmail: user.Email,
			CustomerName:  fmt.Sprintf("%s %s", user.FirstName, user.LastName),
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data:          event,
			OccurredAt:    now,
		}); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, actor, orderID)
}

func (s *service) resolveAddress(ctx context.Context, repo Repository, input CreateInput) (*models.Address, error) {
	if input.AddressID != nil {
		address, err := repo.FindAddressOwned(ctx, *input.AddressID, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
		}
		return address, nil
	}

	in := input.NewAddress
	covered, err := s.zones.Covered(ctx, in.Lat, in.Lng)
	if err != nil {
		return nil, err
	}
	if !covered {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is outside the delivery area")
	}

	address := &models.Address{
		UserID:   input.UserID,
		Label:    in.Label,
		Address1: in.Address1,
		Address2: in.Address2,
		City:     in.City,
		Zipcode:  in.Zipcode,
		Lat:      in.Lat,
		Lng:      in.Lng,
		PlaceID:  in.PlaceID,
	}
	if err := repo.CreateAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating address")
	}
	return address, nil
}

func validateCreateInput(actor auth.Actor, input CreateInput) error {
	if !actor.CanActFor(input.UserID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot order for another user")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil || line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order items are invalid")
		}
	}
	if input.PaymentMethod == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if input.TelephoneID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "telephone id is required")
	}
	if (input.AddressID == nil) == (input.NewAddress == nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "provide either an address id or a new address")
	}
	if input.SponsorshipCode != nil && input.PromoCode != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sponsorship and promo codes cannot be combined")
	}
	return nil
}

// SetStatus moves an order through the fulfillment state machine. Staff
// only.
func (s *service) SetStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status string) (*models.Order, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	// The transition check reads the current status inside the update
	// transaction so two concurrent legal moves cannot interleave.
	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindBare(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		order = current

		if !CanTransition(order.Status, next) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("order cannot move from %s to %s", order.Status, next))
		}

		if err := repo.UpdateStatus(ctx, orderID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
		}

		event := payloads.OrderStatusChangedEvent{
			OrderID:   orderID,
			UserID:    order.UserID,
			OldStatus: order.Status,
			NewStatus: next,
			ChangedAt: s.clk.Now(),
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data:          event,
			OccurredAt:    event.ChangedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = next
	return order, nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if !actor.CanActFor(order.UserID) && !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return order, nil
}

func (s *service) ListByUser(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.Order, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}

	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking user")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

func (s *service) Queue(ctx context.Context, actor auth.Actor, status enums.OrderStatus) ([]OrderSummary, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	valid := false
	for _, candidate := range queueStatuses {
		if candidate == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no queue for this status")
	}

	orders, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing queue")
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		summaries = append(summaries, summarize(&orders[i]))
	}
	return summaries, nil
}

func (s *service) History(ctx context.Context, actor auth.Actor, filters HistoryFilters) (*HistoryPage, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}

	orders, total, err := s.repo.ListHistory(ctx, filters.From, filters.To, historyPageSize, (page-1)*historyPageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing history")
	}

	out := &HistoryPage{Total: total, Orders: make([]OrderSummary, 0, len(orders))}
	for i := range orders {
		out.Orders = append(out.Orders, summarize(&orders[i]))
	}
	return out, nil
}

// Counts returns the per-status order counts with every status present,
// zero included.
func (s *service) Counts(ctx context.Context, actor auth.Actor) (map[string]int64, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting orders")
	}

	out := make(map[string]int64, len(enums.OrderStatuses()))
	for _, status := range enums.OrderStatuses() {
		out[status.String()] = counts[status]
	}
	return out, nil
}

// Live is the courier tracking lookup. Only meaningful for express orders
// still in flight.
func (s *service) Live(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*LiveStatus, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if !actor.CanActFor(order.UserID) && !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already completed")
	}
	if order.DeliveryType == nil || order.DeliveryType.Kind != enums.DeliveryKindExpress {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "live tracking is only available for express orders")
	}

	live := &LiveStatus{Status: order.Status}
	if order.Status == enums.OrderStatusDelivery {
		outFor := order.UpdatedAt
		live.OutForSince = &outFor
	}
	return live, nil
}

func countItems(items []models.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func summarize(order *models.Order) OrderSummary {
	summary := OrderSummary{
		ID:            order.ID,
		Date:          order.Date,
		Status:        order.Status,
		Total:         order.Total.StringFixed(2),
		TotalTax:      order.TotalTax.StringFixed(2),
		ItemCount:     countItems(order.Items),
		TslotMin:      order.TslotMin,
		TslotMax:      order.TslotMax,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.User != nil {
		summary.CustomerName = fmt.Sprintf("%s %s", order.User.FirstName, order.User.LastName)
	}
	if order.Address != nil {
		summary.AddressCity = order.Address.City
	}
	if order.DeliveryType != nil {
		summary.DeliveryKind = order.DeliveryType.Kind.String()
	}
	return summary
}
