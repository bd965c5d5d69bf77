package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/internal/availability"
	"github.com/Max3uc3Planz/lcdt-back/internal/discounts"
	"github.com/Max3uc3Planz/lcdt-back/internal/settings"
	"github.com/Max3uc3Planz/lcdt-back/internal/timeslot"
	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox"
)

var orderNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type stubOrdersRepo struct {
	user      *models.User
	address   *models.Address
	telephone *models.Telephone
	created   *models.Order
	orders    []models.Order
	counts    map[enums.OrderStatus]int64
	statusSet enums.OrderStatus
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	s.created = order
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.created != nil && s.created.ID == id {
		return s.created, nil
	}
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindBare(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.statusSet = status
	return nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orders, nil
}

func (s *stubOrdersRepo) ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error) {
	return s.orders, nil
}

func (s *stubOrdersRepo) ListHistory(ctx context.Context, from, to *time.Time, limit, offset int) ([]models.Order, int64, error) {
	return s.orders, int64(len(s.orders)), nil
}

func (s *stubOrdersRepo) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	return s.counts, nil
}

func (s *stubOrdersRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubOrdersRepo) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.user != nil && s.user.ID == id, nil
}

func (s *stubOrdersRepo) FindAddressOwned(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	if s.address == nil || s.address.ID != id || s.address.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.address, nil
}

func (s *stubOrdersRepo) CreateAddress(ctx context.Context, address *models.Address) error {
	address.ID = uuid.New()
	s.address = address
	return nil
}

func (s *stubOrdersRepo) FindTelephoneOwned(ctx context.Context, id, userID uuid.UUID) (*models.Telephone, error) {
	if s.telephone == nil || s.telephone.ID != id || s.telephone.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.telephone, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubAvailability struct {
	products map[uuid.UUID]*models.Product
	reserved map[uuid.UUID]int
}

func (s *stubAvailability) WithTx(tx *gorm.DB) availability.Service { return s }

func (s *stubAvailability) Check(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.CurrentStock < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is no longer available")
	}
	return product, nil
}

func (s *stubAvailability) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	product, err := s.Check(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if s.reserved == nil {
		s.reserved = make(map[uuid.UUID]int)
	}
	s.reserved[productID] += quantity
	return product, nil
}

type stubTimeslots struct {
	resolution *timeslot.Resolution
	err        error
}

func (s *stubTimeslots) Resolve(ctx context.Context, req timeslot.Request) (*timeslot.Resolution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resolution, nil
}

func (s *stubTimeslots) ListDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error) {
	return nil, nil
}

func (s *stubTimeslots) CreateSlot(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error) {
	return slot, nil
}

func (s *stubTimeslots) DeleteSlot(ctx context.Context, id uuid.UUID) error { return nil }

type stubZones struct {
	zone *models.DeliveryZone
}

func (s *stubZones) ZoneForPoint(ctx context.Context, lat, lng float64) (*models.DeliveryZone, error) {
	if s.zone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address is outside the delivery area")
	}
	return s.zone, nil
}

func (s *stubZones) Covered(ctx context.Context, lat, lng float64) (bool, error) {
	return s.zone != nil, nil
}

func (s *stubZones) List(ctx context.Context) ([]models.DeliveryZone, error) { return nil, nil }

func (s *stubZones) Create(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error) {
	return zone, nil
}

func (s *stubZones) Update(ctx context.Context, zone *models.DeliveryZone) (*models.DeliveryZone, error) {
	return zone, nil
}

func (s *stubZones) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubDiscounts struct {
	promo       *models.PromotionalCode
	sponsorship *models.SponsorshipDiscount
	consumed    []uuid.UUID
}

func (s *stubDiscounts) WithTx(tx *gorm.DB) discounts.Service { return s }

func (s *stubDiscounts) ValidatePromo(ctx context.Context, code string, userID uuid.UUID) (*models.PromotionalCode, error) {
	if s.promo == nil || s.promo.Code != code {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
	}
	return s.promo, nil
}

func (s *stubDiscounts) PromoAmounts(promo *models.PromotionalCode, total, totalTax decimal.Decimal) discounts.Amounts {
	out := discounts.Amounts{}
	if promo.Amount != nil {
		out.Amount = *promo.Amount
	}
	if promo.AmountTax != nil {
		out.Tax = *promo.AmountTax
	}
	return out
}

func (s *stubDiscounts) ValidateSponsorship(ctx context.Context, code string, userID uuid.UUID) (*models.SponsorshipDiscount, error) {
	if s.sponsorship == nil || s.sponsorship.Code != code || s.sponsorship.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no sponsorship discount for this code")
	}
	return s.sponsorship, nil
}

func (s *stubDiscounts) ConsumeSponsorship(ctx context.Context, id uuid.UUID) error {
	s.consumed = append(s.consumed, id)
	return nil
}

func (s *stubDiscounts) CreatePromo(ctx context.Context, promo *models.PromotionalCode) (*models.PromotionalCode, error) {
	return promo, nil
}

func (s *stubDiscounts) ListPromos(ctx context.Context) ([]models.PromotionalCode, error) {
	return nil, nil
}

func (s *stubDiscounts) DeletePromo(ctx context.Context, id uuid.UUID) error { return nil }

type stubSettings struct {
	setting *models.Setting
}

func (s *stubSettings) Get(ctx context.Context) (*models.Setting, error)      { return s.setting, nil }
func (s *stubSettings) Snapshot(ctx context.Context) (*models.Setting, error) { return s.setting, nil }
func (s *stubSettings) Update(ctx context.Context, input settings.UpdateInput) (*models.Setting, error) {
	return s.setting, nil
}

type checkoutFixture struct {
	repo      *stubOrdersRepo
	outbox    *stubOutbox
	avail     *stubAvailability
	slots     *stubTimeslots
	zones     *stubZones
	discounts *stubDiscounts
	settings  *stubSettings
	user      *models.User
	product   *models.Product
	svc       Service
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	userID := uuid.New()
	email := "jean@exemple.fr"
	user := &models.User{ID: userID, Email: &email, FirstName: "Jean", LastName: "Dupont", Role: enums.RoleUser}
	address := &models.Address{ID: uuid.New(), UserID: userID, City: "Paris", Lat: 48.85, Lng: 2.35}
	telephone := &models.Telephone{ID: uuid.New(), UserID: userID, Phone: "+33612345678"}

	product := &models.Product{
		ID:           uuid.New(),
		Title:        "Blanquette de veau",
		Price:        dec("10.00"),
		PriceTax:     dec("12.00"),
		CurrentStock: 10,
	}

	express := models.DeliveryType{
		ID:                uuid.New(),
		Kind:              enums.DeliveryKindExpress,
		AdditionalCost:    dec("2.00"),
		AdditionalCostTax: dec("2.40"),
	}

	f := &checkoutFixture{
		repo:      &stubOrdersRepo{user: user, address: address, telephone: telephone},
		outbox:    &stubOutbox{},
		avail:     &stubAvailability{products: map[uuid.UUID]*models.Product{product.ID: product}},
		slots:     &stubTimeslots{resolution: &timeslot.Resolution{DeliveryType: express, WindowStart: orderNow, WindowEnd: orderNow}},
		zones:     &stubZones{zone: &models.DeliveryZone{ID: uuid.New(), AdditionalCost: dec("1.00"), AdditionalCostTax: dec("1.20")}},
		discounts: &stubDiscounts{},
		settings:  &stubSettings{setting: &models.Setting{MinimumOrderAmount: dec("15.00"), SponsorshipEnabled: true, SponsorshipAmount: dec("5.00"), SponsorshipAmountTax: dec("6.00")}},
		user:      user,
		product:   product,
	}

	svc, err := NewService(ServiceParams{
		Repo:         f.repo,
		Tx:           stubTxRunner{},
		Outbox:       f.outbox,
		Availability: f.avail,
		Timeslots:    f.slots,
		Zones:        f.zones,
		Discounts:    f.discounts,
		Settings:     f.settings,
		Clock:        clock.Fixed{T: orderNow},
		TxTimeout:    10 * time.Second,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *checkoutFixture) baseInput() CreateInput {
	return CreateInput{
		UserID:        f.user.ID,
		Items:         []ItemInput{{ProductID: f.product.ID, Quantity: 2}},
		AddressID:     &f.repo.address.ID,
		TelephoneID:   f.repo.telephone.ID,
		Slot:          SlotInput{Kind: enums.DeliveryKindExpress},
		PaymentMethod: "card",
	}
}

func (f *checkoutFixture) actor() auth.Actor {
	return auth.Actor{UserID: f.user.ID, Role: enums.RoleUser}
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newCheckoutFixture(t)

	order, err := f.svc.Create(context.Background(), f.actor(), f.baseInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status %s, want pending", order.Status)
	}
	// 2 x 10.00 plus 1.00 zone and 2.00 express surcharges.
	if !order.Total.Equal(dec("23.00")) {
		t.Fatalf("total %s, want 23.00", order.Total)
	}
	// 2 x 12.00 plus 1.20 and 2.40.
	if !order.TotalTax.Equal(dec("27.60")) {
		t.Fatalf("total tax %s, want 27.60", order.TotalTax)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.Name != "Blanquette de veau" || item.Quantity != 2 {
		t.Fatalf("item snapshot wrong: %+v", item)
	}
	if !item.TotalTax.Equal(dec("24.00")) {
		t.Fatalf("item total tax %s, want 24.00", item.TotalTax)
	}

	if f.avail.reserved[f.product.ID] != 2 {
		t.Fatalf("reserved %d portions, want 2", f.avail.reserved[f.product.ID])
	}

	if len(f.outbox.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(f.outbox.events))
	}
	event := f.outbox.events[0]
	if event.EventType != enums.EventOrderCreated || event.AggregateID != order.ID {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestCreateOrderBelowMinimum(t *testing.T) {
	f := newCheckoutFixture(t)
	input := f.baseInput()
	input.Items[0].Quantity = 1 // 12.00 tax inclusive, below the 15.00 floor

	_, err := f.svc.Create(context.Background(), f.actor(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.repo.created != nil {
		t.Fatal("order must not be created below the minimum")
	}
}

func TestCreateOrderWithPromoCode(t *testing.T) {
	f := newCheckoutFixture(t)
	amount := dec("4.00")
	amountTax := dec("4.80")
	f.discounts.promo = &models.PromotionalCode{ID: uuid.New(), Code: "WELCOME", Amount: &amount, AmountTax: &amountTax}

	input := f.baseInput()
	code := "WELCOME"
	input.PromoCode = &code

	order, err := f.svc.Create(context.Background(), f.actor(), input)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !order.Discount.Equal(dec("4.00")) {
		t.Fatalf("discount %s, want 4.00", order.Discount)
	}
	if !order.Total.Equal(dec("19.00")) {
		t.Fatalf("total %s, want 19.00", order.Total)
	}
	if order.PromotionalCodeID == nil || *order.PromotionalCodeID != f.discounts.promo.ID {
		t.Fatal("promo code not linked to the order")
	}
}

func TestCreateOrderSponsorshipWinsAndIsConsumed(t *testing.T) {
	f := newCheckoutFixture(t)
	f.discounts.sponsorship = &models.SponsorshipDiscount{ID: uuid.New(), Code: "FILLEUL42", UserID: f.user.ID}

	input := f.baseInput()
	code := "FILLEUL42"
	input.SponsorshipCode = &code

	order, err := f.svc.Create(context.Background(), f.actor(), input)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// Sponsorship amounts come from settings: 5.00 / 6.00.
	if !order.Discount.Equal(dec("5.00")) || !order.DiscountTax.Equal(dec("6.00")) {
		t.Fatalf("discounts %s/%s, want 5.00/6.00", order.Discount, order.DiscountTax)
	}
	if len(f.discounts.consumed) != 1 || f.discounts.consumed[0] != f.discounts.sponsorship.ID {
		t.Fatal("sponsorship discount was not consumed")
	}
	if order.SponsorshipDiscountID == nil {
		t.Fatal("sponsorship not linked to the order")
	}
}

func TestCreateOrderNewAddressOutsideZones(t *testing.T) {
	f := newCheckoutFixture(t)
	f.zones.zone = nil

	input := f.baseInput()
	input.AddressID = nil
	input.NewAddress = &NewAddressInput{Label: "Bureau", Address1: "1 rue de la Paix", City: "Londres", Zipcode: "00000", Lat: 51.5, Lng: -0.12}

	_, err := f.svc.Create(context.Background(), f.actor(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderForAnotherUserForbidden(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Create(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}, f.baseInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSetStatusValidTransitionEmitsEvent(t *testing.T) {
	f := newCheckoutFixture(t)
	order := models.Order{ID: uuid.New(), UserID: f.user.ID, Status: enums.OrderStatusPending}
	f.repo.orders = []models.Order{order}

	staff := auth.Actor{UserID: uuid.New(), Role: enums.RoleChef}
	updated, err := f.svc.SetStatus(context.Background(), staff, order.ID, "processing")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("status %s, want processing", updated.Status)
	}
	if f.repo.statusSet != enums.OrderStatusProcessing {
		t.Fatal("status not persisted")
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatal("status change event not emitted")
	}
}

func TestSetStatusIllegalTransition(t *testing.T) {
	f := newCheckoutFixture(t)
	order := models.Order{ID: uuid.New(), UserID: f.user.ID, Status: enums.OrderStatusPending}
	f.repo.orders = []models.Order{order}

	staff := auth.Actor{UserID: uuid.New(), Role: enums.RoleChef}
	_, err := f.svc.SetStatus(context.Background(), staff, order.ID, "finished")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// txViewOrdersRepo hands the transaction a different view than the base
// repo, the way a concurrent writer would.
type txViewOrdersRepo struct {
	*stubOrdersRepo
	inTx *stubOrdersRepo
}

func (s *txViewOrdersRepo) WithTx(tx *gorm.DB) Repository { return s.inTx }

func TestSetStatusReadsCurrentStatusInTransaction(t *testing.T) {
	f := newCheckoutFixture(t)

	order := models.Order{ID: uuid.New(), UserID: f.user.ID, Status: enums.OrderStatusPending}
	advanced := order
	advanced.Status = enums.OrderStatusProcessing

	base := &stubOrdersRepo{orders: []models.Order{order}}
	inTx := &stubOrdersRepo{orders: []models.Order{advanced}}
	svc, err := NewService(ServiceParams{
		Repo:         &txViewOrdersRepo{stubOrdersRepo: base, inTx: inTx},
		Tx:           stubTxRunner{},
		Outbox:       f.outbox,
		Availability: f.avail,
		Timeslots:    f.slots,
		Zones:        f.zones,
		Discounts:    f.discounts,
		Settings:     f.settings,
		Clock:        clock.Fixed{T: orderNow},
		TxTimeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// Another staff member already moved the order to processing; the
	// transition check must see that write, not the stale pending row.
	staff := auth.Actor{UserID: uuid.New(), Role: enums.RoleChef}
	_, err = svc.SetStatus(context.Background(), staff, order.ID, "processing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if inTx.statusSet != "" {
		t.Fatal("status must not be written after a lost race")
	}
}

func TestSetStatusRequiresStaff(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.SetStatus(context.Background(), f.actor(), uuid.New(), "processing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCountsIncludesEveryStatus(t *testing.T) {
	f := newCheckoutFixture(t)
	f.repo.counts = map[enums.OrderStatus]int64{
		enums.OrderStatusPending:  3,
		enums.OrderStatusFinished: 12,
	}

	staff := auth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	counts, err := f.svc.Counts(context.Background(), staff)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(counts))
	}
	if counts["pending"] != 3 || counts["finished"] != 12 || counts["packing"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestLiveStatusRules(t *testing.T) {
	f := newCheckoutFixture(t)
	express := &models.DeliveryType{ID: uuid.New(), Kind: enums.DeliveryKindExpress}
	early := &models.DeliveryType{ID: uuid.New(), Kind: enums.DeliveryKindEarly}

	delivering := models.Order{ID: uuid.New(), UserID: f.user.ID, Status: enums.OrderStatusDelivery, DeliveryType: express}
	done := models.Order{ID: uuid.New(), UserID: f.user.ID, Status: enums.OrderStatusFinished, DeliveryType: express}
	scheduled := models.Order{ID: uuid.New(), UserID: f.user.ID, Status: enums.OrderStatusPending, DeliveryType: early}
	f.repo.orders = []models.Order{delivering, done, scheduled}

	live, err := f.svc.Live(context.Background(), f.actor(), delivering.ID)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if live.Status != enums.OrderStatusDelivery || live.OutForSince == nil {
		t.Fatalf("unexpected live status %+v", live)
	}

	_, err = f.svc.Live(context.Background(), f.actor(), done.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for finished order, got %v", err)
	}

	_, err = f.svc.Live(context.Background(), f.actor(), scheduled.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for early order, got %v", err)
	}

	stranger := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}
	_, err = f.svc.Live(context.Background(), stranger, delivering.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListByUserOwnerOrAdmin(t *testing.T) {
	f := newCheckoutFixture(t)
	f.repo.orders = []models.Order{{ID: uuid.New(), UserID: f.user.ID}}

	if _, err := f.svc.ListByUser(context.Background(), f.actor(), f.user.ID); err != nil {
		t.Fatalf("owner listing: %v", err)
	}

	admin := auth.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	if _, err := f.svc.ListByUser(context.Background(), admin, f.user.ID); err != nil {
		t.Fatalf("admin listing: %v", err)
	}

	chef := auth.Actor{UserID: uuid.New(), Role: enums.RoleChef}
	_, err := f.svc.ListByUser(context.Background(), chef, f.user.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for chef, got %v", err)
	}
}

func TestQueueValidatesStatus(t *testing.T) {
	f := newCheckoutFixture(t)
	staff := auth.Actor{UserID: uuid.New(), Role: enums.RoleChef}

	if _, err := f.svc.Queue(context.Background(), staff, enums.OrderStatusPending); err != nil {
		t.Fatalf("pending queue: %v", err)
	}

	_, err := f.svc.Queue(context.Background(), staff, enums.OrderStatusFinished)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for finished queue, got %v", err)
	}
}
