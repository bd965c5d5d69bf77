package addresses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/maps"
)

type stubAddressRepo struct {
	rows []models.Address
}

func (s *stubAddressRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubAddressRepo) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	for i := range s.rows {
		if s.rows[i].ID == id && s.rows[i].UserID == userID {
			// Detached copy, like a row scanned from the database. A
			// pointer into rows would alias later slice mutations.
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAddressRepo) Create(ctx context.Context, address *models.Address) error {
	address.ID = uuid.New()
	address.CreatedAt = time.Now().Add(time.Duration(len(s.rows)) * time.Minute)
	s.rows = append(s.rows, *address)
	return nil
}

func (s *stubAddressRepo) Update(ctx context.Context, address *models.Address) error {
	for i := range s.rows {
		if s.rows[i].ID == address.ID {
			s.rows[i] = *address
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubAddressRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubAddressRepo) ClearMain(ctx context.Context, userID uuid.UUID) error {
	for i := range s.rows {
		if s.rows[i].UserID == userID {
			s.rows[i].IsMain = false
		}
	}
	return nil
}

func (s *stubAddressRepo) PromoteOldest(ctx context.Context, userID uuid.UUID) error {
	oldest := -1
	for i := range s.rows {
		if s.rows[i].UserID != userID {
			continue
		}
		if oldest == -1 || s.rows[i].CreatedAt.Before(s.rows[oldest].CreatedAt) {
			oldest = i
		}
	}
	if oldest >= 0 {
		s.rows[oldest].IsMain = true
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubZones struct {
	covered bool
}

func (s stubZones) Covered(ctx context.Context, lat, lng float64) (bool, error) {
	return s.covered, nil
}

func newAddressService(t *testing.T, repo Repository, covered bool) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:  repo,
		Tx:    stubTxRunner{},
		Zones: stubZones{covered: covered},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func baseInput() Input {
	return Input{
		Label:    "Maison",
		Address1: "12 rue de la Paix",
		City:     "Paris",
		Zipcode:  "75002",
		Lat:      48.869,
		Lng:      2.331,
	}
}

func TestCreateFirstAddressBecomesMain(t *testing.T) {
	repo := &stubAddressRepo{}
	svc := newAddressService(t, repo, true)
	owner := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}

	created, err := svc.Create(context.Background(), owner, owner.UserID, baseInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsMain {
		t.Fatal("first address must be main")
	}
}

func TestCreateNewMainDemotesPrevious(t *testing.T) {
	repo := &stubAddressRepo{}
	svc := newAddressService(t, repo, true)
	owner := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}

	first, err := svc.Create(context.Background(), owner, owner.UserID, baseInput())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := baseInput()
	second.Label = "Bureau"
	second.IsMain = true
	if _, err := svc.Create(context.Background(), owner, owner.UserID, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	rows, err := svc.List(context.Background(), owner, owner.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	mains := 0
	for _, row := range rows {
		if row.IsMain {
			mains++
			if row.ID == first.ID {
				t.Fatal("previous main was not demoted")
			}
		}
	}
	if mains != 1 {
		t.Fatalf("expected exactly one main address, got %d", mains)
	}
}

func TestDeleteMainPromotesOldest(t *testing.T) {
	repo := &stubAddressRepo{}
	svc := newAddressService(t, repo, true)
	owner := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}

	main, err := svc.Create(context.Background(), owner, owner.UserID, baseInput())
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	second := baseInput()
	second.Label = "Bureau"
	oldest, err := svc.Create(context.Background(), owner, owner.UserID, second)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	third := baseInput()
	third.Label = "Chalet"
	if _, err := svc.Create(context.Background(), owner, owner.UserID, third); err != nil {
		t.Fatalf("create third: %v", err)
	}

	if err := svc.Delete(context.Background(), owner, owner.UserID, main.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, _ := svc.List(context.Background(), owner, owner.UserID)
	if len(rows) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(rows))
	}
	for _, row := range rows {
		if row.ID == oldest.ID && !row.IsMain {
			t.Fatal("oldest remaining address was not promoted")
		}
		if row.ID != oldest.ID && row.IsMain {
			t.Fatal("wrong address promoted")
		}
	}
}

func TestCreateOutsideDeliveryArea(t *testing.T) {
	svc := newAddressService(t, &stubAddressRepo{}, false)
	owner := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}

	_, err := svc.Create(context.Background(), owner, owner.UserID, baseInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateRevalidatesZone(t *testing.T) {
	repo := &stubAddressRepo{}
	owner := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}

	created, err := newAddressService(t, repo, true).Create(context.Background(), owner, owner.UserID, baseInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved := baseInput()
	moved.Lat, moved.Lng = 43.3, 5.4
	_, err = newAddressService(t, repo, false).Update(context.Background(), owner, owner.UserID, created.ID, moved)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccessDeniedForStranger(t *testing.T) {
	svc := newAddressService(t, &stubAddressRepo{}, true)
	stranger := auth.Actor{UserID: uuid.New(), Role: enums.RoleUser}

	_, err := svc.Create(context.Background(), stranger, uuid.New(), baseInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMapPlaceDetails(t *testing.T) {
	details := &maps.PlaceDetails{
		PlaceID:          "place-123",
		FormattedAddress: "12 Rue de la Paix, 75002 Paris, France",
		Location:         maps.LatLng{Latitude: 48.869, Longitude: 2.331},
		AddressComponents: []maps.AddressComponent{
			{LongName: "12", Types: []string{"street_number"}},
			{LongName: "Rue de la Paix", Types: []string{"route"}},
			{LongName: "Appartement 4", Types: []string{"subpremise"}},
			{LongName: "Paris", Types: []string{"locality"}},
			{LongName: "75002", Types: []string{"postal_code"}},
		},
	}

	resolved, err := mapPlaceDetails(details)
	if err != nil {
		t.Fatalf("mapPlaceDetails: %v", err)
	}
	if resolved.Address1 != "12 Rue de la Paix" {
		t.Fatalf("address1 %q", resolved.Address1)
	}
	if resolved.Address2 == nil || *resolved.Address2 != "Appartement 4" {
		t.Fatalf("address2 %v", resolved.Address2)
	}
	if resolved.City != "Paris" || resolved.Zipcode != "75002" {
		t.Fatalf("city %q zipcode %q", resolved.City, resolved.Zipcode)
	}
	if resolved.Lat != 48.869 || resolved.Lng != 2.331 {
		t.Fatalf("location %f,%f", resolved.Lat, resolved.Lng)
	}
}

func TestMapPlaceDetailsMissingCity(t *testing.T) {
	details := &maps.PlaceDetails{
		Location: maps.LatLng{Latitude: 48.869, Longitude: 2.331},
		AddressComponents: []maps.AddressComponent{
			{LongName: "12", Types: []string{"street_number"}},
			{LongName: "Rue de la Paix", Types: []string{"route"}},
		},
	}
	if _, err := mapPlaceDetails(details); err == nil {
		t.Fatal("expected error for place without city")
	}
}
