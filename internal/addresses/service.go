package addresses

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/maps"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type zoneChecker interface {
	Covered(ctx context.Context, lat, lng float64) (bool, error)
}

// Service manages the customer's delivery address book.
type Service interface {
	List(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.Address, error)
	Create(ctx context.Context, actor auth.Actor, userID uuid.UUID, input Input) (*models.Address, error)
	Update(ctx context.Context, actor auth.Actor, userID, addressID uuid.UUID, input Input) (*models.Address, error)
	Delete(ctx context.Context, actor auth.Actor, userID, addressID uuid.UUID) error
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
	Resolve(ctx context.Context, placeID string) (*ResolvedPlace, error)
}

// ServiceParams groups the dependencies of the address service. Maps is
// optional; without it only Suggest and Resolve are unavailable.
type ServiceParams struct {
	Repo  Repository
	Tx    txRunner
	Zones zoneChecker
	Maps  *maps.Client
}

type service struct {
	repo  Repository
	tx    txRunner
	zones zoneChecker
	maps  *maps.Client
}

// NewService builds the address service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Zones == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone checker is required")
	}
	return &service{
		repo:  params.Repo,
		tx:    params.Tx,
		zones: params.Zones,
		maps:  params.Maps,
	}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, userID uuid.UUID) ([]models.Address, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, userID uuid.UUID, input Input) (*models.Address, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	address := &models.Address{
		UserID:   userID,
		Label:    strings.TrimSpace(input.Label),
		Address1: strings.TrimSpace(input.Address1),
		Address2: input.Address2,
		City:     strings.TrimSpace(input.City),
		Zipcode:  strings.TrimSpace(input.Zipcode),
		Lat:      input.Lat,
		Lng:      input.Lng,
		PlaceID:  input.PlaceID,
		IsMain:   input.IsMain,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
		}
		// The first address always becomes the main one.
		if len(existing) == 0 {
			address.IsMain = true
		} else if address.IsMain {
			if err := repo.ClearMain(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing main address")
			}
		}
		if err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, userID, addressID uuid.UUID, input Input) (*models.Address, error) {
	if !actor.CanActFor(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := repo.FindOwned(ctx, addressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
		}

		if input.IsMain && !address.IsMain {
			if err := repo.ClearMain(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing main address")
			}
		}

		address.Label = strings.TrimSpace(input.Label)
		address.Address1 = strings.TrimSpace(input.Address1)
		address.Address2 = input.Address2
		address.City = strings.TrimSpace(input.City)
		address.Zipcode = strings.TrimSpace(input.Zipcode)
		address.Lat = input.Lat
		address.Lng = input.Lng
		address.PlaceID = input.PlaceID
		if input.IsMain {
			address.IsMain = true
		}

		if err := repo.Update(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating address")
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the address and, when it carried the main flag, promotes
// the oldest remaining address.
func (s *service) Delete(ctx context.Context, actor auth.Actor, userID, addressID uuid.UUID) error {
	if !actor.CanActFor(userID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := repo.FindOwned(ctx, addressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
		}
		if err := repo.Delete(ctx, addressID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting address")
		}
		if address.IsMain {
			if err := repo.PromoteOldest(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promoting address")
			}
		}
		return nil
	})
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if s.maps == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	payload := maps.AutocompleteRequest{Input: req.Query}
	if country := strings.TrimSpace(req.Country); country != "" {
		payload.IncludedRegionCodes = []string{strings.ToUpper(country)}
	}
	if lang := strings.TrimSpace(req.Language); lang != "" {
		payload.LanguageCode = lang
	}

	resp, err := s.maps.Autocomplete(ctx, payload)
	if err != nil {
		return nil, err
	}
	suggestions := make([]Suggestion, 0, len(resp))
	for _, item := range resp {
		suggestions = append(suggestions, Suggestion{
			PlaceID:     item.PlaceID,
			Description: item.Description,
		})
	}
	return suggestions, nil
}

func (s *service) Resolve(ctx context.Context, placeID string) (*ResolvedPlace, error) {
	if s.maps == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps client unavailable")
	}
	if strings.TrimSpace(placeID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place id is required")
	}
	details, err := s.maps.ResolvePlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return mapPlaceDetails(details)
}

func (s *service) validateInput(ctx context.Context, input Input) error {
	if strings.TrimSpace(input.Label) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}
	if strings.TrimSpace(input.Address1) == "" || strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.Zipcode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address fields are incomplete")
	}

	covered, err := s.zones.Covered(ctx, input.Lat, input.Lng)
	if err != nil {
		return err
	}
	if !covered {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is outside the delivery area")
	}
	return nil
}

func mapPlaceDetails(details *maps.PlaceDetails) (*ResolvedPlace, error) {
	if details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place details missing")
	}
	if details.Location.Latitude == 0 && details.Location.Longitude == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place location missing")
	}

	var streetNumber, route, city, zipcode string
	var line2 *string
	for _, comp := range details.AddressComponents {
		for _, kind := range comp.Types {
			switch kind {
			case "street_number":
				streetNumber = comp.LongName
			case "route":
				route = comp.LongName
			case "subpremise":
				v := comp.LongName
				line2 = &v
			case "locality":
				city = comp.LongName
			case "postal_code":
				zipcode = comp.LongName
			}
		}
	}

	line1 := strings.TrimSpace(strings.Join([]string{streetNumber, route}, " "))
	if line1 == "" {
		line1 = details.FormattedAddress
	}
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "place has no city")
	}

	return &ResolvedPlace{
		PlaceID:  details.PlaceID,
		Address1: line1,
		Address2: line2,
		City:     city,
		Zipcode:  zipcode,
		Lat:      details.Location.Latitude,
		Lng:      details.Location.Longitude,
	}, nil
}
