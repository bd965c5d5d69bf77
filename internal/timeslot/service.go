package timeslot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

// Early deliveries are booked as one hour windows starting on the hour or
// half hour, at least one hour from now.
const (
	earlyWindowWidth = 100
	preparationLead  = time.Hour
)

// Request is a delivery window asked for at checkout. WeekDay follows
// time.Weekday numbering (0 = Sunday) and defaults to the current day.
// TimeMin and TimeMax are HHMM integers.
type Request struct {
	WeekDay *int
	TimeMin int
	TimeMax int
	Kind    enums.DeliveryKind
}

// Resolution is the accepted window: the matched configured slot, its
// delivery type, and the concrete order window timestamps.
type Resolution struct {
	Slot         models.TimeSlot
	DeliveryType models.DeliveryType
	WindowStart  time.Time
	WindowEnd    time.Time
}

// Service validates requested delivery windows against the configured
// weekly slots.
type Service interface {
	// Resolve checks the requested window against the slot configuration
	// and returns the matched slot plus the order's concrete window.
	Resolve(ctx context.Context, req Request) (*Resolution, error)
	ListDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error)
	CreateSlot(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	clk  clock.Clock
}

// NewService builds the timeslot service. The clock must run in the
// restaurant's timezone; weekday and HHMM comparisons depend on it.
func NewService(repo Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "timeslot repo is required")
	}
	if clk == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clock is required")
	}
	return &service{repo: repo, clk: clk}, nil
}

func (s *service) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	if !req.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery kind")
	}

	now := s.clk.Now()
	earliest := now.Add(preparationLead)
	tomorrow := now.AddDate(0, 0, 1)

	weekDay := int(now.Weekday())
	if req.WeekDay != nil {
		weekDay = *req.WeekDay
	}
	if weekDay < 0 || weekDay > 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "week day out of range")
	}

	if req.Kind == enums.DeliveryKindEarly {
		if err := validateEarlyWindow(req, earliest); err != nil {
			return nil, err
		}
	}

	candidates, err := s.repo.FindCandidates(ctx, now, earliest, tomorrow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery slots")
	}

	match := matchSlot(candidates, req, weekDay)
	if match == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery slot is no longer available")
	}
	if match.DeliveryType == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "slot has no delivery type")
	}

	res := &Resolution{Slot: *match, DeliveryType: *match.DeliveryType}
	switch req.Kind {
	case enums.DeliveryKindExpress:
		// Express ships as soon as the kitchen is done; the window is the
		// order instant.
		res.WindowStart = now
		res.WindowEnd = now
	case enums.DeliveryKindEarly:
		day := nextDateForWeekday(now, weekDay)
		res.WindowStart = atHHMM(day, req.TimeMin)
		res.WindowEnd = atHHMM(day, req.TimeMax)
	}
	return res, nil
}

func validateEarlyWindow(req Request, earliest time.Time) error {
	if !clock.ValidHHMM(req.TimeMin) || !clock.ValidHHMM(req.TimeMax) {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery window is invalid")
	}
	_, minute := clock.SplitHHMM(req.TimeMin)
	if minute != 0 && minute != 30 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery window is invalid")
	}
	if req.TimeMax-req.TimeMin != earlyWindowWidth {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery window is invalid")
	}
	// The kitchen needs its one hour lead on the clock face no matter which
	// day the window falls on. A 22:00 order cannot book tomorrow 09:00.
	if req.TimeMin < clock.HHMM(earliest) {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery window starts too soon")
	}
	return nil
}

func matchSlot(candidates []models.TimeSlot, req Request, weekDay int) *models.TimeSlot {
	for i := range candidates {
		slot := &candidates[i]
		if slot.DeliveryType == nil || slot.DeliveryType.Kind != req.Kind || slot.WeekDay != weekDay {
			continue
		}
		switch req.Kind {
		case enums.DeliveryKindExpress:
			return slot
		case enums.DeliveryKindEarly:
			if slot.TimeMin <= req.TimeMin && slot.TimeMax >= req.TimeMax {
				return slot
			}
		}
	}
	return nil
}

// nextDateForWeekday returns the next date (today included) falling on the
// given weekday.
func nextDateForWeekday(now time.Time, weekDay int) time.Time {
	delta := (weekDay - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, delta)
}

func atHHMM(day time.Time, v int) time.Time {
	hour, minute := clock.SplitHHMM(v)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func (s *service) ListDeliveryTypes(ctx context.Context) ([]models.DeliveryType, error) {
	types, err := s.repo.ListDeliveryTypes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing delivery types")
	}
	return types, nil
}

func (s *service) CreateSlot(ctx context.Context, slot *models.TimeSlot) (*models.TimeSlot, error) {
	if slot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slot is required")
	}
	if slot.WeekDay < 0 || slot.WeekDay > 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "week day out of range")
	}
	if !clock.ValidHHMM(slot.TimeMin) || !clock.ValidHHMM(slot.TimeMax) || slot.TimeMin >= slot.TimeMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slot bounds are invalid")
	}
	if slot.DeliveryTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery type id is required")
	}
	created, err := s.repo.CreateSlot(ctx, slot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating slot")
	}
	return created, nil
}

func (s *service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "slot id is required")
	}
	if err := s.repo.DeleteSlot(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "slot not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting slot")
	}
	return nil
}
