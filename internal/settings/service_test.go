package settings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

type stubSettingsRepo struct {
	setting         *models.Setting
	getCalls        int
	updateVersioned func(ctx context.Context, setting *models.Setting, expectedVersion int) (int64, error)
}

func (s *stubSettingsRepo) Get(ctx context.Context) (*models.Setting, error) {
	s.getCalls++
	copied := *s.setting
	return &copied, nil
}

func (s *stubSettingsRepo) UpdateVersioned(ctx context.Context, setting *models.Setting, expectedVersion int) (int64, error) {
	if s.updateVersioned != nil {
		return s.updateVersioned(ctx, setting, expectedVersion)
	}
	if expectedVersion != s.setting.Version {
		return 0, nil
	}
	updated := *setting
	updated.Version = expectedVersion + 1
	s.setting = &updated
	return 1, nil
}

func newTestSetting() *models.Setting {
	return &models.Setting{
		ID:                 uuid.New(),
		MinimumOrderAmount: decimal.RequireFromString("15.00"),
		SponsorshipEnabled: true,
		SponsorshipAmount:  decimal.RequireFromString("5.00"),
		Version:            1,
	}
}

func TestSnapshotCachesWithinTTL(t *testing.T) {
	repo := &stubSettingsRepo{setting: newTestSetting()}
	svc, err := NewService(repo, time.Minute)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.getCalls)
	}
}

func TestSnapshotZeroTTLAlwaysReads(t *testing.T) {
	repo := &stubSettingsRepo{setting: newTestSetting()}
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}
	if repo.getCalls != 2 {
		t.Fatalf("expected two repo reads, got %d", repo.getCalls)
	}
}

func TestUpdateBumpsVersion(t *testing.T) {
	repo := &stubSettingsRepo{setting: newTestSetting()}
	svc, err := NewService(repo, time.Minute)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	updated, err := svc.Update(context.Background(), UpdateInput{
		MinimumOrderAmount: decimal.RequireFromString("20.00"),
		SponsorshipEnabled: false,
		Version:            1,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if !updated.MinimumOrderAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected minimum order amount %s", updated.MinimumOrderAmount)
	}
}

func TestUpdateStaleVersionConflicts(t *testing.T) {
	repo := &stubSettingsRepo{setting: newTestSetting()}
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Update(context.Background(), UpdateInput{
		MinimumOrderAmount: decimal.RequireFromString("20.00"),
		Version:            99,
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestUpdateRejectsNegativeAmounts(t *testing.T) {
	repo := &stubSettingsRepo{setting: newTestSetting()}
	svc, err := NewService(repo, 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Update(context.Background(), UpdateInput{
		MinimumOrderAmount: decimal.RequireFromString("-1.00"),
		Version:            1,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
