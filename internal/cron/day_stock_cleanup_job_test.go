package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

func TestDayStockCleanupJobDeletesOldRows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeDayStockCleanupRepo{}
	job := newDayStockCleanupJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.UTC().Add(-dayStockRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestDayStockCleanupJobPropagatesError(t *testing.T) {
	repo := &fakeDayStockCleanupRepo{err: errors.New("boom")}
	job := newDayStockCleanupJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newDayStockCleanupJob(t *testing.T, repo *fakeDayStockCleanupRepo) *dayStockCleanupJob {
	t.Helper()
	jobIface, err := NewDayStockCleanupJob(DayStockCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         passthroughTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewDayStockCleanupJob: %v", err)
	}
	job, ok := jobIface.(*dayStockCleanupJob)
	if !ok {
		t.Fatalf("expected dayStockCleanupJob, got %T", jobIface)
	}
	return job
}

type fakeDayStockCleanupRepo struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeDayStockCleanupRepo) DeleteDatedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}
