package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

type retentionRepoSpy struct {
	cutoff      time.Time
	minAttempts int
	calls       int
	err         error
}

func (r *retentionRepoSpy) DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error) {
	r.calls++
	r.cutoff = cutoff
	r.minAttempts = minAttemptCount
	return 7, r.err
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func buildRetentionJob(t *testing.T, repo *retentionRepoSpy) *outboxRetentionJob {
	t.Helper()
	built, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "maintenance-test"}),
		DB:         passthroughTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := built.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("unexpected job type %T", built)
	}
	return job
}

func TestOutboxRetentionCutoffUsesDefaultWindow(t *testing.T) {
	frozen := time.Date(2026, 2, 10, 6, 30, 0, 0, time.UTC)
	repo := &retentionRepoSpy{}
	job := buildRetentionJob(t, repo)
	job.now = func() time.Time { return frozen }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantCutoff := frozen.Add(-defaultRetentionDays * 24 * time.Hour)
	if !repo.cutoff.Equal(wantCutoff) {
		t.Fatalf("cutoff %s, want %s", repo.cutoff, wantCutoff)
	}
	if repo.minAttempts != defaultRetentionMinTries {
		t.Fatalf("min attempts %d, want %d", repo.minAttempts, defaultRetentionMinTries)
	}
	if repo.calls != 1 {
		t.Fatalf("repo called %d times, want 1", repo.calls)
	}
}

func TestOutboxRetentionSurfacesRepoError(t *testing.T) {
	repo := &retentionRepoSpy{err: errors.New("table locked")}
	job := buildRetentionJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the repo error to propagate")
	}
}
