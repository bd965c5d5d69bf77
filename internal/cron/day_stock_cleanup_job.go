package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

const dayStockRetentionDays = 90

// DayStockCleanupJobParams configure the day stock cleanup job.
type DayStockCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository dayStockCleanupRepo
	Retention  int
}

type dayStockCleanupRepo interface {
	DeleteDatedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewDayStockCleanupJob deletes per-day stock rows whose date is long past.
// Old rows only matter for availability checks, which never look backwards.
func NewDayStockCleanupJob(params DayStockCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("day stock repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = dayStockRetentionDays
	}
	return &dayStockCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type dayStockCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      dayStockCleanupRepo
	retention int
	now       func() time.Time
}

func (j *dayStockCleanupJob) Name() string { return "day-stock-cleanup" }

func (j *dayStockCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteDatedBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("day stock cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "day stock cleanup complete")
	return nil
}

// DayStockCleanupRepo is the gorm-backed implementation used by the worker.
type DayStockCleanupRepo struct{}

func (DayStockCleanupRepo) DeleteDatedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	result := tx.WithContext(ctx).
		Where("date < ?", cutoff).
		Delete(&models.DayStock{})
	return result.RowsAffected, result.Error
}
