package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const overdueLockKey = "clinic:lock:overdue-sweep"

// ErrLocked is returned when another replica holds the sweep lock.
var ErrLocked = errors.New("overdue sweep already running")

// OverdueMarker flags financings with past-due installments.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// OverdueJob runs the overdue sweep under a Redis lock so that only one
// replica sweeps at a time.
type OverdueJob struct {
	marker   OverdueMarker
	locker   *redislock.Client
	lockTTL  time.Duration
	location *time.Location
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewOverdueJob(marker OverdueMarker, locker *redislock.Client, lockTTL time.Duration, location *time.Location, logger logrus.FieldLogger) *OverdueJob {
	if location == nil {
		location = time.UTC
	}
	return &OverdueJob{
		marker:   marker,
		locker:   locker,
		lockTTL:  lockTTL,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps once. It returns ErrLocked without sweeping when the lock is
// held elsewhere.
func (j *OverdueJob) Run(ctx context.Context) ([]uuid.UUID, error) {
	lock, err := j.locker.Obtain(ctx, overdueLockKey, j.lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain sweep lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			j.logger.WithError(err).Warn("failed to release sweep lock")
		}
	}()

	now := j.now().In(j.location)
	ids, err := j.marker.MarkOverdue(ctx, now)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// Schedule registers the sweep on c under the cron expression expr.
func (j *OverdueJob) Schedule(c *cron.Cron, expr string) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		start := j.now()
		entry := j.logger.WithField("job", "overdue-sweep")

		ids, err := j.Run(context.Background())
		switch {
		case errors.Is(err, ErrLocked):
			entry.Info("skipped, sweep running on another instance")
		case err != nil:
			entry.WithError(err).Error("overdue sweep failed")
		default:
			entry.WithFields(logrus.Fields{
				"flagged":  len(ids),
				"duration": time.Since(start).String(),
			}).Info("overdue sweep finished")
		}
	})
}

// NewCron builds a seconds-precision cron runner in location.
func NewCron(location *time.Location) *cron.Cron {
	return cron.New(cron.WithSeconds(), cron.WithLocation(location))
}
