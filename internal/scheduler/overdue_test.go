package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOverdueMarker struct {
	mock.Mock
}

func (m *MockOverdueMarker) MarkOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func setupJob(t *testing.T) (*OverdueJob, *MockOverdueMarker, *redislock.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	locker := redislock.New(client)
	marker := &MockOverdueMarker{}
	logger, _ := test.NewNullLogger()

	job := NewOverdueJob(marker, locker, time.Minute, time.UTC, logger)
	job.now = func() time.Time { return time.Date(2024, 3, 2, 0, 5, 0, 0, time.UTC) }
	return job, marker, locker, mr
}

func TestOverdueJob_Run(t *testing.T) {
	t.Run("sweeps and releases the lock", func(t *testing.T) {
		job, marker, _, mr := setupJob(t)
		ids := []uuid.UUID{uuid.New()}
		marker.On("MarkOverdue", mock.Anything, time.Date(2024, 3, 2, 0, 5, 0, 0, time.UTC)).Return(ids, nil)

		flagged, err := job.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, ids, flagged)
		assert.False(t, mr.Exists(overdueLockKey))
	})

	t.Run("skipped while another instance holds the lock", func(t *testing.T) {
		job, marker, locker, _ := setupJob(t)
		held, err := locker.Obtain(context.Background(), overdueLockKey, time.Minute, nil)
		require.NoError(t, err)
		defer held.Release(context.Background())

		flagged, err := job.Run(context.Background())

		assert.ErrorIs(t, err, ErrLocked)
		assert.Nil(t, flagged)
		marker.AssertNotCalled(t, "MarkOverdue", mock.Anything, mock.Anything)
	})

	t.Run("lock released after a failed sweep", func(t *testing.T) {
		job, marker, _, mr := setupJob(t)
		marker.On("MarkOverdue", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := job.Run(context.Background())

		assert.EqualError(t, err, "db down")
		assert.False(t, mr.Exists(overdueLockKey))
	})

	t.Run("sweep time in the configured zone", func(t *testing.T) {
		job, marker, _, _ := setupJob(t)
		loc := time.FixedZone("ECT", -5*60*60)
		job.location = loc
		marker.On("MarkOverdue", mock.Anything, mock.MatchedBy(func(now time.Time) bool {
			return now.Location() == loc && now.Hour() == 19
		})).Return([]uuid.UUID{}, nil)

		_, err := job.Run(context.Background())

		require.NoError(t, err)
		marker.AssertExpectations(t)
	})
}

func TestOverdueJob_Schedule(t *testing.T) {
	job, _, _, _ := setupJob(t)
	c := NewCron(time.UTC)

	_, err := job.Schedule(c, "0 5 0 * * *")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = job.Schedule(c, "every day")
	assert.Error(t, err)
}
