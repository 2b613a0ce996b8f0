package analysis

import (
	"context"
	"errors"
	"strangerchat/backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) AddUsage(ctx context.Context, day time.Time, delta models.UsageDelta) error {
	args := m.Called(day, delta)
	return args.Error(0)
}

func newTestCounter(store StatsStore, at time.Time) (*Counter, *time.Time) {
	now := at
	c := NewCounter(store)
	c.now = func() time.Time { return now }
	c.day = Day(now)
	return c, &now
}

func TestDay(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	got := Day(time.Date(2026, 10, 19, 1, 30, 0, 0, kyiv))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), got)
}

func TestCounter_FlushWritesDelta(t *testing.T) {
	store := new(MockStatsStore)
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c, _ := newTestCounter(store, at)

	c.RecordMatch()
	c.RecordMessage()
	c.RecordMessage()
	c.RecordRotation()

	store.On("AddUsage", Day(at), models.UsageDelta{Matches: 1, Messages: 2, Rotations: 1}).Return(nil).Once()

	require.NoError(t, c.Flush(context.Background()))
	// Nothing new: no second write.
	require.NoError(t, c.Flush(context.Background()))

	store.AssertExpectations(t)
	assert.Equal(t, int64(2), c.Today().Messages)
}

func TestCounter_FailedFlushIsRetried(t *testing.T) {
	store := new(MockStatsStore)
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c, _ := newTestCounter(store, at)

	c.RecordMessage()
	store.On("AddUsage", Day(at), models.UsageDelta{Messages: 1}).Return(errors.New("db down")).Once()
	assert.Error(t, c.Flush(context.Background()))

	c.RecordMessage()
	store.On("AddUsage", Day(at), models.UsageDelta{Messages: 2}).Return(nil).Once()
	require.NoError(t, c.Flush(context.Background()))

	store.AssertExpectations(t)
}

func TestCounter_TodayResetsAtMidnight(t *testing.T) {
	at := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	c, now := newTestCounter(nil, at)

	c.RecordMatch()
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, int64(1), c.Today().Matches)

	*now = at.Add(2 * time.Minute)
	require.NoError(t, c.Flush(context.Background()))

	today := c.Today()
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), today.Day)
	assert.Equal(t, int64(0), today.Matches)
}

func TestCounter_RunFlushesOnShutdown(t *testing.T) {
	store := new(MockStatsStore)
	store.On("AddUsage", mock.Anything, models.UsageDelta{Matches: 1}).Return(nil).Once()
	c := NewCounter(store)
	c.RecordMatch()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done

	store.AssertExpectations(t)
}
