// Package analysis keeps anonymous aggregate counters about hub activity and
// periodically flushes them to a store. Nothing here references a user.
package analysis

import (
	"context"
	"strangerchat/backend/internal/models"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsStore persists usage deltas.
type StatsStore interface {
	AddUsage(ctx context.Context, day time.Time, delta models.UsageDelta) error
}

// Counter implements chathub.UsageRecorder with atomic counters.
type Counter struct {
	matches   atomic.Int64
	messages  atomic.Int64
	rotations atomic.Int64

	mu      sync.Mutex
	pending models.UsageDelta
	today   models.UsageDelta
	day     time.Time

	store StatsStore
	now   func() time.Time
}

// NewCounter creates a counter. A nil store keeps counters in memory only.
func NewCounter(store StatsStore) *Counter {
	c := &Counter{store: store, now: time.Now}
	c.day = Day(c.now())
	return c
}

// Day truncates t to its UTC date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c *Counter) RecordMatch()    { c.matches.Add(1) }
func (c *Counter) RecordMessage()  { c.messages.Add(1) }
func (c *Counter) RecordRotation() { c.rotations.Add(1) }

// collect moves the live counters into pending and today's totals, starting
// a new day when the date has changed.
func (c *Counter) collect() (time.Time, models.UsageDelta) {
	delta := models.UsageDelta{
		Matches:   c.matches.Swap(0),
		Messages:  c.messages.Swap(0),
		Rotations: c.rotations.Swap(0),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	day := c.day
	if today := Day(c.now()); today.After(c.day) {
		c.day = today
		defer func() { c.today = models.UsageDelta{} }()
	}
	c.pending = add(c.pending, delta)
	c.today = add(c.today, delta)
	return day, c.pending
}

// Flush writes everything collected so far. On failure the delta is kept and
// retried by the next flush.
func (c *Counter) Flush(ctx context.Context) error {
	day, delta := c.collect()
	if c.store == nil || delta.IsZero() {
		c.mu.Lock()
		c.pending = models.UsageDelta{}
		c.mu.Unlock()
		return nil
	}

	if err := c.store.AddUsage(ctx, day, delta); err != nil {
		return err
	}

	c.mu.Lock()
	c.pending = sub(c.pending, delta)
	c.mu.Unlock()
	return nil
}

// Today returns the counts of the current UTC day seen by this process.
func (c *Counter) Today() models.DailyStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.DailyStats{
		Day:       c.day,
		Matches:   c.today.Matches + c.matches.Load(),
		Messages:  c.today.Messages + c.messages.Load(),
		Rotations: c.today.Rotations + c.rotations.Load(),
	}
}

// Run flushes every interval until ctx is done, then flushes once more.
func (c *Counter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// The run context is gone; give the final flush its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := c.Flush(flushCtx); err != nil {
				log.Error().Err(err).Msg("Final usage flush failed")
			}
			cancel()
			return
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				log.Warn().Err(err).Msg("Usage flush failed, will retry")
			}
		}
	}
}

func add(a, b models.UsageDelta) models.UsageDelta {
	return models.UsageDelta{
		Matches:   a.Matches + b.Matches,
		Messages:  a.Messages + b.Messages,
		Rotations: a.Rotations + b.Rotations,
	}
}

func sub(a, b models.UsageDelta) models.UsageDelta {
	return models.UsageDelta{
		Matches:   a.Matches - b.Matches,
		Messages:  a.Messages - b.Messages,
		Rotations: a.Rotations - b.Rotations,
	}
}
