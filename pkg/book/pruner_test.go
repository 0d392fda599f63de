package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erain9/limitbook/pkg/config"
)

func TestPrunerNextCloseTimeAdvancesPastToday(t *testing.T) {
	loc := time.UTC
	cfg := config.PrunerConfig{CloseHour: 16, CloseMinute: 0, SlackMS: 100, Slack: 100 * time.Millisecond, Location: loc}

	now := time.Date(2026, 8, 3, 17, 0, 0, 0, loc) // already past 16:00 today
	p := newPruner(nil, cfg, func() time.Time { return now })

	want := time.Date(2026, 8, 4, 16, 0, 0, 0, loc).Add(cfg.Slack)
	assert.True(t, p.nextCloseTime().Equal(want), "expected next close time to roll to the following day")
}

func TestPrunerNextCloseTimeSameDay(t *testing.T) {
	loc := time.UTC
	cfg := config.PrunerConfig{CloseHour: 16, CloseMinute: 0, SlackMS: 100, Slack: 100 * time.Millisecond, Location: loc}

	now := time.Date(2026, 8, 3, 9, 0, 0, 0, loc)
	p := newPruner(nil, cfg, func() time.Time { return now })

	want := time.Date(2026, 8, 3, 16, 0, 0, 0, loc).Add(cfg.Slack)
	assert.True(t, p.nextCloseTime().Equal(want), "expected next close time to stay on the same day")
}

func TestPrunerStopIsBoundedEvenFarFromClose(t *testing.T) {
	loc := time.UTC
	cfg := config.PrunerConfig{CloseHour: 16, CloseMinute: 0, SlackMS: 100, Slack: 100 * time.Millisecond, Location: loc}
	now := time.Date(2026, 8, 3, 1, 0, 0, 0, loc) // close is ~15h away

	b := NewBook(WithPrunerConfig(cfg), withClock(func() time.Time { return now }))

	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return promptly even though session close is hours away")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	loc := time.UTC
	cfg := config.PrunerConfig{CloseHour: 16, CloseMinute: 0, SlackMS: 100, Slack: 100 * time.Millisecond, Location: loc}
	now := time.Date(2026, 8, 3, 1, 0, 0, 0, loc) // close is ~15h away

	b := NewBook(WithPrunerConfig(cfg), withClock(func() time.Time { return now }))

	b.Close()

	done := make(chan struct{})
	go func() {
		b.Close() // must not panic on the second call
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second Close() call did not return promptly")
	}
}

func TestCancelAllGoodForDayOnlyCancelsGFDOrders(t *testing.T) {
	b := newTestBook(t)

	b.AddOrder(mustOrder(t, 1, Buy, GoodForDay, 100, 5))
	b.AddOrder(mustOrder(t, 2, Buy, GoodTillCancel, 99, 5))
	b.AddOrder(mustOrder(t, 3, Sell, GoodForDay, 110, 5))

	b.cancelAllGoodForDay()

	require.Equal(t, 1, b.Size(), "only the GoodTillCancel order should survive pruning")
	_, stillPresent := b.index[2]
	assert.True(t, stillPresent, "the GoodTillCancel order was incorrectly pruned")
}

func TestCancelAllGoodForDayOnEmptyBookIsNoop(t *testing.T) {
	b := newTestBook(t)
	b.cancelAllGoodForDay() // must not panic
	assert.Equal(t, 0, b.Size())
}
