package ordertrack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	durations []time.Duration
	pending   []func()
}

func (c *fakeClock) after(d time.Duration, fn func()) {
	c.durations = append(c.durations, d)
	c.pending = append(c.pending, fn)
}

func (c *fakeClock) fireAll() {
	for _, fn := range c.pending {
		fn()
	}
	c.pending = nil
}

func TestNotices(t *testing.T) {
	clock := &fakeClock{}
	n := NewNotices()
	n.SetAfterFunc(clock.after)

	t.Run("success expires after three seconds", func(t *testing.T) {
		n.Success("Order registered.")
		require.Len(t, n.Active(), 1)
		require.Len(t, clock.durations, 1)
		assert.Equal(t, SuccessNoticeTTL, clock.durations[0])

		clock.fireAll()
		assert.Empty(t, n.Active())
	})

	t.Run("no-op hint expires after two seconds", func(t *testing.T) {
		clock.durations = nil
		n.Info("No changes to save.")
		require.Len(t, clock.durations, 1)
		assert.Equal(t, NoOpNoticeTTL, clock.durations[0])
		clock.fireAll()
		assert.Empty(t, n.Active())
	})

	t.Run("errors are sticky", func(t *testing.T) {
		clock.durations = nil
		n.Error("Could not load orders.")
		assert.Empty(t, clock.durations)
		assert.Len(t, n.Active(), 1)

		n.ClearErrors()
		assert.Empty(t, n.Active())
	})

	t.Run("clearing errors keeps other notices", func(t *testing.T) {
		n.Error("boom")
		n.Success("saved")
		n.ClearErrors()
		active := n.Active()
		require.Len(t, active, 1)
		assert.Equal(t, NoticeSuccess, active[0].Kind)
	})
}
