package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClock_AfterFiresImmediately(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Fake(start)

	select {
	case got := <-c.After(5500 * time.Millisecond):
		assert.Equal(t, start.Add(5500*time.Millisecond), got)
	default:
		t.Fatal("fake After must not block")
	}

	assert.Equal(t, start.Add(5500*time.Millisecond), c.Now())
	require.Equal(t, []time.Duration{5500 * time.Millisecond}, c.Waits())
}

func TestFakeClock_Advance(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Fake(start)
	c.Advance(time.Hour)

	assert.Equal(t, start.Add(time.Hour), c.Now())
	assert.Empty(t, c.Waits())
}
