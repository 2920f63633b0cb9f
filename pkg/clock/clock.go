// Package clock abstracts the time operations used by request flows so
// tests can replace real waits with deterministic ones.
package clock

import "time"

// Clock is the subset of the time package the services depend on.
type Clock interface {
	Now() time.Time
	// After returns a channel that receives the current time once d has
	// elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
