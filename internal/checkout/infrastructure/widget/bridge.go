// Package widget connects the browser-hosted payment widget to a running
// checkout. The checkout blocks in Session.Open until the browser posts
// exactly one outcome for the session.
package widget

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/eventia/internal/checkout/domain"
	paydomain "github.com/dmehra2102/eventia/internal/payment/domain"
)

type Bridge struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewBridge(ttl time.Duration) *Bridge {
	return &Bridge{sessions: make(map[string]*Session), ttl: ttl}
}

type Session struct {
	id      string
	buyerID string
	bridge  *Bridge

	opened  chan paydomain.WidgetOptions
	outcome chan paydomain.Outcome
	done    chan struct{}

	// guarded by bridge.mu
	awaiting  bool
	delivered bool

	result domain.Result
	err    error
}

// NewSession registers a session owned by buyerID.
func (b *Bridge) NewSession(buyerID string) *Session {
	s := &Session{
		id:      uuid.NewString(),
		buyerID: buyerID,
		bridge:  b,
		opened:  make(chan paydomain.WidgetOptions, 1),
		outcome: make(chan paydomain.Outcome, 1),
		done:    make(chan struct{}),
	}
	b.mu.Lock()
	b.sessions[s.id] = s
	b.mu.Unlock()
	return s
}

func (s *Session) ID() string { return s.id }

// Open publishes opts to the browser and waits for its outcome. It gives
// up after the bridge TTL.
func (s *Session) Open(ctx context.Context, opts paydomain.WidgetOptions) (paydomain.Outcome, error) {
	s.bridge.mu.Lock()
	s.awaiting = true
	s.bridge.mu.Unlock()
	s.opened <- opts

	timer := time.NewTimer(s.bridge.ttl)
	defer timer.Stop()
	select {
	case out := <-s.outcome:
		return out, nil
	case <-timer.C:
		return s.giveUp(domain.ErrSessionExpired)
	case <-ctx.Done():
		return s.giveUp(ctx.Err())
	}
}

// giveUp stops accepting outcomes. An outcome accepted by Deliver before
// the lock was taken still wins.
func (s *Session) giveUp(err error) (paydomain.Outcome, error) {
	s.bridge.mu.Lock()
	defer s.bridge.mu.Unlock()
	if s.delivered {
		return <-s.outcome, nil
	}
	s.awaiting = false
	return paydomain.Outcome{}, err
}

// Started waits until the widget has been opened or the checkout has
// finished without needing it. opened reports which happened.
func (s *Session) Started(ctx context.Context) (opts paydomain.WidgetOptions, opened bool, err error) {
	select {
	case opts = <-s.opened:
		return opts, true, nil
	case <-s.done:
		select {
		case opts = <-s.opened:
			return opts, true, nil
		default:
			return paydomain.WidgetOptions{}, false, nil
		}
	case <-ctx.Done():
		return paydomain.WidgetOptions{}, false, ctx.Err()
	}
}

// Finish records the checkout result and unregisters the session.
func (s *Session) Finish(res domain.Result, err error) {
	s.bridge.mu.Lock()
	delete(s.bridge.sessions, s.id)
	s.result, s.err = res, err
	s.bridge.mu.Unlock()
	close(s.done)
}

// Wait blocks until Finish has been called.
func (s *Session) Wait(ctx context.Context) (domain.Result, error) {
	select {
	case <-s.done:
		s.bridge.mu.Lock()
		defer s.bridge.mu.Unlock()
		return s.result, s.err
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	}
}

// Deliver hands the widget's terminal outcome to the session. Only the
// owning buyer may deliver, and only once.
func (b *Bridge) Deliver(sessionID, buyerID string, out paydomain.Outcome) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[sessionID]
	if !ok || s.buyerID != buyerID || !s.awaiting {
		return nil, domain.ErrSessionNotFound
	}
	if s.delivered {
		return nil, domain.ErrOutcomeDelivered
	}
	s.delivered = true
	s.outcome <- out
	return s, nil
}

// Len reports the number of live sessions.
func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
