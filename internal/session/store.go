// Package session tracks the signed-in identity and fans out changes to
// subscribers in the order the identity provider reported them.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/travel-guide/internal/domain"
)

// ProfileToucher records sign-in times on the profile store.
type ProfileToucher interface {
	TouchLastLogin(ctx context.Context, id string) error
}

// Listener receives every session transition. next is nil when the user
// signed out.
type Listener func(prev, next *domain.Session)

// touchTimeout bounds the background lastLogin write.
const touchTimeout = 10 * time.Second

type event struct {
	next *domain.Session
	done chan struct{}
}

// Store holds the current session. Publish enqueues changes; Run delivers
// them one at a time, each listener finishing before the next event.
type Store struct {
	profiles ProfileToucher
	log      *slog.Logger
	events   chan event

	mu        sync.RWMutex
	current   *domain.Session
	listeners []Listener
}

// NewStore constructs a Store. profiles may be nil, in which case sign-ins
// are not recorded.
func NewStore(profiles ProfileToucher, log *slog.Logger) *Store {
	return &Store{
		profiles: profiles,
		log:      log,
		events:   make(chan event, 64),
	}
}

// Current returns a copy of the signed-in identity, or nil.
func (s *Store) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Subscribe registers fn for all future transitions.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Publish reports a state change from the identity provider.
func (s *Store) Publish(next *domain.Session) {
	if next != nil {
		c := *next
		next = &c
	}
	s.events <- event{next: next}
}

// Sync blocks until every event published before the call has been
// delivered, or ctx is done.
func (s *Store) Sync(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case s.events <- event{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run delivers events until ctx is done. Exactly one Run may be active.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			if ev.done != nil {
				close(ev.done)
				continue
			}
			s.deliver(ev.next)
		}
	}
}

func (s *Store) deliver(next *domain.Session) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if next != nil && (prev == nil || prev.ID != next.ID) {
		s.log.Info("session started", "user_id", next.ID)
		s.touchLastLogin(next.ID)
	} else if next == nil && prev != nil {
		s.log.Info("session ended", "user_id", prev.ID)
	}

	for _, fn := range listeners {
		fn(prev, next)
	}
}

// touchLastLogin updates the profile without delaying listeners. A brand
// new identity has no profile yet; its creation stamps lastLogin itself.
func (s *Store) touchLastLogin(id string) {
	if s.profiles == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		err := s.profiles.TouchLastLogin(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotFound):
			s.log.Debug("update last login: no profile yet", "user_id", id)
		default:
			s.log.Error("update last login", "user_id", id, "error", err)
		}
	}()
}
