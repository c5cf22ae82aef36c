package ratelimit

import (
	"context"
	"time"
)

// Window is the trailing interval during which one client identifier is
// allowed at most one successful submission.
const Window = time.Hour

// Decision is the limiter's answer for one request. RetryAfter is the
// full window, not the remaining time; simplicity over precision.
type Decision struct {
	Permit     bool
	RetryAfter time.Duration
}

// Limiter decides whether a client may submit right now. This is an
// advisory deterrent: it trusts the derived client identifier and is
// bypassable by IP rotation.
type Limiter interface {
	Allow(ctx context.Context, clientID string, now time.Time) (Decision, error)
}

// Releaser is implemented by limiters that reserve the slot during
// Allow and can hand it back when the request ultimately fails.
type Releaser interface {
	Release(ctx context.Context, clientID string) error
}

// RecentChecker reports whether any submission fact exists for the
// client at or after the given instant. Backed by the creation log.
type RecentChecker interface {
	RecentExists(ctx context.Context, clientID string, since time.Time) (bool, error)
}

// WindowLimiter answers from the store's creation log. It has no side
// effects: recording a successful submission is the caller's job, done
// only after the event actually persisted. Two concurrent submissions
// can both pass before either is logged; that race is accepted.
type WindowLimiter struct {
	store  RecentChecker
	window time.Duration
}

func NewWindowLimiter(store RecentChecker) *WindowLimiter {
	return &WindowLimiter{
		store:  store,
		window: Window,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, clientID string, now time.Time) (Decision, error) {
	exists, err := l.store.RecentExists(ctx, clientID, now.Add(-l.window))

	if err != nil {
		return Decision{}, err
	}

	if exists {
		return Decision{Permit: false, RetryAfter: l.window}, nil
	}

	return Decision{Permit: true}, nil
}
