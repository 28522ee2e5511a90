// Package ratelimit throttles requests per client with a fixed-window counter.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Entry is the window state for one client.
type Entry struct {
	Count     int   `redis:"count"`
	ResetTime int64 `redis:"reset_time"` // epoch milliseconds
}

// Store persists window state. Get and Set are separate calls, so concurrent requests
// from one client may under-count; the limiter is best-effort.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	// DeleteExpired drops entries whose ResetTime is at or before cutoff (epoch ms).
	DeleteExpired(ctx context.Context, cutoff int64) error
}

// Config describes one limiter.
type Config struct {
	Name        string
	Window      time.Duration
	MaxRequests int
	Message     string
}

var (
	// ContactForm guards the contact endpoint.
	ContactForm = Config{
		Name:        "contact",
		Window:      15 * time.Minute,
		MaxRequests: 5,
		Message:     "Too many contact form submissions. Please try again later.",
	}

	// API is the permissive preset for read endpoints.
	API = Config{
		Name:        "api",
		Window:      time.Minute,
		MaxRequests: 20,
		Message:     "Too many requests. Please slow down.",
	}
)

// Result is the verdict for one request.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetTime  int64 // epoch milliseconds
	RetryAfter int64 // seconds, set only when denied
}

// Limiter applies a Config against a Store.
type Limiter struct {
	cfg   Config
	store Store
	now   func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New builds a limiter.
func New(cfg Config, store Store, opts ...Option) *Limiter {
	l := &Limiter{cfg: cfg, store: store, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config {
	return l.cfg
}

// Check counts one request for identifier and reports whether it may proceed.
func (l *Limiter) Check(ctx context.Context, identifier string) (Result, error) {
	now := l.now().UnixMilli()
	windowMs := l.cfg.Window.Milliseconds()

	if err := l.store.DeleteExpired(ctx, now-windowMs); err != nil {
		return Result{}, fmt.Errorf("rate limit cleanup: %w", err)
	}

	entry, ok, err := l.store.Get(ctx, identifier)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit get: %w", err)
	}

	if !ok || entry.ResetTime <= now {
		fresh := Entry{Count: 1, ResetTime: now + windowMs}
		if err := l.store.Set(ctx, identifier, fresh); err != nil {
			return Result{}, fmt.Errorf("rate limit set: %w", err)
		}
		return Result{
			Allowed:   true,
			Remaining: l.cfg.MaxRequests - 1,
			ResetTime: fresh.ResetTime,
		}, nil
	}

	if entry.Count >= l.cfg.MaxRequests {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  entry.ResetTime,
			RetryAfter: ceilSeconds(entry.ResetTime - now),
		}, nil
	}

	entry.Count++
	if err := l.store.Set(ctx, identifier, entry); err != nil {
		return Result{}, fmt.Errorf("rate limit set: %w", err)
	}
	return Result{
		Allowed:   true,
		Remaining: l.cfg.MaxRequests - entry.Count,
		ResetTime: entry.ResetTime,
	}, nil
}

func ceilSeconds(ms int64) int64 {
	return (ms + 999) / 1000
}
