package shortlink

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no tier holds the token.
	ErrNotFound = errors.New("shortlink not found")
	// ErrExpired is returned when the entry's expiry has passed.
	ErrExpired = errors.New("shortlink expired")
	// ErrGone is returned when a single-use entry has already been consumed.
	ErrGone = errors.New("shortlink already consumed")
	// ErrStorageUnavailable is returned when every tier rejected a write.
	ErrStorageUnavailable = errors.New("no storage tier available")
	// ErrEmptyURL is returned when a create request carries no target URL.
	ErrEmptyURL = errors.New("url must not be empty")
)

// Entry is a stored shortlink. Once written it is immutable except for the
// Consumed flag, which transitions false -> true at most once.
type Entry struct {
	Token        string
	URL          string
	NewsletterID string
	RecipientID  string
	CreatedAt    time.Time
	ExpiresAt    *time.Time // nil = non-expiring (tier-dependent)
	Consumed     bool
}

// Expired reports whether the entry's expiry has passed at the given instant.
// An entry expires exactly at ExpiresAt, not one tick later.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// Tier is a single storage backend holding shortlink entries.
type Tier interface {
	// Name identifies the tier in logs.
	Name() string

	// Put writes the entry. A non-zero ttl asks the tier to enforce expiry
	// natively where it can.
	Put(ctx context.Context, entry *Entry, ttl time.Duration) error

	// Get returns the entry or ErrNotFound.
	Get(ctx context.Context, token string) (*Entry, error)

	// MarkConsumed atomically transitions Consumed false -> true. Exactly one
	// concurrent caller succeeds; the rest get ErrGone. Returns ErrNotFound
	// when the token is absent.
	MarkConsumed(ctx context.Context, token string) error

	// Delete removes the entry. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}

// TierStore orchestrates reads and writes across an ordered tier list.
type TierStore interface {
	// Put writes to the first tier that accepts the entry.
	Put(ctx context.Context, entry *Entry, ttl time.Duration) error

	// Get probes tiers in order and returns the entry together with the tier
	// that holds it, so consumption can be marked in place.
	Get(ctx context.Context, token string) (*Entry, Tier, error)
}
