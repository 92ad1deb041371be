package shortlink

import (
	"context"
	"fmt"
	"time"

	"github.com/mailmetrics/shortlink/internal/analytics"
	"go.uber.org/zap"
)

// TTL bounds applied to caller-supplied expiries.
const (
	minTTL = 5 * time.Second
	maxTTL = 3600 * time.Second
)

// ClickDispatcher relays a click event without blocking the caller.
type ClickDispatcher func(event *analytics.ClickEvent)

// CreateParams are the inputs for creating a shortlink.
type CreateParams struct {
	URL          string
	NewsletterID string
	RecipientID  string
	TTLSeconds   *int // nil = non-expiring (tier-dependent)
}

// CreateResult is returned for a successfully created shortlink.
type CreateResult struct {
	Token     string
	Path      string
	ExpiresAt *time.Time
}

// ResolveMeta carries request metadata forwarded to the click event.
type ResolveMeta struct {
	UserAgent string
}

// Service implements the shortlink lifecycle: create, resolve, consume.
type Service struct {
	store         TierStore
	generate      TokenGenerator
	dispatchClick ClickDispatcher
	singleUse     bool
	defaultTTL    time.Duration
	logger        *zap.Logger
}

// ServiceConfig bundles the Service dependencies.
type ServiceConfig struct {
	Store         TierStore
	Generate      TokenGenerator
	DispatchClick ClickDispatcher
	SingleUse     bool
	DefaultTTL    time.Duration
	Logger        *zap.Logger
}

// NewService creates a shortlink service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		store:         cfg.Store,
		generate:      cfg.Generate,
		dispatchClick: cfg.DispatchClick,
		singleUse:     cfg.SingleUse,
		defaultTTL:    cfg.DefaultTTL,
		logger:        cfg.Logger,
	}
}

// Create validates the target URL, generates a token, and writes the entry to
// the first tier that accepts it.
func (s *Service) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	if p.URL == "" {
		return nil, ErrEmptyURL
	}

	ttl := s.effectiveTTL(p.TTLSeconds)
	now := time.Now().UTC()

	entry := &Entry{
		Token:        s.generate(),
		URL:          p.URL,
		NewsletterID: p.NewsletterID,
		RecipientID:  p.RecipientID,
		CreatedAt:    now,
	}

	if ttl > 0 {
		expiresAt := now.Add(ttl)
		entry.ExpiresAt = &expiresAt
	}

	if err := s.store.Put(ctx, entry, ttl); err != nil {
		return nil, fmt.Errorf("store shortlink: %w", err)
	}

	s.logger.Debug("shortlink created",
		zap.String("token", entry.Token),
		zap.Timep("expiresAt", entry.ExpiresAt),
	)

	return &CreateResult{
		Token:     entry.Token,
		Path:      "/s/" + entry.Token,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

// Resolve looks up the token, applies the expiry and consumption policy, and
// returns the redirect target. The click event is dispatched after the
// redirect decision is made and never affects the outcome.
func (s *Service) Resolve(ctx context.Context, token string, meta ResolveMeta) (string, error) {
	entry, tier, err := s.store.Get(ctx, token)
	if err != nil {
		return "", err
	}

	if s.singleUse {
		if entry.Consumed {
			return "", ErrGone
		}

		// Atomic check-and-set in the owning tier; exactly one concurrent
		// resolver observes the false -> true transition.
		if err := tier.MarkConsumed(ctx, token); err != nil {
			return "", err
		}
	}

	s.dispatchClick(&analytics.ClickEvent{
		Timestamp:    time.Now().UTC(),
		Source:       analytics.SourceShortlink,
		EventType:    analytics.EventTypeClick,
		NewsletterID: entry.NewsletterID,
		RecipientID:  entry.RecipientID,
		URL:          entry.URL,
		UserAgent:    meta.UserAgent,
	})

	return entry.URL, nil
}

func (s *Service) effectiveTTL(ttlSeconds *int) time.Duration {
	if ttlSeconds == nil {
		return s.defaultTTL
	}

	ttl := time.Duration(*ttlSeconds) * time.Second
	if ttl < minTTL {
		return minTTL
	}

	if ttl > maxTTL {
		return maxTTL
	}

	return ttl
}
