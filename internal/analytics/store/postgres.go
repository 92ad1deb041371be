package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mailmetrics/shortlink/internal/analytics"
)

// Postgres is a PostgreSQL implementation of analytics.Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the sink tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS events (
			event_timestamp TIMESTAMPTZ NOT NULL,
			source          TEXT        NOT NULL,
			event_type      TEXT        NOT NULL,
			newsletter_id   TEXT,
			recipient_id    TEXT,
			url             TEXT,
			duration_sec    DOUBLE PRECISION,
			user_agent      TEXT
		);
		CREATE TABLE IF NOT EXISTS recipient_mappings (
			recipient_hash TEXT        NOT NULL,
			email          TEXT        NOT NULL,
			email_hash     TEXT        NOT NULL,
			newsletter_id  TEXT        NOT NULL,
			mapped_at      TIMESTAMPTZ NOT NULL
		);
	`

	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *Postgres) SaveClick(ctx context.Context, event *analytics.ClickEvent) error {
	query := `
		INSERT INTO events (event_timestamp, source, event_type, newsletter_id, recipient_id, url, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Timestamp,
		event.Source,
		event.EventType,
		nullable(event.NewsletterID),
		nullable(event.RecipientID),
		nullable(event.URL),
		nullable(event.UserAgent),
	)

	return err
}

func (p *Postgres) SaveTrack(ctx context.Context, event *analytics.TrackEvent) error {
	query := `
		INSERT INTO events (event_timestamp, source, event_type, newsletter_id, recipient_id, url, duration_sec, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var duration *float64
	if event.DurationSec > 0 {
		duration = &event.DurationSec
	}

	_, err := p.pool.Exec(ctx, query,
		event.Timestamp,
		analytics.SourceTrack,
		event.EventType,
		event.NewsletterID,
		nullable(event.RecipientHash),
		nullable(event.URL),
		duration,
		nullable(event.UserAgent),
	)

	return err
}

func (p *Postgres) SaveRecipientMapping(ctx context.Context, mapping *analytics.RecipientMapping) error {
	query := `
		INSERT INTO recipient_mappings (recipient_hash, email, email_hash, newsletter_id, mapped_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		mapping.RecipientHash,
		mapping.Email,
		mapping.EmailHash,
		mapping.NewsletterID,
		mapping.MappedAt,
	)

	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.Store = (*Postgres)(nil)
