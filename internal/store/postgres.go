package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mailmetrics/shortlink/internal/shortlink"
)

// PostgresTier is the durable shortlink tier. Rows are append-only; reads
// return the most recently created row for a token, and expiry is evaluated
// at read time by the orchestrator (no background deletion happens here).
type PostgresTier struct {
	pool *pgxpool.Pool
}

// NewPostgresTier creates a PostgreSQL-backed tier.
func NewPostgresTier(pool *pgxpool.Pool) *PostgresTier {
	return &PostgresTier{pool: pool}
}

func (p *PostgresTier) Name() string { return "postgres" }

// EnsureSchema creates the shortlinks table if it does not exist.
func (p *PostgresTier) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS shortlinks (
			token         TEXT        NOT NULL,
			url           TEXT        NOT NULL,
			newsletter_id TEXT,
			recipient_id  TEXT,
			created_at    TIMESTAMPTZ NOT NULL,
			expires_at    TIMESTAMPTZ,
			consumed      BOOLEAN     NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS shortlinks_token_idx ON shortlinks (token, created_at DESC);
	`

	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *PostgresTier) Put(ctx context.Context, entry *shortlink.Entry, _ time.Duration) error {
	query := `
		INSERT INTO shortlinks (token, url, newsletter_id, recipient_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		entry.Token,
		entry.URL,
		nullableString(entry.NewsletterID),
		nullableString(entry.RecipientID),
		entry.CreatedAt,
		entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres put: %w", err)
	}

	return nil
}

func (p *PostgresTier) Get(ctx context.Context, token string) (*shortlink.Entry, error) {
	query := `
		SELECT token, url, newsletter_id, recipient_id, created_at, expires_at, consumed
		FROM shortlinks
		WHERE token = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		entry        shortlink.Entry
		newsletterID *string
		recipientID  *string
	)

	err := p.pool.QueryRow(ctx, query, token).Scan(
		&entry.Token,
		&entry.URL,
		&newsletterID,
		&recipientID,
		&entry.CreatedAt,
		&entry.ExpiresAt,
		&entry.Consumed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, fmt.Errorf("postgres get: %w", err)
	}

	if newsletterID != nil {
		entry.NewsletterID = *newsletterID
	}

	if recipientID != nil {
		entry.RecipientID = *recipientID
	}

	return &entry, nil
}

// MarkConsumed is a conditional update: the rows-affected count tells us
// whether this caller observed the false -> true transition.
func (p *PostgresTier) MarkConsumed(ctx context.Context, token string) error {
	query := `
		UPDATE shortlinks
		SET consumed = TRUE
		WHERE token = $1 AND consumed = FALSE
	`

	tag, err := p.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("postgres mark consumed: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing transitioned: the token is either absent or already consumed.
	var exists bool
	if err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shortlinks WHERE token = $1)`, token,
	).Scan(&exists); err != nil {
		return fmt.Errorf("postgres mark consumed: %w", err)
	}

	if !exists {
		return shortlink.ErrNotFound
	}

	return shortlink.ErrGone
}

func (p *PostgresTier) Delete(ctx context.Context, token string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM shortlinks WHERE token = $1`, token); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ shortlink.Tier = (*PostgresTier)(nil)
