package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mailmetrics/shortlink/internal/shortlink"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "shortlink:"

	fieldURL          = "url"
	fieldNewsletterID = "newsletter_id"
	fieldRecipientID  = "recipient_id"
	fieldCreatedAt    = "created_at"
	fieldExpiresAt    = "expires_at"
	fieldConsumed     = "consumed"
)

// markConsumedScript performs the consumption check-and-set server-side:
// -1 = key missing, 1 = this caller won the transition, 0 = already consumed.
var markConsumedScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HSETNX", KEYS[1], ARGV[1], "1")
`)

// RedisTier is the volatile shortlink tier. TTLs are enforced natively by the
// backend; without one, entries persist until backend eviction.
type RedisTier struct {
	client *redis.Client
}

// NewRedisTier creates a Redis-backed tier.
func NewRedisTier(client *redis.Client) *RedisTier {
	return &RedisTier{client: client}
}

func (r *RedisTier) Name() string { return "redis" }

func (r *RedisTier) Put(ctx context.Context, entry *shortlink.Entry, ttl time.Duration) error {
	key := redisKeyPrefix + entry.Token

	fields := map[string]interface{}{
		fieldURL:       entry.URL,
		fieldCreatedAt: entry.CreatedAt.UnixNano(),
	}

	if entry.NewsletterID != "" {
		fields[fieldNewsletterID] = entry.NewsletterID
	}

	if entry.RecipientID != "" {
		fields[fieldRecipientID] = entry.RecipientID
	}

	if entry.ExpiresAt != nil {
		fields[fieldExpiresAt] = entry.ExpiresAt.UnixNano()
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, fields)

	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}

	return nil
}

func (r *RedisTier) Get(ctx context.Context, token string) (*shortlink.Entry, error) {
	result, err := r.client.HGetAll(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	if len(result) == 0 {
		return nil, shortlink.ErrNotFound
	}

	return entryFromHash(token, result)
}

// entryFromHash decodes a stored hash back into an entry. A timestamp field
// that fails to parse is a tier failure, not a silent default: a corrupt
// expires_at must never turn an expiring entry into a non-expiring one.
func entryFromHash(token string, fields map[string]string) (*shortlink.Entry, error) {
	entry := &shortlink.Entry{
		Token:        token,
		URL:          fields[fieldURL],
		NewsletterID: fields[fieldNewsletterID],
		RecipientID:  fields[fieldRecipientID],
		Consumed:     fields[fieldConsumed] == "1",
	}

	nanos, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis get: corrupt created_at for %q: %w", token, err)
	}

	entry.CreatedAt = time.Unix(0, nanos).UTC()

	if raw, ok := fields[fieldExpiresAt]; ok {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis get: corrupt expires_at for %q: %w", token, err)
		}

		expiresAt := time.Unix(0, nanos).UTC()
		entry.ExpiresAt = &expiresAt
	}

	return entry, nil
}

func (r *RedisTier) MarkConsumed(ctx context.Context, token string) error {
	res, err := markConsumedScript.Run(ctx, r.client,
		[]string{redisKeyPrefix + token}, fieldConsumed).Int64()
	if err != nil {
		return fmt.Errorf("redis mark consumed: %w", err)
	}

	switch res {
	case -1:
		return shortlink.ErrNotFound
	case 0:
		return shortlink.ErrGone
	default:
		return nil
	}
}

func (r *RedisTier) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}

	return nil
}

// Compile-time check.
var _ shortlink.Tier = (*RedisTier)(nil)
