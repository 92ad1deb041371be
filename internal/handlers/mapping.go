package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/analytics"
	"github.com/mailmetrics/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// MapHandler ingests recipient identity mappings. Writes are authorized by an
// HMAC-SHA256 signature over the pipe-joined payload fields, keyed by a
// server-held secret. Without a configured secret, all writes are refused.
type MapHandler struct {
	secret  string
	publish messaging.Publish[analytics.RecipientMapping]
	logger  *zap.Logger
}

// NewMapHandler creates a new identity-mapping handler.
func NewMapHandler(secret string, publish messaging.Publish[analytics.RecipientMapping], logger *zap.Logger) *MapHandler {
	return &MapHandler{
		secret:  secret,
		publish: publish,
		logger:  logger,
	}
}

// SignMapping computes the hex HMAC-SHA256 signature over
// recipientHash|email|emailHash|newsletterId with the given secret.
func SignMapping(secret, recipientHash, email, emailHash, newsletterID string) string {
	payload := strings.Join([]string{recipientHash, email, emailHash, newsletterID}, "|")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}

func (h *MapHandler) Map(ctx context.Context, req *MapRequest) (*struct{}, error) {
	if h.secret == "" {
		return nil, huma.Error401Unauthorized("identity mapping is disabled")
	}

	expected := SignMapping(h.secret,
		req.Body.RecipientHash, req.Body.Email, req.Body.EmailHash, req.Body.NewsletterID)

	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		h.logger.Warn("rejected mapping write with invalid signature",
			zap.String("newsletterId", req.Body.NewsletterID),
		)

		return nil, huma.Error403Forbidden("invalid signature")
	}

	mapping := &analytics.RecipientMapping{
		RecipientHash: req.Body.RecipientHash,
		Email:         req.Body.Email,
		EmailHash:     req.Body.EmailHash,
		NewsletterID:  req.Body.NewsletterID,
		MappedAt:      time.Now().UTC(),
	}

	if err := h.publish(mapping); err != nil {
		h.logger.Error("failed to publish recipient mapping",
			zap.String("newsletterId", mapping.NewsletterID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to record mapping")
	}

	return nil, nil
}
