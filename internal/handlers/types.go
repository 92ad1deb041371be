package handlers

import "time"

// CreateShortlinkRequest is the request body for creating a shortlink. The
// url field is required, but enforced in the handler so a missing value
// reports 400 rather than the schema validator's 422.
type CreateShortlinkRequest struct {
	Body struct {
		URL          string `doc:"Redirect target"                                example:"https://example.com/article" json:"url" required:"false"`
		NewsletterID string `doc:"Campaign identifier carried to click events"    example:"n1"                          json:"nid,omitempty"`
		RecipientID  string `doc:"Recipient identifier (hashed upstream)"         example:"r1"                          json:"rid,omitempty"`
		TTLSeconds   *int   `doc:"Expiry in seconds, clamped to [5, 3600]"        example:"300"                         json:"ttlSeconds,omitempty"`
	}
}

// CreateShortlinkResponse is the response for a successfully created shortlink.
type CreateShortlinkResponse struct {
	Body struct {
		OK        bool       `doc:"Always true on success"       json:"ok"`
		Token     string     `doc:"Opaque shortlink token"       example:"a3f09b1c2d4e"  json:"token"`
		Path      string     `doc:"Resolvable path segment"      example:"/s/a3f09b1c2d4e" json:"path"`
		ExpiresAt *time.Time `doc:"Absolute expiry, null if none" json:"expiresAt"`
	}
}

// ResolveRequest is the request for resolving a shortlink token.
type ResolveRequest struct {
	Token string `doc:"Shortlink token" example:"a3f09b1c2d4e" path:"token"`
}

// ResolveResponse redirects to the shortlink's target URL.
type ResolveResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"Redirect target" header:"Location"`
	}
}

// TrackRequest is the raw event ingestion body. EventType and NewsletterID
// are required, enforced in the handler (missing values report 400, not the
// schema validator's 422); everything else is optional.
type TrackRequest struct {
	Body struct {
		EventType     string  `doc:"Event type"           example:"open" json:"eventType"    required:"false"`
		NewsletterID  string  `doc:"Campaign identifier"  example:"n1"   json:"newsletterId" required:"false"`
		RecipientHash string  `doc:"Hashed recipient"     json:"recipientHash,omitempty"`
		URL           string  `doc:"Associated URL"       json:"url,omitempty"`
		DurationSec   float64 `doc:"Duration in seconds"  json:"durationSec,omitempty"`
	}
}

// MapRequest is the identity-mapping ingestion body, gated by an HMAC
// signature over the pipe-joined fields.
type MapRequest struct {
	Signature string `doc:"HMAC-SHA256 signature (hex)" header:"X-Signature"`
	Body      struct {
		RecipientHash string `doc:"Hashed recipient"    json:"recipientHash"`
		Email         string `doc:"Recipient email"     json:"email"`
		EmailHash     string `doc:"Hashed email"        json:"emailHash"`
		NewsletterID  string `doc:"Campaign identifier" json:"newsletterId"`
	}
}
