package analytics

import "time"

// Topics for analytics event streams.
const (
	TopicClick            = "analytics.click"
	TopicTrack            = "analytics.track"
	TopicRecipientMapping = "analytics.recipient_mapping"
)

// Source tags identifying the originating surface.
const (
	SourceShortlink = "shortlink"
	SourceTrack     = "track"
)

// EventTypeClick is the event type recorded for shortlink resolutions.
const EventTypeClick = "click"

// ClickEvent is emitted when a shortlink is resolved.
type ClickEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	EventType    string    `json:"eventType"`
	NewsletterID string    `json:"newsletterId,omitempty"`
	RecipientID  string    `json:"recipientId,omitempty"`
	URL          string    `json:"url"`
	UserAgent    string    `json:"userAgent,omitempty"`
}

// TrackEvent is a raw event ingested via the track endpoint. EventType and
// NewsletterID are required; the rest is optional.
type TrackEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"eventType"`
	NewsletterID  string    `json:"newsletterId"`
	RecipientHash string    `json:"recipientHash,omitempty"`
	URL           string    `json:"url,omitempty"`
	DurationSec   float64   `json:"durationSec,omitempty"`
	UserAgent     string    `json:"userAgent,omitempty"`
}

// RecipientMapping links a recipient hash to its email identifiers for a
// newsletter. Writes are gated by an HMAC signature upstream.
type RecipientMapping struct {
	RecipientHash string    `json:"recipientHash"`
	Email         string    `json:"email"`
	EmailHash     string    `json:"emailHash"`
	NewsletterID  string    `json:"newsletterId"`
	MappedAt      time.Time `json:"mappedAt"`
}
