package analytics

import "context"

// Store persists analytics events in the sink.
type Store interface {
	SaveClick(ctx context.Context, event *ClickEvent) error
	SaveTrack(ctx context.Context, event *TrackEvent) error
	SaveRecipientMapping(ctx context.Context, mapping *RecipientMapping) error
}
