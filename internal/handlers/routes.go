package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/ratelimit"
)

// RegisterRoutes registers the shortlink and ingestion routes.
func RegisterRoutes(api huma.API, shortlinks *ShortlinkHandler, track *TrackHandler, mapping *MapHandler) {
	// POST /shortlink - create a shortlink.
	// Write endpoint, stricter rate limits.
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/shortlink",
		Summary:     "Create shortlink",
		Description: "Creates a short opaque token resolving to the given URL.",
		Tags:        []string{"Shortlinks"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 60},
					{Window: time.Hour, Max: 1000},
				},
			},
		},
	}, shortlinks.CreateShortlink)

	// GET /s/{token} - resolve and redirect.
	// High-traffic read path, relaxed limits.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/s/{token}",
		Summary:     "Resolve shortlink",
		Description: "Redirects to the target URL and relays a click event.",
		Tags:        []string{"Shortlinks"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, shortlinks.ResolveShortlink)

	// POST /track - raw event ingestion.
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/track",
		Summary:       "Track event",
		Description:   "Ingests a raw analytics event into the sink.",
		Tags:          []string{"Analytics"},
		DefaultStatus: http.StatusNoContent,
	}, track.Track)

	// POST /map - identity mapping, HMAC-gated.
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/map",
		Summary:       "Map recipient identity",
		Description:   "Records a recipient identity mapping. Requires a valid X-Signature header.",
		Tags:          []string{"Analytics"},
		DefaultStatus: http.StatusNoContent,
	}, mapping.Map)
}
