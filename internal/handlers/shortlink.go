package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mailmetrics/shortlink/internal/shortlink"
	"go.uber.org/zap"
)

// ShortlinkHandler handles shortlink creation and resolution.
type ShortlinkHandler struct {
	service *shortlink.Service
	logger  *zap.Logger
}

// NewShortlinkHandler creates a new shortlink handler.
func NewShortlinkHandler(service *shortlink.Service, logger *zap.Logger) *ShortlinkHandler {
	return &ShortlinkHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ShortlinkHandler) CreateShortlink(ctx context.Context, req *CreateShortlinkRequest) (*CreateShortlinkResponse, error) {
	result, err := h.service.Create(ctx, shortlink.CreateParams{
		URL:          req.Body.URL,
		NewsletterID: req.Body.NewsletterID,
		RecipientID:  req.Body.RecipientID,
		TTLSeconds:   req.Body.TTLSeconds,
	})
	if err != nil {
		if errors.Is(err, shortlink.ErrEmptyURL) {
			return nil, huma.Error400BadRequest("url is required")
		}

		h.logger.Error("failed to create shortlink", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create shortlink")
	}

	resp := &CreateShortlinkResponse{}
	resp.Body.OK = true
	resp.Body.Token = result.Token
	resp.Body.Path = result.Path
	resp.Body.ExpiresAt = result.ExpiresAt

	return resp, nil
}

func (h *ShortlinkHandler) ResolveShortlink(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	meta := RequestMetaFromContext(ctx)

	target, err := h.service.Resolve(ctx, req.Token, shortlink.ResolveMeta{
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		switch {
		case errors.Is(err, shortlink.ErrNotFound):
			return nil, huma.Error404NotFound("shortlink not found")
		case errors.Is(err, shortlink.ErrExpired):
			return nil, huma.Error410Gone("shortlink expired")
		case errors.Is(err, shortlink.ErrGone):
			return nil, huma.Error410Gone("shortlink already used")
		default:
			h.logger.Error("failed to resolve shortlink",
				zap.String("token", req.Token),
				zap.Error(err),
			)

			return nil, huma.Error500InternalServerError("failed to resolve shortlink")
		}
	}

	resp := &ResolveResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = target

	return resp, nil
}
