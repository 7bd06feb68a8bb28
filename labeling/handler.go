// Package labeling turns an inbound label request into exactly one
// response envelope. Every failure, including panics, is converted into a
// JSON error body that still carries the CORS headers.
package labeling

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-image-labeler/detector"
	"go-image-labeler/images"
	"go-image-labeler/models"
)

// Handler is stateless apart from its injected detector and may be used
// from many goroutines at once.
type Handler struct {
	detector detector.Detector
	opts     detector.Options
}

const unknownFormat = "unknown"

// Option configures a Handler at construction time.
type Option func(*Handler)

// WithDetectorOptions overrides the default label limits (10 labels, 70%).
// A MaxLabels <= 0 keeps the default. MinConfidence is taken as given when
// it lies in [0,100], so 0 disables the threshold.
func WithDetectorOptions(opts detector.Options) Option {
	return func(h *Handler) {
		if opts.MaxLabels > 0 {
			h.opts.MaxLabels = opts.MaxLabels
		}
		if opts.MinConfidence >= 0 && opts.MinConfidence <= 100 {
			h.opts.MinConfidence = opts.MinConfidence
		}
	}
}

// NewHandler creates a Handler that sends images to d.
func NewHandler(d detector.Detector, options ...Option) *Handler {
	h := &Handler{
		detector: d,
		opts:     detector.DefaultOptions(),
	}
	for _, o := range options {
		o(h)
	}
	return h
}

// Handle processes one invocation.
func (h *Handler) Handle(ctx context.Context, req models.RequestEnvelope) (resp models.ResponseEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic while handling label request", "panic", r)
			resp = ErrorResponse(upstream(fmt.Errorf("internal error: %v", r)))
		}
	}()

	if strings.EqualFold(req.Method, http.MethodOptions) {
		slog.Debug("Answering CORS preflight")
		return preflightResponse()
	}

	slog.Debug("Received label request", "method", req.Method, "body_size", len(req.Body), "base64_body", req.IsBase64Encoded)

	labels, format, err := h.detect(ctx, req)
	if err != nil {
		labelErr := classify(err)
		if labelErr.Kind == ClientInputError {
			slog.Warn("Rejected label request", "kind", labelErr.Kind, "error", labelErr)
		} else {
			slog.Error("Label request failed", "kind", labelErr.Kind, "format", format, "error", labelErr)
		}
		return ErrorResponse(labelErr)
	}

	slog.Info("Labels detected", "count", len(labels), "format", format)
	return jsonResponse(http.StatusOK, models.LabelsResponse{Labels: labels})
}

// detect returns the labels together with the sniffed image format, which is
// "unknown" when the header is not recognised and empty before decoding.
func (h *Handler) detect(ctx context.Context, req models.RequestEnvelope) ([]models.Label, string, error) {
	body, err := decodeBody(req.Body, req.IsBase64Encoded)
	if err != nil {
		return nil, "", err
	}

	encoded, err := extractImage(body)
	if err != nil {
		return nil, "", err
	}

	image, err := decodeImage(encoded)
	if err != nil {
		return nil, "", err
	}

	format := unknownFormat
	if info, err := images.Describe(image); err == nil {
		format = info.Format
		slog.Debug("Decoded image", info.LogAttrs()...)
	} else {
		slog.Debug("Decoded image with unrecognised header", "size", len(image), "error", err)
	}

	labels, err := h.detector.DetectLabels(ctx, image, h.opts)
	if err != nil {
		return nil, format, upstream(err)
	}
	if labels == nil {
		labels = []models.Label{}
	}
	return labels, format, nil
}
