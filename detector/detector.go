// Package detector holds the label detection backends. Each backend wraps
// one remote image-labeling service and returns labels in the order the
// service reported them, with confidences expressed as percentages.
package detector

import (
	"context"

	"go-image-labeler/models"
)

const (
	DefaultMaxLabels     = 10
	DefaultMinConfidence = 70.0
)

// Options bounds a single detection call.
type Options struct {
	MaxLabels     int
	MinConfidence float64 // percentage, 0-100
}

// DefaultOptions returns the limits used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxLabels:     DefaultMaxLabels,
		MinConfidence: DefaultMinConfidence,
	}
}

// Detector is the label detection capability used by the request handler.
// Implementations should be safe for concurrent use.
type Detector interface {
	// DetectLabels sends the raw image bytes to the backend and returns
	// at most opts.MaxLabels labels with confidence >= opts.MinConfidence.
	DetectLabels(ctx context.Context, image []byte, opts Options) ([]models.Label, error)
}

// HealthChecker is implemented by backends that can report availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
