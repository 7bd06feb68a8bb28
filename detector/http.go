package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-image-labeler/models"
)

const defaultHTTPTimeout = 30 * time.Second

type HTTPDetectorConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// HTTPDetector talks to a self-hosted label service over JSON.
//
//	POST {base}/api/labels  {"image": "<base64>", "max_labels": n, "min_confidence": c}
//	  -> {"labels": [{"name": "...", "confidence": 97.1}]}
//	GET  {base}/api/healthz -> 200
type HTTPDetector struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDetector creates a new instance of HTTPDetector
func NewHTTPDetector(config HTTPDetectorConfig) (*HTTPDetector, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("http detector requires a base_url")
	}

	timeout := defaultHTTPTimeout
	if config.TimeoutSeconds > 0 {
		timeout = time.Duration(config.TimeoutSeconds) * time.Second
	}

	return &HTTPDetector{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type httpLabelRequest struct {
	Image         string  `json:"image"`
	MaxLabels     int     `json:"max_labels"`
	MinConfidence float64 `json:"min_confidence"`
}

type httpLabelResponse struct {
	Labels []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"labels"`
}

// DetectLabels posts the image to the label service
func (c *HTTPDetector) DetectLabels(ctx context.Context, image []byte, opts Options) ([]models.Label, error) {
	url := fmt.Sprintf("%s/api/labels", c.baseURL)

	jsonData, err := json.Marshal(httpLabelRequest{
		Image:         base64.StdEncoding.EncodeToString(image),
		MaxLabels:     opts.MaxLabels,
		MinConfidence: opts.MinConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal label request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create label request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute label request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("label request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded httpLabelResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode label response: %w", err)
	}

	// The service is trusted to sort, but the limits are enforced here too.
	labels := make([]models.Label, 0, len(decoded.Labels))
	for _, l := range decoded.Labels {
		if l.Confidence < opts.MinConfidence {
			continue
		}
		labels = append(labels, models.Label{Name: l.Name, Confidence: l.Confidence})
		if opts.MaxLabels > 0 && len(labels) == opts.MaxLabels {
			break
		}
	}

	slog.Debug("Label service responded", "labels", len(labels))
	return labels, nil
}

// HealthCheck verifies the label service is available
func (c *HTTPDetector) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/healthz", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute health check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("health check failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	slog.Debug("Label service health check passed")
	return nil
}
