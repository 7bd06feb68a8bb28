package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"go-image-labeler/detector"
)

const (
	DetectorRekognition  = "rekognition"
	DetectorGoogleVision = "google_vision"
	DetectorHTTP         = "http"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	DetectorType string `json:"detector_type"`
	MaxLabels    int    `json:"max_labels,omitempty"`
	// MinConfidence is a pointer so that an explicit 0 (no threshold) can
	// be told apart from "not set" (70).
	MinConfidence *float64 `json:"min_confidence,omitempty"`

	RekognitionConfig  detector.RekognitionConfig  `json:"rekognition_config,omitempty"`
	GoogleVisionConfig detector.GoogleVisionConfig `json:"google_vision_config,omitempty"`
	HTTPDetectorConfig detector.HTTPDetectorConfig `json:"http_detector_config,omitempty"`
}

func defaultConfig() Config {
	return Config{
		ServerConfig: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			MaxBodyBytes: defaultMaxBodyBytes,
		},
		LogLevel:      "info",
		LogFormat:     "text",
		DetectorType: DetectorRekognition,
		MaxLabels:    detector.DefaultMaxLabels,
	}
}

// loadConfig returns the defaults when no path is given.
func loadConfig(path string) (Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	return readConfigFile(path)
}

// readConfigFile overlays the file on top of the defaults.
func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	config := defaultConfig()
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// DetectorOptions resolves the configured label limits, filling in defaults.
func (c Config) DetectorOptions() detector.Options {
	opts := detector.DefaultOptions()
	if c.MaxLabels > 0 {
		opts.MaxLabels = c.MaxLabels
	}
	if c.MinConfidence != nil {
		opts.MinConfidence = *c.MinConfidence
	}
	return opts
}

func createDetector(ctx context.Context, config *Config) (detector.Detector, error) {
	if config.DetectorType == DetectorRekognition || config.DetectorType == "" {
		d, err := detector.NewRekognitionDetectorFromConfig(ctx, config.RekognitionConfig)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if config.DetectorType == DetectorGoogleVision {
		d, err := detector.NewGoogleVisionDetectorFromConfig(ctx, config.GoogleVisionConfig)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if config.DetectorType == DetectorHTTP {
		slog.Info("Using http label detector", "base_url", config.HTTPDetectorConfig.BaseURL)
		d, err := detector.NewHTTPDetector(config.HTTPDetectorConfig)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%v is not a valid detector type", config.DetectorType)
}
