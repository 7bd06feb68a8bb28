package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-image-labeler/detector"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, DetectorRekognition, config.DetectorType)
	require.Equal(t, detector.DefaultOptions(), config.DetectorOptions())
	require.Equal(t, 8080, config.ServerConfig.Port)
	require.Equal(t, defaultMaxBodyBytes, config.ServerConfig.MaxBodyBytes)
}

func TestReadConfigFile_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"server_config": {"host": "127.0.0.1", "port": 9090},
		"log_level": "debug",
		"detector_type": "http",
		"min_confidence": 80,
		"http_detector_config": {"base_url": "http://labels.internal", "timeout_seconds": 3}
	}`)

	config, err := readConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", config.ServerConfig.Host)
	require.Equal(t, 9090, config.ServerConfig.Port)
	require.Equal(t, defaultMaxBodyBytes, config.ServerConfig.MaxBodyBytes)
	require.Equal(t, "debug", config.LogLevel)
	require.Equal(t, "text", config.LogFormat)
	require.Equal(t, DetectorHTTP, config.DetectorType)
	require.Equal(t, detector.Options{MaxLabels: 10, MinConfidence: 80}, config.DetectorOptions())
	require.Equal(t, "http://labels.internal", config.HTTPDetectorConfig.BaseURL)
	require.Equal(t, 3, config.HTTPDetectorConfig.TimeoutSeconds)
}

func TestReadConfigFile_Missing(t *testing.T) {
	_, err := readConfigFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestReadConfigFile_Invalid(t *testing.T) {
	_, err := readConfigFile(writeConfig(t, `{"detector_type":`))
	require.ErrorContains(t, err, "failed to parse config")
}

func TestCreateDetector_HTTP(t *testing.T) {
	config := defaultConfig()
	config.DetectorType = DetectorHTTP
	config.HTTPDetectorConfig = detector.HTTPDetectorConfig{BaseURL: "http://localhost:1234"}

	d, err := createDetector(context.Background(), &config)
	require.NoError(t, err)
	require.IsType(t, &detector.HTTPDetector{}, d)
}

func TestCreateDetector_HTTPWithoutURL(t *testing.T) {
	config := defaultConfig()
	config.DetectorType = DetectorHTTP

	d, err := createDetector(context.Background(), &config)
	require.Error(t, err)
	require.Nil(t, d)
}

func TestCreateDetector_Rekognition(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	config := defaultConfig()

	d, err := createDetector(context.Background(), &config)
	require.NoError(t, err)
	require.IsType(t, &detector.RekognitionDetector{}, d)
}

func TestCreateDetector_Unknown(t *testing.T) {
	config := defaultConfig()
	config.DetectorType = "clarifai"

	d, err := createDetector(context.Background(), &config)
	require.Nil(t, d)
	require.ErrorContains(t, err, "clarifai is not a valid detector type")
}

func TestReadConfigFile_ZeroMinConfidence(t *testing.T) {
	config, err := readConfigFile(writeConfig(t, `{"min_confidence": 0, "max_labels": 25}`))
	require.NoError(t, err)
	require.NotNil(t, config.MinConfidence)
	require.Equal(t, detector.Options{MaxLabels: 25, MinConfidence: 0}, config.DetectorOptions())
}

func TestReadConfigFile_OmittedMinConfidenceUsesDefault(t *testing.T) {
	config, err := readConfigFile(writeConfig(t, `{"max_labels": 5}`))
	require.NoError(t, err)
	require.Nil(t, config.MinConfidence)
	require.Equal(t, detector.Options{MaxLabels: 5, MinConfidence: 70}, config.DetectorOptions())
}
