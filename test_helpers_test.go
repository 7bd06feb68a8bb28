package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"go-image-labeler/detector"
	"go-image-labeler/models"
)

func doRequest[T any](t *testing.T, method, url string, body []byte) (*http.Response, []byte, *T) {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var v T
	_ = json.Unmarshal(respBody, &v)

	return resp, respBody, &v
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

func mustCORS(t *testing.T, header http.Header) {
	t.Helper()
	require.Equal(t, "*", header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "*", header.Get("Access-Control-Allow-Headers"))
	require.Equal(t, "*", header.Get("Access-Control-Allow-Methods"))
}

// test doubles

type fakeDetector struct {
	mu     sync.Mutex
	labels []models.Label
	err    error
	calls  int
	image  []byte
}

func (f *fakeDetector) DetectLabels(_ context.Context, image []byte, _ detector.Options) ([]models.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.image = image
	return f.labels, f.err
}

type fakeCheckingDetector struct {
	fakeDetector
	healthErr error
}

func (f *fakeCheckingDetector) HealthCheck(context.Context) error {
	return f.healthErr
}
