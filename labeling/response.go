package labeling

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go-image-labeler/models"
)

const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderContentType  = "Content-Type"
)

// newHeaders returns a fresh header map so callers may mutate it.
func newHeaders(withContentType bool) map[string]string {
	headers := map[string]string{
		HeaderAllowOrigin:  "*",
		HeaderAllowHeaders: "*",
		HeaderAllowMethods: "*",
	}
	if withContentType {
		headers[HeaderContentType] = "application/json"
	}
	return headers
}

func preflightResponse() models.ResponseEnvelope {
	return models.ResponseEnvelope{
		StatusCode: http.StatusOK,
		Headers:    newHeaders(false),
		Body:       mustMarshal(models.MessageResponse{Message: "OK"}),
	}
}

func jsonResponse(status int, v any) models.ResponseEnvelope {
	body, err := marshal(v)
	if err != nil {
		// NaN or Inf confidences from a backend are not representable.
		return ErrorResponse(upstream(fmt.Errorf("failed to encode response: %w", err)))
	}
	return models.ResponseEnvelope{
		StatusCode: status,
		Headers:    newHeaders(true),
		Body:       body,
	}
}

// ErrorResponse renders err the way Handle does. Adapters use it when a
// request fails before it reaches the handler.
func ErrorResponse(err error) models.ResponseEnvelope {
	labelErr := classify(err)
	return models.ResponseEnvelope{
		StatusCode: labelErr.Kind.StatusCode(),
		Headers:    newHeaders(true),
		Body:       mustMarshal(models.ErrorResponse{Error: labelErr.Error()}),
	}
}

func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// mustMarshal is only used for types that always encode.
func mustMarshal(v any) string {
	body, err := marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return `{"error":"internal error"}`
	}
	return body
}
