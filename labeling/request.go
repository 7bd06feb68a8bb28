package labeling

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// decodeBody undoes the API Gateway base64 wrapping, if any.
func decodeBody(body string, isBase64 bool) (string, error) {
	if !isBase64 {
		return body, nil
	}
	b, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", malformed(fmt.Errorf("failed to decode base64 request body: %w", err))
	}
	return string(b), nil
}

// extractImage returns the raw value of the "image" field. Falsy values
// (null, false, 0, "", [], {}) count as missing.
func extractImage(body string) (string, error) {
	if body == "" {
		body = "{}"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return "", malformed(err)
	}
	if fields == nil {
		return "", malformed(errors.New("request body must be a JSON object"))
	}

	raw, ok := fields["image"]
	if !ok {
		return "", errNoImage
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", malformed(err)
	}
	if !truthy(value) {
		return "", errNoImage
	}

	image, ok := value.(string)
	if !ok {
		return "", malformed(fmt.Errorf("'image' field must be a string, got %s", jsonType(value)))
	}
	return image, nil
}

// stripDataURL drops everything up to and including the first comma, so
// "data:image/png;base64,QUJD" becomes "QUJD".
func stripDataURL(s string) string {
	if _, payload, found := strings.Cut(s, ","); found {
		return payload
	}
	return s
}

func decodeImage(s string) ([]byte, error) {
	payload := strings.TrimSpace(stripDataURL(s))
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, malformed(fmt.Errorf("invalid base64 image data: %w", err))
	}
	return b, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
