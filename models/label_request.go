package models

// RequestEnvelope is the transport independent view of one invocation.
// An empty Body is treated the same as a missing one.
type RequestEnvelope struct {
	Method string
	Body   string
	// IsBase64Encoded is set by API Gateway when it passed the body through
	// as base64 instead of text.
	IsBase64Encoded bool
}
