package models

// Label is a single detection as returned to clients. The capitalised
// JSON keys are part of the public contract.
type Label struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"` // percentage, 0-100
}

type ResponseEnvelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type LabelsResponse struct {
	Labels []Label `json:"labels"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
