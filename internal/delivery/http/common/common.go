package http_common

// ErrorResponse is the structured error surfaced to callers. Internal
// failures are reported with a generic message, never internal state.
type ErrorResponse struct {
	Error string `json:"error"`
}

func Error(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
