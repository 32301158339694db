package viewmodels

// ErrorResponse response struct for an error
type ErrorResponse struct {
	Message   string `json:"message"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err error, message string) ErrorResponse {
	response := ErrorResponse{
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	return response
}
