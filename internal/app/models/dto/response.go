package dto

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// APIResponse wraps an error detail for the central error handler
type APIResponse struct {
	Error *ErrorDetail `json:"error,omitempty"`
}
