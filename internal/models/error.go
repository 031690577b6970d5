package models

// ErrorResponse is the JSON body returned on any failed API request. Status
// is a stable machine-readable category, Message is for humans.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewErrorResponse(status, message string) ErrorResponse {
	return ErrorResponse{Status: status, Message: message}
}
