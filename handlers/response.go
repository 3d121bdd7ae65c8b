package handlers

import "fmt"

//ErrorResponse is a dto for sending error response
type ErrorResponse struct {
	Message string `json:"message"`
}

func errorResponse(msg string, err error) *ErrorResponse {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}

	return &ErrorResponse{Message: msg}
}
