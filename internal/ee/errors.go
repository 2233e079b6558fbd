package ee

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is the platform's structured error payload.
type APIError struct {
	HTTPStatus int
	Code       int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: http status %d", e.HTTPStatus)
	}
	return fmt.Sprintf("api error %s (%d): %s", e.Status, e.Code, e.Message)
}

func decodeAPIError(httpStatus int, body []byte) *APIError {
	var wrapper struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error.Message != "" {
		return &APIError{
			HTTPStatus: httpStatus,
			Code:       wrapper.Error.Code,
			Status:     wrapper.Error.Status,
			Message:    wrapper.Error.Message,
		}
	}
	return &APIError{
		HTTPStatus: httpStatus,
		Message:    strings.TrimSpace(string(body)),
	}
}
