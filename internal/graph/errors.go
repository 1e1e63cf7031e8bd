package graph

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// APIError is a non-2xx response from Graph.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("graph API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("graph API error: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Throttled reports whether Graph asked the caller to slow down.
func (e *APIError) Throttled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

const maxErrorBody = 64 << 10

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Code == "" && apiErr.Message == "" && len(body) > 0 {
		apiErr.Message = string(body)
	}
	return apiErr
}
