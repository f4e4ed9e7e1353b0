package wordpress

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable wraps transport failures: WordPress could not be reached or
// answered with something that is not JSON.
var ErrUnavailable = errors.New("wordpress unavailable")

// APIError is a non-2xx answer from the custom/v1 namespace.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Field      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress api error (%d): %s", e.StatusCode, e.Message)
}

// IsClientError reports whether WordPress rejected the request itself.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}
