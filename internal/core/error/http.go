package errx

import (
	"fmt"
	"net/http"
)

// WrapHTTP maps a non-2xx response from the diagnosis service to the unified
// AppError type. The body snippet is kept short so it stays safe to surface.
func WrapHTTP(status int, snippet string) *AppError {
	msg := ServiceErrorMessage
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		msg = "diagnosis service rejected credentials"
	case http.StatusNotFound:
		msg = "diagnosis service endpoint not found"
	case http.StatusTooManyRequests:
		msg = "diagnosis service rate limited the request"
	}
	return New(fmt.Errorf("status %d: %s", status, snippet), status, msg)
}
