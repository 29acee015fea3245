package moltin

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a structured error returned by the commerce API.
// Status carries the HTTP status code which drives recovery decisions
// upstream (409 duplicate customer, 422 invalid email).
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("moltin: %d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("moltin: %d %s", e.Status, e.Title)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsConflict reports whether err is a 409 duplicate-resource error.
func IsConflict(err error) bool {
	return IsStatus(err, http.StatusConflict)
}

// IsValidation reports whether err is a 422 validation error.
func IsValidation(err error) bool {
	return IsStatus(err, http.StatusUnprocessableEntity)
}
