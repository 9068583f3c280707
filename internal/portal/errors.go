package portal

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized marks a 401/403 from the portal. Callers that can
// usefully react (the login flow, the root command) check for it; views
// fold it into their inline error text.
var ErrUnauthorized = errors.New("portal: unauthorized")

// APIError is a non-2xx response that carried a JSON body. Message holds
// the server-provided string when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("portal: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("portal: unexpected status %d", e.Status)
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// UserMessage converts a portal error into the string shown to the user:
// the server's validation message verbatim when present, otherwise a
// generic fallback per failure class.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthorized) {
		return "Your session has expired. Run `courier login` to sign in again."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "The portal rejected the request. Please retry."
	}
	return "Unable to reach the portal. Check your connection and retry."
}
