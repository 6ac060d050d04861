package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
)

const DefaultRemoteMessage = "cart service unavailable"

type InvalidItemError struct {
	ItemID string
	Field  string
	Reason string
}

func (e *InvalidItemError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid item: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid item %s: %s: %s", e.ItemID, e.Field, e.Reason)
}

// RemoteError is any failure surfaced by the cart backend. StatusCode is 0 for
// transport failures.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultRemoteMessage
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("cart backend: %s", msg)
	}
	return fmt.Sprintf("cart backend: %d: %s", e.StatusCode, msg)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// AuthExpiredError is a RemoteError caused by a 401/403 response.
type AuthExpiredError struct {
	*RemoteError
}

func (e *AuthExpiredError) Error() string {
	return "session expired: " + e.RemoteError.Error()
}

func (e *AuthExpiredError) Unwrap() error {
	return e.RemoteError
}

func IsAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var authErr *AuthExpiredError
	if errors.As(err, &authErr) {
		return "Your session has expired. Please log in again."
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Message != "" {
			return remoteErr.Message
		}
		return DefaultRemoteMessage
	}

	return err.Error()
}
