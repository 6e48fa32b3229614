// Package apperrors defines the error taxonomy shared by the store,
// session and transport layers. Handlers map these to HTTP statuses or
// websocket error frames with errors.Is.
package apperrors

import "errors"

var (
	// ErrNotAuthenticated covers missing/invalid credentials and
	// operations attempted on a connection that never joined.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is an ownership violation: the verified identity is
	// not the original sender of the targeted message.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the targeted message id does not exist. On
	// delete this is retry-safe and callers may treat it as success.
	ErrNotFound = errors.New("message not found")

	// ErrStoreUnavailable is a transient backing-store fault. Edits and
	// deletes may be retried as-is; a retried append can duplicate the
	// message, so senders must be told the outcome is ambiguous.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMalformed covers empty text, missing receiver and other shape
	// violations caught before the store is touched.
	ErrMalformed = errors.New("malformed request")
)
