// Package errors defines the error types surfaced by the Mastodon API client.
//
// Every failure reported by the client is one of four variants:
// IllegalArgumentError for caller misuse, NetworkError for transport
// failures, APIError for erroneous or unparseable server responses, and
// RatelimitError when the throttle surfaces under the "throw" policy.
package errors

import "fmt"

// IllegalArgumentError indicates the caller supplied invalid input, for
// example a client ID without a secret, an undeterminable media mime type,
// or a failed login. The underlying cause (if any) is reachable via Unwrap
// but deliberately kept out of the message for login failures.
type IllegalArgumentError struct {
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *IllegalArgumentError) Error() string {
	return fmt.Sprintf("illegal argument: %s", e.Message)
}

func (e *IllegalArgumentError) Unwrap() error {
	return e.Err
}

// NetworkError indicates the HTTP round trip itself could not complete
// (connection, DNS or timeout class failures). It is never retried.
type NetworkError struct {
	// Err contains the underlying transport error
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return "network error: could not complete request"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError indicates the server returned a structurally valid but
// erroneous response, or a body that could not be decoded as JSON.
type APIError struct {
	// StatusCode is the HTTP status code, if one was received
	StatusCode int
	// Message is the classification message for the failure
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s", e.Message)
}

// RatelimitError indicates the server throttled the request and the
// session's rate-limit policy is "throw". Under "wait" and "pace" the
// throttle is resolved internally by retrying and never surfaces.
type RatelimitError struct {
	// Message contains the detailed error message
	Message string
}

func (e *RatelimitError) Error() string {
	return fmt.Sprintf("rate limit error: %s", e.Message)
}
