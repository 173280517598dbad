package insight

import "fmt"

// EndpointUnavailableError covers transport failures and non-2xx replies.
// These are retried.
type EndpointUnavailableError struct {
	StatusCode int
	Err        error
}

func (e *EndpointUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("insight endpoint unavailable: %v", e.Err)
	}
	return fmt.Sprintf("insight endpoint returned status %d", e.StatusCode)
}

func (e *EndpointUnavailableError) Unwrap() error {
	return e.Err
}

// MalformedReplyError means the endpoint answered but the reply could not
// be decoded into the expected shape. These are not retried.
type MalformedReplyError struct {
	Reason string
	Err    error
}

func (e *MalformedReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed insight reply: %s: %v", e.Reason, e.Err)
	}
	return "malformed insight reply: " + e.Reason
}

func (e *MalformedReplyError) Unwrap() error {
	return e.Err
}
