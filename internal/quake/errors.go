package quake

import "fmt"

// Feed fetch failures fall into three kinds, all classified at the client
// boundary. The controller only surfaces the message; callers that care
// about the kind can use errors.As.

// NetworkError means the request could not be sent or no response arrived.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("feed unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means a response arrived with a non-success status code.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("feed returned status %d", e.Status)
}

// ParseError means the response body was not in the expected schema.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed feed response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
