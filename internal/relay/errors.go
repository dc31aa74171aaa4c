package relay

import (
	"fmt"
)

// TransportError reports that a request never produced a response:
// the network was unreachable, the connection dropped or the context ended.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that could not be decoded
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RequestRejected reports a non-2xx status
type RequestRejected struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestRejected) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}
