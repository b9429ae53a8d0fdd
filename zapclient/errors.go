package zapclient

import (
	"fmt"

	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// ConnectionError is returned for local failures that carry no wire error
// code: a failed frame write, a hello that cannot be encoded, or a
// response that cannot be decoded. Dial failures and calls made while not
// connected are reported as a *ProtocolError with code notConnected.
type ConnectionError struct {
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

func newConnectionError(message string, cause error) *ConnectionError {
	return &ConnectionError{Message: message, Cause: cause}
}

// ProtocolError wraps a structured ZapError returned by the endpoint (or
// synthesized locally, e.g. on a request timeout).
type ProtocolError struct {
	Err *zaptypes.ZapError
}

func (e *ProtocolError) Error() string {
	return e.Err.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func newProtocolError(code zaptypes.ErrorCode, message string) *ProtocolError {
	return &ProtocolError{Err: &zaptypes.ZapError{Code: code, Message: message}}
}
