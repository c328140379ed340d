package auth

import "errors"

// ErrorKind classifies login failures.
type ErrorKind int

const (
	// KindNetwork: the provider could not be reached.
	KindNetwork ErrorKind = iota + 1
	// KindProtocol: the provider answered with an unexpected shape.
	KindProtocol
	// KindProvider: the provider answered with an explicit error code.
	KindProvider
	// KindTimeout: the poll attempt cap was reached.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindProtocol:
		return "protocol"
	case KindProvider:
		return "provider"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against *Error.
var (
	ErrNetwork  = errors.New("network error")
	ErrProtocol = errors.New("protocol error")
	ErrProvider = errors.New("provider error")
	ErrTimeout  = errors.New("login timed out")
)

// Error is returned by DeviceClient. Message is user facing and never
// contains the device code or a token.
type Error struct {
	Kind    ErrorKind
	Code    string // provider error code, set for KindProvider
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrProvider:
		return e.Kind == KindProvider
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

func networkError(msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: msg + ": " + err.Error(), Err: err}
}

func protocolError(msg string, err error) *Error {
	return &Error{Kind: KindProtocol, Message: msg + ": " + err.Error(), Err: err}
}

func providerError(code, msg string) *Error {
	return &Error{Kind: KindProvider, Code: code, Message: msg}
}
