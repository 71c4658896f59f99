package ggg_client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized matches any 401 response. It is the normal state of a
	// visitor who has not signed in and is never logged.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork matches transport failures and unreadable responses
	ErrNetwork = errors.New("network error")
)

// NetworkErrorMessage is the user-facing message for transport failures
const NetworkErrorMessage = "Network error"

// ErrorKind classifies an APIError
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindApplication
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindApplication:
		return "application"
	case KindUnauthorized:
		return "unauthorized"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// APIError is the error variant of every Result
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // zero for network errors
	Message    string // safe to show to the user
	Err        error  // underlying cause, if any
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the package sentinels by kind
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

func NetworkError(cause error) *APIError {
	return &APIError{Kind: KindNetwork, Message: NetworkErrorMessage, Err: cause}
}
