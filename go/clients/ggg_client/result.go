package ggg_client

// Result holds exactly one of a value or an error. The zero Result is not
// valid; results are only built by OK and Fail.
type Result[T any] struct {
	data T
	err  *APIError
}

func OK[T any](data T) Result[T] {
	return Result[T]{data: data}
}

func Fail[T any](err *APIError) Result[T] {
	if err == nil {
		err = &APIError{Kind: KindApplication, Message: "unknown error"}
	}
	return Result[T]{err: err}
}

// Ok reports whether the result carries data
func (r Result[T]) Ok() bool {
	return r.err == nil
}

// Data returns the value, or the zero value when the result is an error
func (r Result[T]) Data() T {
	return r.data
}

// Err returns the error variant, or nil
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// APIError returns the typed error variant, or nil
func (r Result[T]) APIError() *APIError {
	return r.err
}

// Unwrap converts the result to the usual Go pair
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.data, nil
}
