// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package result provides a generic value-or-error container.
//
// A Result is either a success carrying a value or a failure carrying exactly
// one non-nil error. Services hand Results across the auth boundary so callers
// can inspect the outcome of a store round trip instead of relying on panics
// or sentinel values.
package result

import (
	"context"
	"fmt"

	"github.com/samber/oops"
)

// ErrNilFailure is the error carried by a failure built from a nil error.
var ErrNilFailure = oops.Code("RESULT_NIL_ERROR").Errorf("failure constructed without an error")

// Result holds either a value of type T or an error.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err returns a failed Result carrying err. A nil err is replaced with
// ErrNilFailure so a failure never lacks an error.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilFailure
	}
	return Result[T]{err: err}
}

// From converts an idiomatic (value, error) pair into a Result.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// Wrap runs op and captures its outcome. A panic inside op is recovered and
// turned into a failure.
func Wrap[T any](op func() (T, error)) (r Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			r = Err[T](normalizePanic(p))
		}
	}()
	return From(op())
}

// WrapContext is Wrap for operations that take a context.
func WrapContext[T any](ctx context.Context, op func(context.Context) (T, error)) Result[T] {
	return Wrap(func() (T, error) { return op(ctx) })
}

func normalizePanic(p any) error {
	if err, ok := p.(error); ok {
		return oops.Code("RESULT_PANIC").Wrap(err)
	}
	return oops.Code("RESULT_PANIC").Errorf("unknown error occurred: %v", p)
}

// IsOk reports whether r is a success.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the success value, or the zero value of T on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the failure error, or nil on success.
func (r Result[T]) Error() error {
	return r.err
}

// Get returns the value and error as an idiomatic pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Unwrap returns the success value and panics on failure. Use it only where a
// failure indicates a programming error.
func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic(fmt.Sprintf("called Unwrap on a failed result: %s", r.err.Error()))
	}
	return r.value
}

// UnwrapOr returns the success value, or def on failure.
func (r Result[T]) UnwrapOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// UnwrapOrElse returns the success value, or fn(err) on failure.
func (r Result[T]) UnwrapOrElse(fn func(error) T) T {
	if r.err != nil {
		return fn(r.err)
	}
	return r.value
}

// Map applies fn to a success value. Failures pass through and fn is not called.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(fn(r.value))
}

// FlatMap applies a Result-returning fn to a success value. Failures pass
// through and fn is not called.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return fn(r.value)
}

// First narrows a slice result to its head element.
//
// A failure stays a failure. A success with an empty slice becomes Ok(nil)
// rather than a failure, so callers treat an empty lookup as "not found".
func First[T any](r Result[[]T]) Result[*T] {
	if r.err != nil {
		return Err[*T](r.err)
	}
	if len(r.value) == 0 {
		return Ok[*T](nil)
	}
	return Ok(&r.value[0])
}
