// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package result_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/pkg/errutil"
	"github.com/authcore/authcore/pkg/result"
)

var errBoom = errors.New("boom")

func TestOkAndErr(t *testing.T) {
	t.Run("ok carries value and no error", func(t *testing.T) {
		r := result.Ok(42)
		assert.True(t, r.IsOk())
		assert.Equal(t, 42, r.Value())
		assert.NoError(t, r.Error())
	})

	t.Run("err carries error and zero value", func(t *testing.T) {
		r := result.Err[int](errBoom)
		assert.False(t, r.IsOk())
		assert.Equal(t, 0, r.Value())
		assert.ErrorIs(t, r.Error(), errBoom)
	})

	t.Run("err with nil error still fails", func(t *testing.T) {
		r := result.Err[int](nil)
		assert.False(t, r.IsOk())
		assert.ErrorIs(t, r.Error(), result.ErrNilFailure)
	})

	t.Run("from maps error pairs", func(t *testing.T) {
		assert.True(t, result.From("x", nil).IsOk())
		assert.False(t, result.From("x", errBoom).IsOk())
	})
}

func TestWrap(t *testing.T) {
	t.Run("captures value", func(t *testing.T) {
		r := result.Wrap(func() (string, error) { return "hello", nil })
		v, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("captures returned error", func(t *testing.T) {
		r := result.Wrap(func() (string, error) { return "", errBoom })
		assert.ErrorIs(t, r.Error(), errBoom)
	})

	t.Run("recovers error panic", func(t *testing.T) {
		r := result.Wrap(func() (int, error) { panic(errBoom) })
		require.False(t, r.IsOk())
		assert.ErrorIs(t, r.Error(), errBoom)
		errutil.AssertErrorCode(t, r.Error(), "RESULT_PANIC")
	})

	t.Run("recovers non-error panic", func(t *testing.T) {
		r := result.Wrap(func() (int, error) { panic("kaboom") })
		require.False(t, r.IsOk())
		assert.Contains(t, r.Error().Error(), "unknown error occurred: kaboom")
	})

	t.Run("wrap context passes context", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		r := result.WrapContext(ctx, func(ctx context.Context) (string, error) {
			s, _ := ctx.Value(key{}).(string)
			return s, nil
		})
		assert.Equal(t, "v", r.Unwrap())
	})
}

func TestMap(t *testing.T) {
	t.Run("applies fn to success", func(t *testing.T) {
		r := result.Map(result.Ok(7), strconv.Itoa)
		assert.Equal(t, "7", r.Unwrap())
	})

	t.Run("never calls fn on failure", func(t *testing.T) {
		called := false
		r := result.Map(result.Err[int](errBoom), func(int) string {
			called = true
			return ""
		})
		assert.False(t, called)
		assert.ErrorIs(t, r.Error(), errBoom)
	})
}

func TestFlatMap(t *testing.T) {
	parse := func(s string) result.Result[int] {
		return result.Wrap(func() (int, error) { return strconv.Atoi(s) })
	}

	t.Run("flattens nested success", func(t *testing.T) {
		r := result.FlatMap(result.Ok("12"), parse)
		assert.Equal(t, 12, r.Unwrap())
	})

	t.Run("propagates inner failure", func(t *testing.T) {
		r := result.FlatMap(result.Ok("nope"), parse)
		assert.False(t, r.IsOk())
	})

	t.Run("never calls fn on failure", func(t *testing.T) {
		called := false
		r := result.FlatMap(result.Err[string](errBoom), func(string) result.Result[int] {
			called = true
			return result.Ok(1)
		})
		assert.False(t, called)
		assert.ErrorIs(t, r.Error(), errBoom)
	})
}

func TestUnwrap(t *testing.T) {
	t.Run("returns value on success", func(t *testing.T) {
		assert.Equal(t, "v", result.Ok("v").Unwrap())
	})

	t.Run("panics with message on failure", func(t *testing.T) {
		assert.PanicsWithValue(t, "called Unwrap on a failed result: boom", func() {
			result.Err[string](errBoom).Unwrap()
		})
	})
}

func TestUnwrapOr(t *testing.T) {
	assert.Equal(t, 5, result.Ok(5).UnwrapOr(9))
	assert.Equal(t, 9, result.Err[int](errBoom).UnwrapOr(9))

	got := result.Err[string](errBoom).UnwrapOrElse(func(err error) string {
		return "recovered: " + err.Error()
	})
	assert.Equal(t, "recovered: boom", got)
	assert.Equal(t, "ok", result.Ok("ok").UnwrapOrElse(func(error) string { return "bad" }))
}

func TestFirst(t *testing.T) {
	t.Run("returns head of non-empty slice", func(t *testing.T) {
		r := result.First(result.Ok([]string{"a", "b"}))
		require.True(t, r.IsOk())
		require.NotNil(t, r.Value())
		assert.Equal(t, "a", *r.Value())
	})

	t.Run("empty slice stays a success", func(t *testing.T) {
		r := result.First(result.Ok([]string{}))
		assert.True(t, r.IsOk())
		assert.Nil(t, r.Value())
	})

	t.Run("nil slice stays a success", func(t *testing.T) {
		r := result.First(result.Ok[[]int](nil))
		assert.True(t, r.IsOk())
		assert.Nil(t, r.Value())
	})

	t.Run("failure passes through", func(t *testing.T) {
		r := result.First(result.Err[[]int](errBoom))
		assert.ErrorIs(t, r.Error(), errBoom)
	})
}
