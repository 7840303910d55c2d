// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patscope/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"run not found", errors.CodeRunNotFound, "run 7f3a not found"},
		{"invalid param", errors.CodeInvalidParam, "year range is reversed"},
		{"dataset query", errors.CodeDatasetQueryFailed, "keyword query failed"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeDBQueryError, "query failed")
	assert.Equal(t, "[STORE_002] query failed", ae.Error())

	withDetail := ae.WithDetail("table=tls212_citation")
	assert.Equal(t, "[STORE_002] query failed: table=tls212_citation", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeRunNotFound, "run missing")
	wrapped := errors.Wrap(inner, errors.CodeUnknown, "loading run")

	assert.Equal(t, errors.CodeRunNotFound, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrap_ChainTraversal(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("connection refused")
	mid := errors.Wrap(root, errors.CodeDBConnectionError, "failed to connect")
	outer := errors.Wrap(mid, errors.CodeDatasetQueryFailed, "keyword query failed")

	assert.ErrorIs(t, outer, root)

	var ae *errors.AppError
	require.True(t, stderrors.As(outer, &ae))
	assert.Equal(t, errors.CodeDatasetQueryFailed, ae.Code)
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeCacheError, "redis down")
	outer := errors.Wrap(inner, errors.CodeDatasetQueryFailed, "dataset query")

	assert.True(t, errors.IsCode(outer, errors.CodeCacheError))
	assert.True(t, errors.IsCode(outer, errors.CodeDatasetQueryFailed))
	assert.False(t, errors.IsCode(outer, errors.CodeGeoQueryFailed))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", errors.NotFound("no such thing"), true},
		{"run not found", errors.New(errors.CodeRunNotFound, "gone"), true},
		{"wrapped run not found", errors.Wrap(errors.New(errors.CodeRunNotFound, "gone"), errors.CodeInternal, "lookup"), true},
		{"internal", errors.Internal("boom"), false},
		{"plain error", fmt.Errorf("plain"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeGeoQueryFailed, errors.GetCode(errors.New(errors.CodeGeoQueryFailed, "join failed")))
}

func TestWithDetailOnNil(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(fmt.Errorf("y")))
}
