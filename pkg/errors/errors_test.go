package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		code   string
		status int
		detail string
		value  string
	}{
		{"validation", Validation("columns", "at least one column is required"), "VALIDATION_ERROR", http.StatusBadRequest, "field", "columns"},
		{"not found", NotFound("link"), "NOT_FOUND", http.StatusNotFound, "resource", "link"},
		{"permission", PermissionDenied("folder"), "FORBIDDEN", http.StatusForbidden, "resource", "folder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.status, ToHTTPStatus(tt.err))
			assert.Equal(t, tt.value, tt.err.Details[tt.detail])
		})
	}
}

func TestSentinelsAreNotMutated(t *testing.T) {
	_ = ErrNotFound.WithDetail("resource", "domain")
	assert.Empty(t, ErrNotFound.Details)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("domain"))

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsForbidden(err))
}

func TestRetryable(t *testing.T) {
	cause := stderrors.New("connection refused")

	assert.True(t, Wrap(cause, ErrDataSource).IsRetryable())
	assert.True(t, ErrInternal.IsRetryable())
	assert.True(t, Validation("event", "bad").IsFatal())
	assert.True(t, ErrInternal.AsFatal().IsFatal())
	assert.Nil(t, Wrap(nil, ErrDataSource))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(Validation("interval", "unknown interval"))
	assert.Equal(t, "unknown interval", resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
	assert.Equal(t, map[string]interface{}{"field": "interval"}, resp.Details)

	resp = ToErrorResponse(stderrors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode)
	assert.Equal(t, "internal server error", resp.Error)
	assert.Nil(t, resp.Details)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("nil map write")
	require.Error(t, err)
	assert.Equal(t, ErrInternal.Code, Code(err))
	assert.NotEmpty(t, StackTrace(err))

	resp := ToErrorResponse(err)
	assert.NotContains(t, resp.Details, "stack_trace")
	assert.Equal(t, true, resp.Details["panic"])

	assert.Empty(t, StackTrace(stderrors.New("plain")))
}
