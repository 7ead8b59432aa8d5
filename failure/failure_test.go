package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-frontdesk/failure"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind failure.Kind
	}{
		{"bad request", failure.BadRequestFromString("bad"), http.StatusBadRequest, failure.KindValidation},
		{"not found", failure.NotFound("booking not found"), http.StatusNotFound, failure.KindNotFound},
		{"unauthorized", failure.Unauthorized("not owner"), http.StatusForbidden, failure.KindUnauthorized},
		{"conflict", failure.Conflict("stale"), http.StatusConflict, failure.KindConflict},
		{"transaction", failure.TransactionFailed(errors.New("deadlock")), http.StatusInternalServerError, failure.KindTransactionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.kind, failure.GetKind(tt.err))
			assert.True(t, failure.Is(tt.err, tt.kind))
		})
	}
}

func TestNilInputs(t *testing.T) {
	assert.Nil(t, failure.BadRequest(nil))
	assert.Nil(t, failure.InternalError(nil))
	assert.Nil(t, failure.TransactionFailed(nil))
}

func TestGetCodeOnPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("boom")))
	assert.Equal(t, failure.KindInternal, failure.GetKind(errors.New("boom")))
}

func TestGetCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("update booking: %w", failure.Conflict("version mismatch"))
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBadRequestKeepsCause(t *testing.T) {
	sentinel := errors.New("invalid date")
	err := failure.BadRequest(fmt.Errorf("%w: 2024-13-01", sentinel))
	assert.ErrorIs(t, err, sentinel)
}

func TestTransactionFailedPassesFailuresThrough(t *testing.T) {
	nf := failure.NotFound("room 7 not found")
	err := failure.TransactionFailed(nf)
	assert.Same(t, nf, err)
}

func TestTransactionFailedRecordsStack(t *testing.T) {
	err := failure.TransactionFailed(errors.New("lock wait timeout"))
	require.Error(t, err)
	assert.Equal(t, "lock wait timeout", err.Error())
	assert.Contains(t, failure.StackTrace(err), "failure_test")
	assert.Empty(t, failure.StackTrace(failure.NotFound("x")))
}
