package failure

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a Failure independently of its HTTP status.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "notFound"
	KindUnauthorized      Kind = "unauthorized"
	KindConflict          Kind = "conflict"
	KindTransactionFailed Kind = "transactionFailed"
	KindInternal          Kind = "internal"
)

// Failure is an error carrying the HTTP status it should be surfaced with.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`

	cause error
}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	return e.cause
}

// BadRequest wraps err as a validation failure. A nil err yields nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: err.Error(), cause: err}
}

// BadRequestFromString returns a validation failure with the given message.
func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

// BadRequestf formats a validation failure message.
func BadRequestf(format string, args ...any) error {
	return BadRequestFromString(fmt.Sprintf(format, args...))
}

// NotFound returns a failure for a missing entity.
func NotFound(msg string) error {
	return &Failure{Code: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

// Unauthorized covers both a missing identity and an ownership mismatch.
func Unauthorized(msg string) error {
	return &Failure{Code: http.StatusForbidden, Kind: KindUnauthorized, Message: msg}
}

// Conflict returns a failure for stale versions and overlapping stays.
func Conflict(msg string) error {
	return &Failure{Code: http.StatusConflict, Kind: KindConflict, Message: msg}
}

// TransactionFailed wraps an unclassified error raised inside a unit of work.
// Errors that are already a *Failure pass through untouched.
func TransactionFailed(err error) error {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return err
	}
	return &Failure{
		Code:    http.StatusInternalServerError,
		Kind:    KindTransactionFailed,
		Message: err.Error(),
		cause:   pkgerrors.WithStack(err),
	}
}

// InternalError wraps err as a generic server failure.
func InternalError(err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Code: http.StatusInternalServerError, Kind: KindInternal, Message: err.Error(), cause: err}
}

// GetCode returns the HTTP status of err, 500 for anything that is not a Failure.
func GetCode(err error) int {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return http.StatusInternalServerError
}

// GetKind returns the Kind of err, KindInternal for anything that is not a Failure.
func GetKind(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindInternal
}

// Is reports whether err is a Failure of the given kind.
func Is(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// StackTrace renders the recorded stack of a TransactionFailed, or "" when none exists.
func StackTrace(err error) string {
	var f *Failure
	if !errors.As(err, &f) || f.cause == nil {
		return ""
	}
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	var st stackTracer
	if !errors.As(f.cause, &st) {
		return ""
	}
	return fmt.Sprintf("%+v", st.StackTrace())
}
