package dispatch

import (
	"errors"
	"fmt"

	"github.com/roach88/navegante/internal/model"
)

// Code categorizes dispatcher failures.
type Code string

const (
	// CodeValidation indicates arguments that break an entity rule or
	// reference a missing section/product.
	CodeValidation Code = "VALIDATION"

	// CodeInUse indicates a delete blocked by order line references.
	CodeInUse Code = "IN_USE"

	// CodeUnknownOperation indicates a wire name outside the catalog.
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"

	// CodeBadRequest indicates arguments that could not be decoded.
	CodeBadRequest Code = "BAD_REQUEST"

	// CodeStore indicates a storage or I/O failure.
	CodeStore Code = "STORE"

	// CodeRemote indicates a failure of the remote catalog source.
	CodeRemote Code = "REMOTE"

	// CodeInternal indicates a panic recovered while serving a request.
	CodeInternal Code = "INTERNAL"
)

// Error is the failure type returned by every operation.
type Error struct {
	Code    Code
	Op      Op
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the Code of err. Errors that are not *Error map to
// CodeValidation when they wrap a model.ValidationError and CodeStore otherwise.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	if model.IsValidationError(err) {
		return CodeValidation
	}
	return CodeStore
}

// IsInUse reports whether err is a delete blocked by order references.
func IsInUse(err error) bool {
	return CodeOf(err) == CodeInUse
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

func invalid(op Op, err error) *Error {
	return &Error{Code: CodeValidation, Op: op, Message: "invalid arguments", Err: err}
}

func invalidf(op Op, field, format string, args ...any) *Error {
	return invalid(op, &model.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func storeFailure(op Op, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Code: CodeStore, Op: op, Message: "store failure", Err: err}
}

func inUse(op Op, format string, args ...any) *Error {
	return &Error{Code: CodeInUse, Op: op, Message: fmt.Sprintf(format, args...)}
}
