package apperror

import (
	"errors"
	"fmt"
)

// Kind groups errors by how callers are expected to react to them.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindStateConflict Kind = "state_conflict"
	KindReferential   Kind = "referential"
	KindBusinessRule  Kind = "business_rule"
	KindForbidden     Kind = "forbidden"
	KindDependency    Kind = "dependency"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so a wrapped copy still satisfies errors.Is against the
// sentinel it was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(kind Kind, code, message string, httpStatus int) *Error {
	return &Error{Kind: kind, Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, kind Kind, code, message string, httpStatus int) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
