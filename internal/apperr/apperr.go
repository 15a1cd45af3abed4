// Package apperr defines the error taxonomy shared by every service.
//
// Domain code returns *Error values (usually one of the sentinels below, optionally
// wrapped with fmt.Errorf) and the HTTP boundary maps their Kind to a status code.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAccessDenied
	KindAuthentication
	KindConflict
	KindUpstreamUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindAuthentication:
		return "authentication"
	case KindConflict:
		return "conflict"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "internal"
	}
}

// HTTPStatus returns the response status used for errors of this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same kind and code, so a sentinel
// still matches after Wrap attached a cause to it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// New creates an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap returns a copy of sentinel carrying cause.
func Wrap(sentinel *Error, cause error) *Error {
	cp := *sentinel
	cp.Err = cause
	return &cp
}

// Validation builds a field-level validation error.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message, Fields: fields}
}

// Upstream wraps a dependency failure such as a broker send.
func Upstream(cause error) *Error {
	return Wrap(ErrUpstreamUnavailable, cause)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

var (
	ErrNotAuthenticated   = New(KindAuthentication, "NOT_AUTHENTICATED", "authentication required")
	ErrInvalidCredentials = New(KindAuthentication, "INVALID_CREDENTIALS", "invalid username or password")
	ErrInvalidToken       = New(KindAuthentication, "INVALID_TOKEN", "invalid token")
	ErrTokenExpired       = New(KindAuthentication, "TOKEN_EXPIRED", "token expired")

	ErrAccessDenied           = New(KindAccessDenied, "ACCESS_DENIED", "access denied")
	ErrNoDepartmentMembership = New(KindAccessDenied, "NO_DEPARTMENT_MEMBERSHIP", "access denied: user is not assigned to any department")

	ErrUserNotFound       = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrDepartmentNotFound = New(KindNotFound, "DEPARTMENT_NOT_FOUND", "department not found")
	ErrCategoryNotFound   = New(KindNotFound, "CATEGORY_NOT_FOUND", "category not found")
	ErrAssignmentNotFound = New(KindNotFound, "ASSIGNMENT_NOT_FOUND", "department assignment not found")
	ErrDocumentNotFound   = New(KindNotFound, "DOCUMENT_NOT_FOUND", "document not found")

	ErrUserExists       = New(KindConflict, "USER_EXISTS", "username already exists")
	ErrDepartmentExists = New(KindConflict, "DEPARTMENT_EXISTS", "department name already exists")
	ErrCategoryExists   = New(KindConflict, "CATEGORY_EXISTS", "category name already exists")
	ErrDepartmentInUse  = New(KindConflict, "DEPARTMENT_IN_USE", "department still has documents")
	ErrCategoryInUse    = New(KindConflict, "CATEGORY_IN_USE", "category still has documents")

	ErrUpstreamUnavailable = New(KindUpstreamUnavailable, "UPSTREAM_UNAVAILABLE", "upstream unavailable")
)
