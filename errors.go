package auth

import (
	"errors"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ErrorKind is the stable, machine readable code carried as the TextCode of
// every auth error. The values are part of the public HTTP contract and must
// not change.
type ErrorKind string

const (
	KindUserNotFound     ErrorKind = "USER_NOT_FOUND"
	KindUserInactive     ErrorKind = "USER_INACTIVE"
	KindInvalidPassword  ErrorKind = "INVALID_PASSWORD"
	KindInvalidToken     ErrorKind = "INVALID_TOKEN"
	KindUnauthenticated  ErrorKind = "UNAUTHENTICATED"
	KindForbidden        ErrorKind = "FORBIDDEN"
	KindBadRequest       ErrorKind = "BAD_REQUEST"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindMethodNotAllowed ErrorKind = "METHOD_NOT_ALLOWED"
	KindPayloadTooLarge  ErrorKind = "PAYLOAD_TOO_LARGE"
	KindTooManyRequests  ErrorKind = "TOO_MANY_REQUESTS"
	KindInternal         ErrorKind = "INTERNAL_SERVER_ERROR"
)

// Token failure reasons. They are logged server side only, clients always
// see INVALID_TOKEN / UNAUTHENTICATED.
const (
	ReasonMalformed     = "malformed"
	ReasonExpired       = "expired"
	ReasonBadSignature  = "bad_signature"
	ReasonInvalidClaims = "invalid_claims"
	ReasonInvalid       = "invalid"
	ReasonMissing       = "missing"
)

// MetadataKeyReason is the metadata entry holding the internal reason.
const MetadataKeyReason = "reason"

// DomainError is the rich error raised by the auth service and the
// authorization middleware. Kind travels as TextCode, the HTTP status as
// Code.
type DomainError = goerrors.Error

type kindSpec struct {
	status   int
	category goerrors.Category
}

// kindTable is the single source for status and category of every kind.
var kindTable = map[ErrorKind]kindSpec{
	KindUserNotFound:     {http.StatusNotFound, goerrors.CategoryNotFound},
	KindUserInactive:     {http.StatusForbidden, goerrors.CategoryAuthz},
	KindInvalidPassword:  {http.StatusUnauthorized, goerrors.CategoryAuth},
	KindInvalidToken:     {http.StatusUnauthorized, goerrors.CategoryAuth},
	KindUnauthenticated:  {http.StatusUnauthorized, goerrors.CategoryAuth},
	KindForbidden:        {http.StatusForbidden, goerrors.CategoryAuthz},
	KindBadRequest:       {http.StatusBadRequest, goerrors.CategoryBadInput},
	KindNotFound:         {http.StatusNotFound, goerrors.CategoryRouting},
	KindMethodNotAllowed: {http.StatusMethodNotAllowed, goerrors.CategoryMethodNotAllowed},
	KindPayloadTooLarge:  {http.StatusRequestEntityTooLarge, goerrors.CategoryBadInput},
	KindTooManyRequests:  {http.StatusTooManyRequests, goerrors.CategoryRateLimit},
	KindInternal:         {http.StatusInternalServerError, goerrors.CategoryInternal},
}

// NewError creates an error of the given kind. Category and status come
// from the kind table; unknown kinds get no status and are served as 500.
func NewError(kind ErrorKind, message string) *DomainError {
	spec, ok := kindTable[kind]
	if !ok {
		spec.category = goerrors.CategoryInternal
	}
	return goerrors.New(message, spec.category).
		WithCode(spec.status).
		WithTextCode(string(kind))
}

// WrapError creates an error of the given kind that keeps err as its
// source. Unlike goerrors.Wrap it never inherits the kind of err.
func WrapError(err error, kind ErrorKind, message string) *DomainError {
	out := NewError(kind, message)
	out.Source = err
	return out
}

// WithReason returns a copy of e carrying an internal reason.
func WithReason(e *DomainError, reason string) *DomainError {
	return derive(e).WithMetadata(map[string]any{MetadataKeyReason: reason})
}

// WithCause returns a copy of e wrapping err.
func WithCause(e *DomainError, err error) *DomainError {
	out := derive(e)
	out.Source = err
	return out
}

// derive copies e so sentinels are never mutated.
func derive(e *DomainError) *DomainError {
	out := e.Clone()
	out.Timestamp = time.Now()
	return out
}

// Sentinel errors, one per kind. They are templates: derive copies with
// WithReason and WithCause and compare with Is or KindOf.
var (
	ErrUserNotFound     = NewError(KindUserNotFound, "User not found")
	ErrUserInactive     = NewError(KindUserInactive, "User account is inactive")
	ErrInvalidPassword  = NewError(KindInvalidPassword, "Invalid password")
	ErrInvalidToken     = NewError(KindInvalidToken, "Invalid or expired token")
	ErrUnauthenticated  = NewError(KindUnauthenticated, "Authentication required")
	ErrForbidden        = NewError(KindForbidden, "Insufficient permissions")
	ErrBadRequest       = NewError(KindBadRequest, "Invalid request")
	ErrNotFound         = NewError(KindNotFound, "Resource not found")
	ErrMethodNotAllowed = NewError(KindMethodNotAllowed, "Method not allowed")
	ErrPayloadTooLarge  = NewError(KindPayloadTooLarge, "Request body too large")
	ErrTooManyRequests  = NewError(KindTooManyRequests, "Too many requests")
	ErrInternal         = NewError(KindInternal, "An unexpected server error occurred")
)

// ErrRecordNotFound is returned by UserStore implementations when no user
// matches the lookup.
var ErrRecordNotFound = errors.New("record not found")

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty")

// KindOf returns the kind of err, or KindInternal for anything that does
// not carry one.
func KindOf(err error) ErrorKind {
	var derr *DomainError
	if goerrors.As(err, &derr) && derr.TextCode != "" {
		return ErrorKind(derr.TextCode)
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind ErrorKind) bool {
	var derr *DomainError
	if !goerrors.As(err, &derr) {
		return false
	}
	return ErrorKind(derr.TextCode) == kind
}

// ReasonOf returns the internal reason attached to err, if any.
func ReasonOf(err error) string {
	var derr *DomainError
	if !goerrors.As(err, &derr) || derr.Metadata == nil {
		return ""
	}
	reason, _ := derr.Metadata[MetadataKeyReason].(string)
	return reason
}
