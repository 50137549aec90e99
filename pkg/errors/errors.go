package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// Kind classifies a domain failure so callers and the HTTP layer can react
// without string matching.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindLedgerUnavailable Kind = "ledger_unavailable"
)

type DomainError struct {
	Kind    Kind
	Entity  string
	Field   string
	From    string
	To      string
	Message string
}

func NewInvalidInput(msg string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidInput,
		Message: msg,
	}
}

func NewInvalidInputf(format string, args ...any) *DomainError {
	return NewInvalidInput(fmt.Sprintf(format, args...))
}

func NewNotFound(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %s does not exist", entity, id),
	}
}

func NewConflict(msg string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Message: msg,
	}
}

func NewInvalidTransition(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidTransition,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
	}
}

func NewUnauthorized(msg string) *DomainError {
	return &DomainError{
		Kind:    KindUnauthorized,
		Message: msg,
	}
}

func NewLedgerUnavailable(msg string) *DomainError {
	return &DomainError{
		Kind:    KindLedgerUnavailable,
		Message: msg,
	}
}

func (e *DomainError) Error() string {
	if e.Entity != "" && e.Kind != KindNotFound {
		return fmt.Sprintf("%s: %s", e.Entity, e.Message)
	}
	return e.Message
}

func (e *DomainError) AddEntity(entity string) *DomainError {
	e.Entity = entity
	return e
}

func (e *DomainError) AddField(field string) *DomainError {
	e.Field = field
	return e
}

func (e *DomainError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(statusFor(e.Kind), e.Error()).
		AddMetaValue("kind", string(e.Kind)).
		AddMetaValue("entity", e.Entity).
		AddMetaValue("field", e.Field)
}

func statusFor(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusForbidden
	case KindLedgerUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AsDomainError unwraps err to a *DomainError if one is anywhere in the
// chain.
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if stderrors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	domainErr, ok := AsDomainError(err)
	return ok && domainErr.Kind == kind
}

func IsInvalidInput(err error) bool {
	return IsKind(err, KindInvalidInput)
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

func IsConflict(err error) bool {
	return IsKind(err, KindConflict)
}

func IsInvalidTransition(err error) bool {
	return IsKind(err, KindInvalidTransition)
}

func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

func IsLedgerUnavailable(err error) bool {
	return IsKind(err, KindLedgerUnavailable)
}
