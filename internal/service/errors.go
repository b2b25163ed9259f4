// Package service holds the business rules that sit between the HTTP
// handlers and the repositories: the ticket purchase transaction, payment
// and registration validation, and the staff flight rules.
package service

import (
    "errors"

    "github.com/iliyamo/airline-reservation/internal/repository"
)

// FieldError is an input validation failure tied to one request field.
type FieldError struct {
    Field   string
    Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, msg string) *FieldError { return &FieldError{Field: field, Message: msg} }

var (
    ErrFlightNotFound = repository.ErrFlightNotFound
    ErrSoldOut        = errors.New("no seats available")
    ErrForbidden      = errors.New("forbidden")
    ErrConflict       = repository.ErrConflict
)

// Error kinds exposed to clients.
const (
    KindValidation = "validation"
    KindNotFound   = "not_found"
    KindSoldOut    = "sold_out"
    KindForbidden  = "forbidden"
    KindConflict   = "conflict"
    KindInternal   = "internal"
)

// Kind classifies err.  Anything unrecognised is internal.
func Kind(err error) string {
    var fe *FieldError
    switch {
    case err == nil:
        return ""
    case errors.As(err, &fe):
        return KindValidation
    case errors.Is(err, ErrSoldOut):
        return KindSoldOut
    case errors.Is(err, repository.ErrFlightNotFound),
        errors.Is(err, repository.ErrAirplaneNotFound),
        errors.Is(err, repository.ErrAirportNotFound),
        errors.Is(err, repository.ErrTicketNotFound):
        return KindNotFound
    case errors.Is(err, ErrForbidden):
        return KindForbidden
    case errors.Is(err, repository.ErrConflict),
        errors.Is(err, repository.ErrEmailExists),
        errors.Is(err, repository.ErrUsernameExists):
        return KindConflict
    }
    return KindInternal
}

// Field returns the offending field of a validation error, if any.
func Field(err error) string {
    var fe *FieldError
    if errors.As(err, &fe) {
        return fe.Field
    }
    return ""
}
