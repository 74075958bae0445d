// Package apperr definiert die Fehlerklassen der API und ihre HTTP-Statuscodes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind klassifiziert einen Fehler.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindUpstreamTimeout
	KindUpstreamError
)

// Status gibt den HTTP-Statuscode für die Fehlerklasse zurück.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error trägt eine lesbare Detailmeldung und optional die Ursache.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Detail
	}
	return e.Detail + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(detail string) error   { return &Error{Kind: KindNotFound, Detail: detail} }
func BadRequest(detail string) error { return &Error{Kind: KindBadRequest, Detail: detail} }

func UpstreamTimeout(detail string, cause error) error {
	return &Error{Kind: KindUpstreamTimeout, Detail: detail, Err: cause}
}

func UpstreamError(detail string, cause error) error {
	return &Error{Kind: KindUpstreamError, Detail: detail, Err: cause}
}

func Internal(detail string, cause error) error {
	return &Error{Kind: KindInternal, Detail: detail, Err: cause}
}

// KindOf liefert die Fehlerklasse; unbekannte Fehler gelten als intern.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is meldet, ob err (oder ein umhüllter Fehler) zur Klasse k gehört.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
