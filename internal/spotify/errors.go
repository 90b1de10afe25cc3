package spotify

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotimine/internal/shared"
)

// APIError is a non-success response from the Web API.
type APIError struct {
	Status  int
	Body    string
	Account string
	Err     error
}

func (e *APIError) Error() string {
	if errors.Is(e.Err, shared.ErrForbidden) {
		return fmt.Sprintf("%v (%d) for account %s: re-add the account with adduser: %s", e.Err, e.Status, e.Account, e.Body)
	}
	return fmt.Sprintf("%v (%d): %s", e.Err, e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ParseError names the field that could not be decoded.
type ParseError struct {
	Kind  ContentType
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%v: %s: field %q", shared.ErrParse, e.Kind, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrParse}
	}
	return []error{shared.ErrParse, e.Err}
}

var errMissing = errors.New("missing")
