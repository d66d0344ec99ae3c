package validation

import (
	"errors"
	"strings"
)

// Kinds of field errors. A *Error matches each kind it contains through
// errors.Is.
var (
	ErrPresence    = errors.New("can't be blank")
	ErrRange       = errors.New("is outside the allowed range")
	ErrInclusion   = errors.New("is not included in the list")
	ErrInvalidRoom = errors.New("is not a valid room")
	ErrDuplicate   = errors.New("has already been taken")
	ErrInvalid     = errors.New("is invalid")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (fe FieldError) Error() string {
	return fe.Field + " " + fe.Message
}

func (fe FieldError) Unwrap() error { return fe.Err }

// Error collects every field error found while validating one record.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, fe := range e.Fields {
		errs = append(errs, fe)
	}
	return errs
}

// Add attaches kind to field. msg defaults to the kind's text.
func (e *Error) Add(field string, kind error, msg ...string) {
	text := kind.Error()
	if len(msg) > 0 && msg[0] != "" {
		text = msg[0]
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Message: text, Err: kind})
}

// On returns the messages attached to field.
func (e *Error) On(field string) []string {
	var msgs []string
	for _, fe := range e.Fields {
		if fe.Field == field {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

// Has reports whether field carries an error of the given kind.
func (e *Error) Has(field string, kind error) bool {
	for _, fe := range e.Fields {
		if fe.Field == field && errors.Is(fe.Err, kind) {
			return true
		}
	}
	return false
}

// OrNil returns e as an error, or nil when it holds no field errors.
func (e *Error) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Merge appends other's field errors to e.
func (e *Error) Merge(other *Error) {
	if other == nil {
		return
	}
	e.Fields = append(e.Fields, other.Fields...)
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
