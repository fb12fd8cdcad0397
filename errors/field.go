package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the model or message attribute that err is
// about. Nested attributes use dot notation, for example Price.Whole.
// A nil err yields nil, so validation code can wrap results unconditionally:
//
//	return errors.Field("Owner", a.Owner.Validate(), "")
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{name: name, desc: description, cause: err}
}

// AppendField adds the field error (if any) to the errors collected so far.
func AppendField(collected error, name string, err error) error {
	return Append(collected, Field(name, err, ""))
}

// FieldErrors returns every error that was attached to the field name,
// searching through wrapped and appended errors.
func FieldErrors(err error, name string) []error {
	return collectField(nil, err, name)
}

func collectField(found []error, err error, name string) []error {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == name {
			return append(found, err)
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				found = collectField(found, e, name)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}

type fielder interface {
	Field() string
}

type fieldError struct {
	name  string
	desc  string
	cause error
}

func (e *fieldError) Field() string { return e.name }

func (e *fieldError) Cause() error { return e.cause }

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.name, e.desc, e.cause)
	}
	return fmt.Sprintf("field %q: %s", e.name, e.cause)
}
