package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil errors are provided, nil is returned.
// If only one non-nil error is provided, it is returned unchanged.
func Append(errs ...error) error {
	var flat []error
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			flat = append(flat, m...)
		} else {
			flat = append(flat, err)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return multiErr(flat)
}

// multiErr represents a group of errors reported together. Tested with Is it
// matches when at least one of the grouped errors matches.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, err := range m {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(m), strings.Join(msgs, "; "))
}

// Unpack returns all grouped errors.
func (m multiErr) Unpack() []error {
	return m
}

// ABCICode returns the code of the first error, consistent with a fail-fast
// reading of the group.
func (m multiErr) ABCICode() uint32 {
	return abciCode(m[0])
}

type unpacker interface {
	Unpack() []error
}
