package weave

import (
	"reflect"

	"github.com/iov-one/weave-market/errors"
)

// assignMsg copies the message into the destination, which must be a pointer
// of the same type as the message.
func assignMsg(msg Msg, destination interface{}) error {
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrapf(errors.ErrType, "destination %T is not a pointer", destination)
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}
	src := reflect.ValueOf(msg)
	if src.Type() != dest.Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}
	dest.Elem().Set(src.Elem())
	return nil
}
