package errs

import (
	"github.com/pkg/errors"
)

// ErrPanic turns a recovered value into an error with a stack trace. It is
// never a CodeError, so it is masked on the wire.
func ErrPanic(r any) error {
	if r == nil {
		return nil
	}
	return errors.Errorf("panic: %v", r)
}
