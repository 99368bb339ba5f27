package safe

import (
	"ChatRoom/logger"
	"ChatRoom/tools/errs"

	"go.uber.org/zap"
)

// Call runs f and converts a panic into an error instead of unwinding the
// caller's goroutine.
func Call(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.ErrPanic(r)
		}
	}()
	return f()
}

// Go starts f on a new goroutine that recovers and logs panics, so that panics
// don't crash the entire program.
func Go(name string, f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered", zap.String("name", name), zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		f()
	}()
}
