package errs

import (
	"errors"
)

// Error codes of domain failures. Every CodeError is meaningful to the client
// and travels verbatim in the error frame.
const (
	Forbidden        = 403
	NotFound         = 404
	AlreadyInState   = 409
	ValidationFailed = 422
)

// MaskedMessage replaces anything that is not a CodeError on the wire.
const MaskedMessage = "An error has occurred."

var (
	ErrForbidden       = New(Forbidden, "Forbidden")
	ErrNotMember       = New(Forbidden, "Not a member")
	ErrNotAllowed      = New(Forbidden, "Not allowed")
	ErrSelfBan         = New(Forbidden, "You can't ban yourself.")
	ErrRoomNotFound    = New(NotFound, "Room not found")
	ErrChatRoomMissing = New(NotFound, "Chat room not found")
	ErrChatRoomGone    = New(NotFound, "Chat Room not found")
	ErrMemberNotFound  = New(NotFound, "Member not found")
	ErrMessageNotFound = New(NotFound, "Message not found")
	ErrAlreadyOnline   = New(AlreadyInState, "Already online")
	ErrAlreadyOffline  = New(AlreadyInState, "Already offline")
	ErrMessageEmpty    = New(ValidationFailed, "Message empty")
	ErrInvalidMessage  = New(ValidationFailed, "Invalid Message")
)

type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string { return e.Msg }

// Is matches another CodeError with the same code and message, so copies of the
// package values compare equal under errors.Is.
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	if !ok || t == nil || e == nil {
		return false
	}
	return e.Code == t.Code && e.Msg == t.Msg
}

// IsCode reports whether err carries a CodeError with code.
func IsCode(err error, code int) bool {
	var ce *CodeError
	return errors.As(err, &ce) && ce.Code == code
}

// Wire maps err to the string sent in the error frame.
func Wire(err error) string {
	var ce *CodeError
	if errors.As(err, &ce) && ce.Msg != "" {
		return ce.Msg
	}
	return MaskedMessage
}
