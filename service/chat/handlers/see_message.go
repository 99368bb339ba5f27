package handlers

import (
	"context"

	"ChatRoom/service/chat"
	"ChatRoom/service/storage"
	"ChatRoom/tools/errs"

	"github.com/pkg/errors"
)

// SeeMessage moves the caller's read position in a room to msgId. Only the
// room's creator may do so.
// TODO: open read positions to every member once product confirms the
// creator-only rule is unintended.
func (h *Handlers) SeeMessage(ctx context.Context, c *chat.Conn, e chat.SeeMessage) error {
	room, err := h.room(ctx, e.RoomID, errs.ErrChatRoomGone)
	if err != nil {
		return err
	}
	if room.CreatorID != c.UserID() {
		return errs.ErrNotAllowed
	}

	msgRoom, err := h.store.MessageRoom(ctx, e.MsgID)
	if errors.Is(err, storage.ErrNotFound) {
		return errs.ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	if msgRoom != e.RoomID {
		return errs.ErrInvalidMessage
	}
	return h.store.SetLastSeen(ctx, c.UserID(), e.RoomID, e.MsgID)
}
