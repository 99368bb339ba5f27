package handlers

import (
	"context"

	"ChatRoom/service/chat"
	"ChatRoom/tools/errs"
)

// OfflineMember announces that the user leaves the room and then takes the
// connection out of it, so the caller gets the announcement too.
func (h *Handlers) OfflineMember(ctx context.Context, c *chat.Conn, e chat.OfflineMember) error {
	if _, in := c.Room(); !in {
		return errs.ErrAlreadyOffline
	}
	if e.UserID != c.UserID() {
		return errs.ErrForbidden
	}
	if _, err := h.room(ctx, e.RoomID, errs.ErrRoomNotFound); err != nil {
		return err
	}
	if _, found, err := h.member(ctx, e.UserID, e.RoomID); err != nil {
		return err
	} else if !found {
		return errs.ErrMemberNotFound
	}

	_, err := h.fan.Broadcast(chat.InRoom(e.RoomID), chat.EventOfflineMember, chat.MemberData{ID: e.UserID})
	c.LeaveRoom()
	return err
}
