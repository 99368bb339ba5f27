package handlers

import (
	"context"

	"ChatRoom/service/chat"
	"ChatRoom/tools/errs"
)

// OnlineMember puts the connection in a room the user is a member of and
// announces it to everyone present, the caller included.
func (h *Handlers) OnlineMember(ctx context.Context, c *chat.Conn, e chat.OnlineMember) error {
	if _, in := c.Room(); in {
		return errs.ErrAlreadyOnline
	}
	if e.UserID != c.UserID() {
		return errs.ErrForbidden
	}
	if _, err := h.room(ctx, e.RoomID, errs.ErrRoomNotFound); err != nil {
		return err
	}
	m, found, err := h.member(ctx, e.UserID, e.RoomID)
	if err != nil {
		return err
	}
	// banned members are kept out of the live room as well
	if !found || m.Banned {
		return errs.ErrMemberNotFound
	}

	if !c.JoinRoom(e.RoomID) {
		return errs.ErrAlreadyOnline
	}
	_, err = h.fan.Broadcast(chat.InRoom(e.RoomID), chat.EventOnlineMember, chat.MemberData{ID: e.UserID})
	return err
}
