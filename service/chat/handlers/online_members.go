package handlers

import (
	"context"

	"ChatRoom/service/chat"
	"ChatRoom/tools/errs"
)

// OnlineMembers replies with the user id of every connection present in the
// room. A user with several connections there appears several times.
func (h *Handlers) OnlineMembers(ctx context.Context, c *chat.Conn, e chat.OnlineMembers) error {
	if _, err := h.room(ctx, e.RoomID, errs.ErrRoomNotFound); err != nil {
		return err
	}

	present := h.reg.Snapshot(chat.InRoom(e.RoomID))
	ids := make([]int64, 0, len(present))
	for _, p := range present {
		ids = append(ids, p.UserID())
	}
	return h.fan.Reply(c, chat.EventOnlineMembers, chat.OnlineMembersData{IDs: ids, RoomID: e.RoomID})
}
