package handlers

import (
	"context"

	"ChatRoom/service/chat"
	"ChatRoom/service/events"
	"ChatRoom/tools/errs"

	"go.uber.org/zap"
)

type memberBanned struct {
	RoomID   int64 `json:"roomId"`
	UserID   int64 `json:"userId"`
	BannedBy int64 `json:"bannedBy"`
}

// BanMember bans a member of the caller's private room, tells everyone in the
// room and removes the banned user's connections from it.
func (h *Handlers) BanMember(ctx context.Context, c *chat.Conn, e chat.BanMember) error {
	roomID, in := c.Room()
	if !in {
		return errs.ErrForbidden
	}
	if e.ID == c.UserID() {
		return errs.ErrSelfBan
	}
	room, err := h.room(ctx, roomID, errs.ErrRoomNotFound)
	if err != nil {
		return err
	}
	// one error for missing, public and not-owned rooms
	if !room.Private() || room.CreatorID != c.UserID() {
		return errs.ErrRoomNotFound
	}
	m, found, err := h.member(ctx, e.ID, roomID)
	if err != nil {
		return err
	}
	if !found {
		return errs.ErrMemberNotFound
	}

	if err := h.store.BanMember(ctx, m.ID); err != nil {
		return err
	}
	h.publish(events.TypeMemberBanned, roomID, memberBanned{RoomID: roomID, UserID: e.ID, BannedBy: c.UserID()})

	_, err = h.fan.Broadcast(chat.InRoom(roomID), chat.EventBannedMember, chat.MemberData{ID: e.ID})
	evicted := 0
	for _, bc := range h.reg.Snapshot(chat.OwnedBy(e.ID)) {
		if bc.EvictFrom(roomID) {
			evicted++
		}
	}
	h.log.Info("member banned",
		zap.Int64("room", roomID), zap.Int64("user", e.ID), zap.Int64("by", c.UserID()), zap.Int("evicted", evicted))
	return err
}
