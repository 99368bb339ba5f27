package handlers

import (
	"context"

	"ChatRoom/service/chat"
	"ChatRoom/service/events"
	"ChatRoom/service/storage"
	"ChatRoom/tools/errs"
)

type memberJoined struct {
	RoomID int64 `json:"roomId"`
	UserID int64 `json:"userId"`
}

// Message stores a message and delivers it to the room and to every other
// connection of the author. Posting into a public room makes the author a
// member; that call alone also sends a member frame.
func (h *Handlers) Message(ctx context.Context, c *chat.Conn, e chat.SendMessage) error {
	if e.Empty() {
		return errs.ErrMessageEmpty
	}
	room, err := h.room(ctx, e.RoomID, errs.ErrChatRoomMissing)
	if err != nil {
		return err
	}

	author := c.UserID()
	m, found, err := h.member(ctx, author, e.RoomID)
	if err != nil {
		return err
	}
	joined := false
	switch {
	case found && m.Banned:
		return errs.ErrNotMember
	case !found && room.Private():
		return errs.ErrNotMember
	case !found:
		if joined, err = h.store.JoinRoom(ctx, author, e.RoomID); err != nil {
			return err
		}
	}

	msg, err := h.store.InsertMessage(ctx, storage.NewMessage{
		RoomID:   e.RoomID,
		AuthorID: author,
		Text:     e.Text,
		Images:   e.Images,
		Videos:   e.Videos,
		Gif:      e.Gif,
	})
	if err != nil {
		return err
	}
	if err := h.store.TouchRoom(ctx, e.RoomID, msg.CreatedAt); err != nil {
		return err
	}
	user, err := h.store.User(ctx, author)
	if err != nil {
		return err
	}

	data := chat.MessageData{
		ID:        msg.ID,
		AuthorID:  author,
		Name:      user.Name,
		Image:     user.Image,
		Text:      msg.Text,
		Images:    msg.Images,
		Videos:    msg.Videos,
		Gif:       msg.Gif,
		CreatedAt: msg.CreatedAt,
	}
	frames := []chat.Frame{{Event: chat.EventMessage, Data: data}}
	if joined {
		frames = append(frames, chat.Frame{Event: chat.EventMember, Data: chat.MemberData{ID: author}})
		h.publish(events.TypeMemberJoined, e.RoomID, memberJoined{RoomID: e.RoomID, UserID: author})
	}
	h.publish(events.TypeMessageCreated, e.RoomID, data)

	_, err = h.fan.BroadcastMany(chat.Or(chat.InRoom(e.RoomID), chat.OwnedBy(author)), frames...)
	return err
}
