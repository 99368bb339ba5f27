package handlers

import (
	"testing"

	"ChatRoom/service/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeMessage(t *testing.T) {
	f := newFixture(t)
	msg := f.store.AddMessage(privateRoom, bob, "hi")
	elsewhere := f.store.AddMessage(otherRoom, bob, "there")
	creator := f.connIn(t, "a", alice, privateRoom)

	tests := []struct {
		name  string
		event chat.SeeMessage
		want  string
	}{
		{name: "missing room", event: chat.SeeMessage{RoomID: 999, MsgID: msg.ID}, want: "Chat Room not found"},
		{name: "missing message", event: chat.SeeMessage{RoomID: privateRoom, MsgID: 9999}, want: "Message not found"},
		{name: "message of another room", event: chat.SeeMessage{RoomID: privateRoom, MsgID: elsewhere.ID}, want: "Invalid Message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.h.SeeMessage(f.ctx, creator, tt.event)
			assert.Equal(t, tt.want, wire(err))
		})
	}

	require.NoError(t, f.h.SeeMessage(f.ctx, creator, chat.SeeMessage{RoomID: privateRoom, MsgID: msg.ID}))
	m, err := f.store.Member(f.ctx, alice, privateRoom)
	require.NoError(t, err)
	require.NotNil(t, m.LastMsgSeenID)
	assert.Equal(t, msg.ID, *m.LastMsgSeenID)
	assert.Empty(t, drain(creator), "no broadcast")
}

// Read positions are limited to the room creator. Ordinary members are refused
// and keep their old position; this pins the current rule until it is revisited.
func TestSeeMessage_CreatorOnly(t *testing.T) {
	f := newFixture(t)
	msg := f.store.AddMessage(privateRoom, alice, "hi")
	member := f.connIn(t, "b", bob, privateRoom)

	err := f.h.SeeMessage(f.ctx, member, chat.SeeMessage{RoomID: privateRoom, MsgID: msg.ID})
	assert.Equal(t, "Not allowed", wire(err))

	m, err := f.store.Member(f.ctx, bob, privateRoom)
	require.NoError(t, err)
	assert.Nil(t, m.LastMsgSeenID)
}
