package handlers

import (
	"testing"

	"ChatRoom/service/chat"
	"ChatRoom/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wire(err error) string { return errs.Wire(err) }

func TestOnlineMember_Refusals(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture) *chat.Conn
		event chat.OnlineMember
		want  error
	}{
		{
			name: "already online",
			setup: func(f *fixture) *chat.Conn {
				c := f.conn("a", alice)
				c.JoinRoom(privateRoom)
				return c
			},
			event: chat.OnlineMember{RoomID: privateRoom, UserID: alice},
			want:  errs.ErrAlreadyOnline,
		},
		{
			name:  "other user",
			setup: func(f *fixture) *chat.Conn { return f.conn("a", alice) },
			event: chat.OnlineMember{RoomID: privateRoom, UserID: bob},
			want:  errs.ErrForbidden,
		},
		{
			name:  "missing room",
			setup: func(f *fixture) *chat.Conn { return f.conn("a", alice) },
			event: chat.OnlineMember{RoomID: 999, UserID: alice},
			want:  errs.ErrRoomNotFound,
		},
		{
			name:  "not a member",
			setup: func(f *fixture) *chat.Conn { return f.conn("c", carol) },
			event: chat.OnlineMember{RoomID: privateRoom, UserID: carol},
			want:  errs.ErrMemberNotFound,
		},
		{
			name: "banned member",
			setup: func(f *fixture) *chat.Conn {
				m := f.store.AddMember(carol, publicRoom)
				_ = f.store.BanMember(f.ctx, m.ID)
				return f.conn("c", carol)
			},
			event: chat.OnlineMember{RoomID: publicRoom, UserID: carol},
			want:  errs.ErrMemberNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := tt.setup(f)
			before, _ := c.Room()

			err := f.h.OnlineMember(f.ctx, c, tt.event)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want.Error(), wire(err))

			after, _ := c.Room()
			assert.Equal(t, before, after, "room unchanged")
			assert.Empty(t, drain(c))
		})
	}
}

func TestOnlineMember_AnnouncesToRoom(t *testing.T) {
	f := newFixture(t)
	bobHere := f.connIn(t, "b", bob, privateRoom)
	bobElsewhere := f.connIn(t, "b2", bob, otherRoom)
	a := f.conn("a", alice)

	require.NoError(t, f.h.OnlineMember(f.ctx, a, chat.OnlineMember{RoomID: privateRoom, UserID: alice}))

	assert.Equal(t, privateRoom, room(a))
	want := []string{`{"event":"onlineMember","data":{"id":1}}`}
	assert.Equal(t, want, drain(a), "caller included")
	assert.Equal(t, want, drain(bobHere))
	assert.Empty(t, drain(bobElsewhere))

	err := f.h.OnlineMember(f.ctx, a, chat.OnlineMember{RoomID: privateRoom, UserID: alice})
	assert.ErrorIs(t, err, errs.ErrAlreadyOnline)
}

// A waits in the room; B is refused until invited, then joins and A sees it.
func TestOnlineMember_InvitationScenario(t *testing.T) {
	f := newFixture(t)
	a := f.conn("a", alice)
	c := f.conn("c", carol)

	require.NoError(t, f.h.OnlineMember(f.ctx, a, chat.OnlineMember{RoomID: privateRoom, UserID: alice}))
	drain(a)

	err := f.h.OnlineMember(f.ctx, c, chat.OnlineMember{RoomID: privateRoom, UserID: carol})
	assert.Equal(t, "Member not found", wire(err))

	f.store.AddMember(carol, privateRoom)
	require.NoError(t, f.h.OnlineMember(f.ctx, c, chat.OnlineMember{RoomID: privateRoom, UserID: carol}))
	assert.Equal(t, []string{`{"event":"onlineMember","data":{"id":3}}`}, drain(a))
}

func TestOfflineMember(t *testing.T) {
	f := newFixture(t)
	a := f.connIn(t, "a", alice, privateRoom)
	b := f.connIn(t, "b", bob, privateRoom)

	err := f.h.OfflineMember(f.ctx, f.conn("c", carol), chat.OfflineMember{RoomID: privateRoom, UserID: carol})
	assert.ErrorIs(t, err, errs.ErrAlreadyOffline)

	err = f.h.OfflineMember(f.ctx, a, chat.OfflineMember{RoomID: privateRoom, UserID: bob})
	assert.ErrorIs(t, err, errs.ErrForbidden)

	err = f.h.OfflineMember(f.ctx, a, chat.OfflineMember{RoomID: 999, UserID: alice})
	assert.ErrorIs(t, err, errs.ErrRoomNotFound)

	err = f.h.OfflineMember(f.ctx, a, chat.OfflineMember{RoomID: publicRoom, UserID: alice})
	assert.ErrorIs(t, err, errs.ErrMemberNotFound)
	assert.Equal(t, privateRoom, room(a))

	require.NoError(t, f.h.OfflineMember(f.ctx, a, chat.OfflineMember{RoomID: privateRoom, UserID: alice}))
	want := []string{`{"event":"offlineMember","data":{"id":1}}`}
	assert.Equal(t, want, drain(a), "leaving connection gets its own confirmation")
	assert.Equal(t, want, drain(b))
	assert.Zero(t, room(a))

	err = f.h.OfflineMember(f.ctx, a, chat.OfflineMember{RoomID: privateRoom, UserID: alice})
	assert.ErrorIs(t, err, errs.ErrAlreadyOffline)
}

func TestOnlineMembers(t *testing.T) {
	f := newFixture(t)
	f.connIn(t, "a1", alice, privateRoom)
	f.connIn(t, "a2", alice, privateRoom)
	f.connIn(t, "b", bob, privateRoom)
	f.connIn(t, "b2", bob, otherRoom)
	gone := f.connIn(t, "b3", bob, privateRoom)
	moved := f.connIn(t, "a3", alice, privateRoom)
	gone.CloseWith(chat.CloseNormal, "")
	f.reg.Remove(gone)
	moved.LeaveRoom()

	asker := f.conn("c", carol)
	require.NoError(t, f.h.OnlineMembers(f.ctx, asker, chat.OnlineMembers{RoomID: privateRoom}))

	frames := drain(asker)
	require.Len(t, frames, 1)
	var got struct {
		Event string `json:"event"`
		Data  struct {
			IDs    []int64 `json:"ids"`
			RoomID int64   `json:"roomId"`
		} `json:"data"`
	}
	require.NoError(t, jsonUnmarshal(frames[0], &got))
	assert.Equal(t, "onlineMembers", got.Event)
	assert.Equal(t, privateRoom, got.Data.RoomID)
	assert.ElementsMatch(t, []int64{alice, alice, bob}, got.Data.IDs)

	for _, c := range f.reg.Snapshot(chat.All) {
		if c != asker {
			assert.Empty(t, drain(c), "reply goes to the caller only")
		}
	}
}

func TestOnlineMembers_EmptyAndMissing(t *testing.T) {
	f := newFixture(t)
	c := f.conn("c", carol)

	require.NoError(t, f.h.OnlineMembers(f.ctx, c, chat.OnlineMembers{RoomID: publicRoom}))
	assert.Equal(t, []string{`{"event":"onlineMembers","data":{"ids":[],"roomId":10}}`}, drain(c))

	err := f.h.OnlineMembers(f.ctx, c, chat.OnlineMembers{RoomID: 999})
	assert.ErrorIs(t, err, errs.ErrRoomNotFound)
}
