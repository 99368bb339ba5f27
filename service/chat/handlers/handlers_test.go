package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"ChatRoom/service/chat"
	"ChatRoom/service/events"
	"ChatRoom/service/storage"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3

	publicRoom  int64 = 10
	privateRoom int64 = 20
	otherRoom   int64 = 30
)

type fixture struct {
	store *storage.MemStore
	reg   *chat.Registry
	pub   *events.Recorder
	h     *Handlers
	ctx   context.Context
}

// newFixture seeds three users, a public room and a private room created by
// alice. alice and bob are members of the private room.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemStore()
	img := "https://cdn.example/alice.png"
	store.AddUser(storage.User{ID: alice, Name: "alice", Image: &img})
	store.AddUser(storage.User{ID: bob, Name: "bob"})
	store.AddUser(storage.User{ID: carol, Name: "carol"})
	store.AddRoom(storage.Room{ID: publicRoom, Subject: "lobby", Scope: storage.ScopePublic, CreatorID: alice})
	store.AddRoom(storage.Room{ID: privateRoom, Subject: "team", Scope: storage.ScopePrivate, CreatorID: alice})
	store.AddRoom(storage.Room{ID: otherRoom, Subject: "other", Scope: storage.ScopePrivate, CreatorID: bob})
	store.AddMember(alice, privateRoom)
	store.AddMember(bob, privateRoom)
	store.AddMember(bob, otherRoom)

	reg := chat.NewRegistry()
	pub := &events.Recorder{}
	return &fixture{
		store: store,
		reg:   reg,
		pub:   pub,
		h:     New(store, reg, chat.NewFanout(reg), pub),
		ctx:   context.Background(),
	}
}

func (f *fixture) conn(id string, userID int64) *chat.Conn {
	c := chat.NewConn(id, userID, 32)
	f.reg.Add(c)
	return c
}

// connIn opens a connection already present in roomID.
func (f *fixture) connIn(t *testing.T, id string, userID, roomID int64) *chat.Conn {
	t.Helper()
	c := f.conn(id, userID)
	if !c.JoinRoom(roomID) {
		t.Fatalf("join %d", roomID)
	}
	return c
}

// drain returns the frames queued on c without blocking.
func drain(c *chat.Conn) []string {
	var out []string
	for {
		select {
		case fr := <-c.Outbound():
			out = append(out, string(fr))
		default:
			return out
		}
	}
}

func jsonUnmarshal(s string, v any) error { return json.Unmarshal([]byte(s), v) }

func room(c *chat.Conn) int64 {
	id, in := c.Room()
	if !in {
		return 0
	}
	return id
}

// failingStore fails every room lookup like an unreachable database.
type failingStore struct {
	storage.Store
}

func (failingStore) Room(context.Context, int64) (storage.Room, error) {
	return storage.Room{}, errors.New("dial tcp: connection refused")
}

func TestHandlers_StorageFailureIsNotADomainError(t *testing.T) {
	f := newFixture(t)
	h := New(failingStore{f.store}, f.reg, chat.NewFanout(f.reg), nil)
	c := f.conn("a", alice)

	calls := map[string]func() error{
		"onlineMember":  func() error { return h.OnlineMember(f.ctx, c, chat.OnlineMember{RoomID: publicRoom, UserID: alice}) },
		"onlineMembers": func() error { return h.OnlineMembers(f.ctx, c, chat.OnlineMembers{RoomID: publicRoom}) },
		"message":       func() error { return h.Message(f.ctx, c, chat.SendMessage{RoomID: publicRoom, Text: "hi"}) },
		"seeMessage":    func() error { return h.SeeMessage(f.ctx, c, chat.SeeMessage{RoomID: publicRoom, MsgID: 1}) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.Error(t, err)
			assert.Equal(t, "An error has occurred.", wire(err))
		})
	}
}
