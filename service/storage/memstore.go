package storage

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemStore keeps rooms, members, messages and users in process memory. It
// backs STORAGE_DRIVER=memory and the handler tests.
type MemStore struct {
	mu       sync.RWMutex
	users    map[int64]User
	rooms    map[int64]Room
	members  map[memberKey]*Member
	messages map[int64]Message
	nextID   int64
	now      func() time.Time
}

type memberKey struct{ userID, roomID int64 }

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[int64]User),
		rooms:    make(map[int64]Room),
		members:  make(map[memberKey]*Member),
		messages: make(map[int64]Message),
		now:      time.Now,
	}
}

func (s *MemStore) Close() {}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser, AddRoom, AddMember and AddMessage seed data that the gateway
// itself never creates.
func (s *MemStore) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemStore) AddRoom(r Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = s.now()
	}
	s.rooms[r.ID] = r
}

func (s *MemStore) AddMember(userID, roomID int64) Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &Member{ID: s.id(), UserID: userID, RoomID: roomID}
	s.members[memberKey{userID, roomID}] = m
	return *m
}

func (s *MemStore) AddMessage(roomID, authorID int64, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := Message{ID: s.id(), RoomID: roomID, AuthorID: &authorID, CreatedAt: s.now(), Text: text}
	s.messages[msg.ID] = msg
	return msg
}

// Members lists the memberships of a room.
func (s *MemStore) Members(roomID int64) []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Member
	for k, m := range s.members {
		if k.roomID == roomID {
			out = append(out, *m)
		}
	}
	return out
}

// Messages lists the messages of a room.
func (s *MemStore) Messages(roomID int64) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out
}

func (s *MemStore) Room(_ context.Context, id int64) (Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return Room{}, errors.WithMessagef(ErrNotFound, "room %d", id)
	}
	return r, nil
}

func (s *MemStore) Member(_ context.Context, userID, roomID int64) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberKey{userID, roomID}]
	if !ok {
		return Member{}, errors.WithMessagef(ErrNotFound, "member user=%d room=%d", userID, roomID)
	}
	return *m, nil
}

func (s *MemStore) BanMember(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.ID == memberID {
			m.Banned = true
		}
	}
	return nil
}

func (s *MemStore) JoinRoom(_ context.Context, userID, roomID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memberKey{userID, roomID}
	if _, ok := s.members[k]; ok {
		return false, nil
	}
	m := &Member{ID: s.id(), UserID: userID, RoomID: roomID}
	var latest int64
	for _, msg := range s.messages {
		if msg.RoomID == roomID && msg.ID > latest {
			latest = msg.ID
		}
	}
	if latest > 0 {
		m.LastMsgSeenID = &latest
	}
	s.members[k] = m
	return true, nil
}

func (s *MemStore) InsertMessage(_ context.Context, in NewMessage) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[in.RoomID]; !ok {
		return Message{}, errors.Errorf("insert message: room %d does not exist", in.RoomID)
	}
	author := in.AuthorID
	msg := Message{
		ID:        s.id(),
		RoomID:    in.RoomID,
		AuthorID:  &author,
		CreatedAt: s.now(),
		Text:      in.Text,
		Images:    in.Images,
		Videos:    in.Videos,
		Gif:       in.Gif,
	}
	s.messages[msg.ID] = msg
	return msg, nil
}

func (s *MemStore) TouchRoom(_ context.Context, roomID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[roomID]; ok {
		r.UpdatedAt = at
		s.rooms[roomID] = r
	}
	return nil
}

func (s *MemStore) User(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, errors.WithMessagef(ErrNotFound, "user %d", id)
	}
	return u, nil
}

func (s *MemStore) MessageRoom(_ context.Context, msgID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[msgID]
	if !ok {
		return 0, errors.WithMessagef(ErrNotFound, "message %d", msgID)
	}
	return m.RoomID, nil
}

func (s *MemStore) SetLastSeen(_ context.Context, userID, roomID, msgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberKey{userID, roomID}]; ok {
		id := msgID
		m.LastMsgSeenID = &id
	}
	return nil
}
