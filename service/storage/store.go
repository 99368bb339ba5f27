package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("storage: not found")

type Scope string

const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
)

type Room struct {
	ID        int64
	Subject   string
	Scope     Scope
	CreatorID int64
	UpdatedAt time.Time
}

func (r Room) Private() bool { return r.Scope == ScopePrivate }

type Member struct {
	ID            int64
	UserID        int64
	RoomID        int64
	Banned        bool
	LastMsgSeenID *int64
}

type User struct {
	ID    int64
	Name  string
	Image *string
}

type NewMessage struct {
	RoomID   int64
	AuthorID int64
	Text     string
	Images   []string
	Videos   []string
	Gif      string
}

type Message struct {
	ID        int64
	RoomID    int64
	AuthorID  *int64
	CreatedAt time.Time
	Text      string
	Images    []string
	Videos    []string
	Gif       string
}

// Store is the relational collaborator behind the event handlers. Every
// method is a single statement; callers get no transaction across calls.
type Store interface {
	Room(ctx context.Context, id int64) (Room, error)
	Member(ctx context.Context, userID, roomID int64) (Member, error)
	BanMember(ctx context.Context, memberID int64) error
	// JoinRoom creates the membership unless it exists. created is true only for
	// the call that inserted the row; the new row starts with LastMsgSeenID at
	// the room's latest message.
	JoinRoom(ctx context.Context, userID, roomID int64) (created bool, err error)
	InsertMessage(ctx context.Context, m NewMessage) (Message, error)
	TouchRoom(ctx context.Context, roomID int64, at time.Time) error
	User(ctx context.Context, id int64) (User, error)
	// MessageRoom returns the room a message belongs to.
	MessageRoom(ctx context.Context, msgID int64) (int64, error)
	SetLastSeen(ctx context.Context, userID, roomID, msgID int64) error
	Close()
}
