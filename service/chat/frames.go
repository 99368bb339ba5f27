package chat

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Control frames, matched exactly and never parsed as JSON.
const (
	PingFrame = "ping"
	PongFrame = "pong"
)

// Outbound event names.
const (
	EventOnlineMember  = "onlineMember"
	EventOnlineMembers = "onlineMembers"
	EventOfflineMember = "offlineMember"
	EventBannedMember  = "bannedMember"
	EventMember        = "member"
	EventMessage       = "message"
	EventError         = "error"
)

// Frame is the JSON envelope of every application frame in both directions.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// MemberData carries a user id; used by onlineMember, offlineMember,
// bannedMember and member.
type MemberData struct {
	ID int64 `json:"id"`
}

type OnlineMembersData struct {
	IDs    []int64 `json:"ids"`
	RoomID int64   `json:"roomId"`
}

type MessageData struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Name      string    `json:"name"`
	Image     *string   `json:"image"`
	Text      string    `json:"text,omitempty"`
	Images    []string  `json:"images,omitempty"`
	Videos    []string  `json:"videos,omitempty"`
	Gif       string    `json:"gif,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ErrorData struct {
	Error string `json:"error"`
}

// Encode serializes one outbound frame.
func Encode(event string, data any) ([]byte, error) {
	b, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s frame", event)
	}
	return b, nil
}

func errorFrame(msg string) []byte {
	b, _ := json.Marshal(Frame{Event: EventError, Data: ErrorData{Error: msg}})
	return b
}
