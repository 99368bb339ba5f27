package chat

import (
	"unicode/utf8"

	"ChatRoom/tools/decode"

	"github.com/pkg/errors"
)

// MaxTextLen bounds the text of a message in characters.
const MaxTextLen = 500

// Event is one of the inbound events a client may send. The set is closed:
// only the types in this file implement it.
type Event interface {
	Name() string
	isEvent()
}

type OnlineMember struct {
	RoomID int64 `json:"roomId" decode:"required"`
	UserID int64 `json:"userId" decode:"required"`
}

type OfflineMember struct {
	RoomID int64 `json:"roomId" decode:"required"`
	UserID int64 `json:"userId" decode:"required"`
}

type OnlineMembers struct {
	RoomID int64 `json:"roomId" decode:"required"`
}

type BanMember struct {
	ID int64 `json:"id" decode:"required"`
}

type SendMessage struct {
	RoomID int64    `json:"roomId" decode:"required"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
	Videos []string `json:"videos"`
	Gif    string   `json:"gif"`
}

type SeeMessage struct {
	MsgID  int64 `json:"msgId" decode:"required"`
	RoomID int64 `json:"roomId" decode:"required"`
}

func (OnlineMember) Name() string  { return "onlineMember" }
func (OfflineMember) Name() string { return "offlineMember" }
func (OnlineMembers) Name() string { return "onlineMembers" }
func (BanMember) Name() string     { return "banMember" }
func (SendMessage) Name() string   { return "message" }
func (SeeMessage) Name() string    { return "seeMessage" }

func (OnlineMember) isEvent()  {}
func (OfflineMember) isEvent() {}
func (OnlineMembers) isEvent() {}
func (BanMember) isEvent()     {}
func (SendMessage) isEvent()   {}
func (SeeMessage) isEvent()    {}

func (m *SendMessage) Validate() error {
	if utf8.RuneCountInString(m.Text) > MaxTextLen {
		return errors.Errorf("text longer than %d characters", MaxTextLen)
	}
	for _, u := range m.Images {
		if u == "" {
			return errors.New("empty image entry")
		}
	}
	for _, u := range m.Videos {
		if u == "" {
			return errors.New("empty video entry")
		}
	}
	return nil
}

// Empty reports whether the message carries no payload at all.
func (m SendMessage) Empty() bool {
	return m.Text == "" && len(m.Images) == 0 && len(m.Videos) == 0 && m.Gif == ""
}

// ErrUnknownEvent is returned by DecodeEvent for names outside the set.
var ErrUnknownEvent = errors.New("unknown event")

// DecodeEvent maps an event name and its data object onto the matching type.
func DecodeEvent(name string, data map[string]any) (Event, error) {
	switch name {
	case "onlineMember":
		return decodeAs[OnlineMember](data)
	case "offlineMember":
		return decodeAs[OfflineMember](data)
	case "onlineMembers":
		return decodeAs[OnlineMembers](data)
	case "banMember":
		return decodeAs[BanMember](data)
	case "message":
		return decodeAs[SendMessage](data)
	case "seeMessage":
		return decodeAs[SeeMessage](data)
	default:
		return nil, errors.Wrapf(ErrUnknownEvent, "%q", name)
	}
}

func decodeAs[T Event](data map[string]any) (Event, error) {
	var zero T
	v, err := decode.Map[T](data)
	if err != nil {
		return nil, errors.WithMessagef(err, "decode %s", zero.Name())
	}
	return *v, nil
}
