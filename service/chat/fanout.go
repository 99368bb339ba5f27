package chat

import (
	"ChatRoom/logger"

	"go.uber.org/zap"
)

// Fanout delivers frames to connections picked from a live registry
// snapshot. Each frame is encoded once and queued on every target; targets
// that closed in between are skipped.
type Fanout struct {
	reg *Registry
	log *zap.Logger
}

func NewFanout(reg *Registry) *Fanout {
	return &Fanout{reg: reg, log: logger.Named("fanout")}
}

// Broadcast sends the frame to every connection matching p and returns how
// many accepted it.
func (f *Fanout) Broadcast(p Predicate, event string, data any) (int, error) {
	payload, err := Encode(event, data)
	if err != nil {
		return 0, err
	}
	return f.deliver(f.reg.Snapshot(p), event, payload), nil
}

// BroadcastMany sends several frames, in order, to one snapshot of targets
// and returns how many connections accepted all of them.
func (f *Fanout) BroadcastMany(p Predicate, frames ...Frame) (int, error) {
	payloads := make([][]byte, len(frames))
	for i, fr := range frames {
		b, err := Encode(fr.Event, fr.Data)
		if err != nil {
			return 0, err
		}
		payloads[i] = b
	}
	n := 0
	for _, c := range f.reg.Snapshot(p) {
		all := true
		for i, b := range payloads {
			if !f.send(c, frames[i].Event, b) {
				all = false
			}
		}
		if all {
			n++
		}
	}
	return n, nil
}

// Reply sends a frame to c only.
func (f *Fanout) Reply(c *Conn, event string, data any) error {
	payload, err := Encode(event, data)
	if err != nil {
		return err
	}
	f.deliver([]*Conn{c}, event, payload)
	return nil
}

func (f *Fanout) deliver(conns []*Conn, event string, payload []byte) int {
	n := 0
	for _, c := range conns {
		if f.send(c, event, payload) {
			n++
		}
	}
	return n
}

func (f *Fanout) send(c *Conn, event string, payload []byte) bool {
	if c.Send(payload) {
		return true
	}
	if !c.Closed() {
		f.log.Warn("outbound queue full, frame dropped",
			zap.String("conn", c.ID()), zap.Int64("user", c.UserID()), zap.String("event", event))
	}
	return false
}
