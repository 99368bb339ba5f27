package chat

import (
	"sync"
	"time"
)

// Close codes sent by the gateway.
const (
	CloseNormal           = 1000
	CloseGoingAway        = 1001
	CloseHeartbeatTimeout = 3000
)

// Conn is one authenticated socket. The user is fixed at creation; the room
// and heartbeat flag change only through the methods below.
type Conn struct {
	id          string
	userID      int64
	connectedAt time.Time

	send chan []byte
	done chan struct{}

	closeOnce   sync.Once
	closeCode   int
	closeReason string

	// refreshes counts presence refreshes still running for this connection.
	refreshes sync.WaitGroup

	mu     sync.Mutex
	roomID int64
	inRoom bool
	alive  bool
}

// NewConn returns a connection with no room, marked alive, whose outbound
// queue holds up to queue frames.
func NewConn(id string, userID int64, queue int) *Conn {
	if queue <= 0 {
		queue = 1
	}
	return &Conn{
		id:          id,
		userID:      userID,
		connectedAt: time.Now(),
		send:        make(chan []byte, queue),
		done:        make(chan struct{}),
		alive:       true,
	}
}

func (c *Conn) ID() string       { return c.id }
func (c *Conn) UserID() int64    { return c.userID }
func (c *Conn) Since() time.Time { return c.connectedAt }

// Room returns the room the connection is present in.
func (c *Conn) Room() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.inRoom
}

// JoinRoom sets the room unless one is already set.
func (c *Conn) JoinRoom(roomID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inRoom {
		return false
	}
	c.roomID, c.inRoom = roomID, true
	return true
}

// LeaveRoom clears the room and returns the one that was set.
func (c *Conn) LeaveRoom() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, was := c.roomID, c.inRoom
	c.roomID, c.inRoom = 0, false
	return prev, was
}

// EvictFrom clears the room only if it is roomID.
func (c *Conn) EvictFrom(roomID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inRoom || c.roomID != roomID {
		return false
	}
	c.roomID, c.inRoom = 0, false
	return true
}

func (c *Conn) inRoomID(roomID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inRoom && c.roomID == roomID
}

// MarkAlive records a pong.
func (c *Conn) MarkAlive() {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
}

// beat runs one heartbeat tick. It returns false when the previous ping went
// unanswered; otherwise it clears the flag and the caller sends a new ping.
func (c *Conn) beat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return false
	}
	c.alive = false
	return true
}

// Send queues a frame for the writer. Frames for a closed connection, or
// beyond a full queue, are dropped and Send reports false.
func (c *Conn) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Outbound is the queue drained by the connection's writer.
func (c *Conn) Outbound() <-chan []byte { return c.send }

// Done is closed once the connection starts closing.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// CloseWith asks the writer to send a close frame with code and reason and
// then drop the transport. Only the first call has an effect. Code 0 skips the
// close frame.
func (c *Conn) CloseWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode, c.closeReason = code, reason
		close(c.done)
	})
}

// closeInfo is valid once Done is closed.
func (c *Conn) closeInfo() (int, string) {
	return c.closeCode, c.closeReason
}
