package chat

import (
	"time"
)

// DefaultHeartbeatInterval is the time between two pings.
const DefaultHeartbeatInterval = 30 * time.Second

// heartbeat runs one supervisor tick for c and reports whether a ping must
// be written. A connection that did not answer the previous ping is closed
// with CloseHeartbeatTimeout instead; two intervals without a pong end it.
func heartbeat(c *Conn) bool {
	if c.beat() {
		return true
	}
	c.CloseWith(CloseHeartbeatTimeout, "heartbeat timeout")
	return false
}
