package ids

import (
	"strconv"
	"sync"
	"time"
)

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator hands out snowflake ids: 41 bits of milliseconds since 2020-01-01,
// 10 bits of node and a 12 bit sequence.
type Generator struct {
	mu       sync.Mutex
	nodeID   int64
	seq      int64
	lastTSMS int64
	now      func() time.Time
}

// NewGenerator returns a generator for node (0~1023, anything else becomes 1).
func NewGenerator(node int64) *Generator {
	if node < 0 || node > 1023 {
		node = 1
	}
	return &Generator{nodeID: node, now: time.Now}
}

func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().Sub(epoch).Milliseconds()
	if ms < g.lastTSMS {
		// clock went backwards: stay on the last tick
		ms = g.lastTSMS
	}
	if ms == g.lastTSMS {
		g.seq = (g.seq + 1) & 0xFFF
		if g.seq == 0 {
			// sequence exhausted for this millisecond
			ms++
		}
	} else {
		g.seq = 0
	}
	g.lastTSMS = ms

	return (ms&((1<<41)-1))<<22 | g.nodeID<<12 | g.seq
}

func (g *Generator) NextString() string {
	return strconv.FormatInt(g.Next(), 10)
}

// Node extracts the node bits of id.
func Node(id int64) int64 { return (id >> 12) & 0x3FF }
