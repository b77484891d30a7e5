package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

// DefaultQueueSize bounds the outbound frames buffered per connection.
const DefaultQueueSize = 256

// Conn is one live client connection. Frames handed to Send are written by
// a single consumer of Outbound, so per-connection order is preserved.
type Conn struct {
	id       uuid.UUID
	identity domain.Identity

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn creates a connection for an already authenticated identity.
func NewConn(identity domain.Identity, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Conn{
		id:       uuid.New(),
		identity: identity,
		out:      make(chan []byte, queueSize),
		done:     make(chan struct{}),
	}
}

func (c *Conn) ID() uuid.UUID             { return c.id }
func (c *Conn) Identity() domain.Identity { return c.identity }
func (c *Conn) Outbound() <-chan []byte   { return c.out }
func (c *Conn) Done() <-chan struct{}     { return c.done }

// Send enqueues a frame without blocking. It returns false when the
// connection is closed or its queue is full; the frame is then dropped.
func (c *Conn) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.out <- frame:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close marks the connection dead. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
