package server

import (
	"net"

	"github.com/atfkit/atf/internal/logger"
)

// client tracks one accepted connection: its own outbound channel (so
// replies to a single client are always written in the order they were
// queued, even though requests across clients are served out of order by
// the worker pool), a closeCh that tells the sender/receiver goroutines to
// stop, and a done channel the sender closes when it has exited.
type client struct {
	id      uint64
	conn    net.Conn
	out     chan Response
	done    chan struct{}
	closeCh chan struct{} // closed exactly once, signals both goroutines to exit
}

func newClient(id uint64, conn net.Conn) *client {
	return &client{
		id:      id,
		conn:    conn,
		out:     make(chan Response, 32),
		done:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// reply enqueues resp on this client's outbound channel. It is safe to
// call from a worker goroutine after the client has closed: once closeCh
// is closed the reply is dropped, since nothing is listening to ship it
// anymore. While the client is open, a full channel blocks the caller
// until the sender drains it.
func (c *client) reply(resp Response) {
	select {
	case c.out <- resp:
	case <-c.closeCh:
	}
}

// closeOnce signals the sender/receiver goroutines to stop and closes the
// underlying socket. Safe to call multiple times.
func (c *client) closeOnce() {
	select {
	case <-c.closeCh:
		return
	default:
	}
	close(c.closeCh)
	_ = c.conn.Close()
}

// sendLoop drains c.out and writes each response as a frame, in order,
// until closeCh fires.
func (c *client) sendLoop() {
	defer close(c.done)
	for {
		select {
		case resp := <-c.out:
			if err := WriteFrame(c.conn, EncodeResponse(resp)); err != nil {
				logger.Debug("server: write frame failed", logger.ConnID(c.id), logger.Err(err))
				c.closeOnce()
				return
			}
		case <-c.closeCh:
			return
		}
	}
}
