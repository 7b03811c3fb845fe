package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atfkit/atf/internal/logger"
	"github.com/atfkit/atf/pkg/metrics"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/net/netutil"
)

// Handler runs the MemCore pipeline for one request's expression text and
// returns the rendered output, or an error. Wired by cmd/atf to
// pkg/expr.Evaluate + pkg/memory.RemoteReader + pkg/reflect.Dumper.
type Handler interface {
	Handle(ctx context.Context, code string) (string, error)
}

// maxConnections caps concurrent clients accepted by the listener,
// independent of the worker-pool size draining requests.
const maxConnections = 256

// eventKind distinguishes the three event shapes the inbound queue
// carries, matching the source's {Open, Close, Message} taxonomy.
type eventKind int

const (
	eventOpen eventKind = iota
	eventClose
	eventMessage
)

type inboundEvent struct {
	kind   eventKind
	connID uint64
	req    Request
	client *client
}

// Config configures a Server.
type Config struct {
	Host       string
	Port       int
	NumWorkers int // 1..32, default 4
	Handler    Handler
	Metrics    metrics.ServerMetrics
}

// Server is the TCP front end: one accept goroutine, one sender and one
// receiver goroutine per client, a buffered inbound channel standing in
// for the source's mutex-protected queue, and a conc/pool worker pool
// draining it. A reaper goroutine joins finished clients and keeps the
// active-connection count accurate.
type Server struct {
	cfg      Config
	listener net.Listener

	inbound chan inboundEvent
	closed  chan *client

	mu       sync.Mutex
	clients  map[uint64]*client
	nextID   uint64
	wg       sync.WaitGroup
	reaperWg sync.WaitGroup

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New constructs a Server. NumWorkers is clamped into [1, 32] with a
// default of 4 if zero.
func New(cfg Config) *Server {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	if cfg.NumWorkers > 32 {
		cfg.NumWorkers = 32
	}
	return &Server{
		cfg:      cfg,
		inbound:  make(chan inboundEvent, 256),
		closed:   make(chan *client, 64),
		clients:  make(map[uint64]*client),
		shutdown: make(chan struct{}),
	}
}

// Serve binds the listener and blocks until ctx is cancelled or Stop is
// called.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	raw, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = netutil.LimitListener(raw, maxConnections)

	logger.Info("message server started", logger.Component("server"), logger.Operation("serve"))

	workers := pool.New().WithMaxGoroutines(s.cfg.NumWorkers)
	for i := 0; i < s.cfg.NumWorkers; i++ {
		workerID := i
		workers.Go(func() { s.runWorker(ctx, workerID) })
	}

	s.reaperWg.Add(1)
	go s.reap()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	s.acceptLoop()

	s.wg.Wait()
	close(s.inbound)
	workers.Wait()
	close(s.closed)
	s.reaperWg.Wait()
	return nil
}

// Stop closes the listener, unblocking Accept, and closes every currently
// open client connection so its blocked ReadFrame call returns an error
// and the handler goroutine exits. Safe to call more than once.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			_ = s.listener.Close()
		}

		s.mu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for _, c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.Unlock()

		for _, c := range clients {
			c.closeOnce()
		}
	})
}

// Addr returns the bound listener address, or "" if not yet listening.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("server: accept error", logger.Err(err))
				return
			}
		}

		id := atomic.AddUint64(&s.nextID, 1)
		c := newClient(id, conn)

		s.mu.Lock()
		s.clients[id] = c
		s.mu.Unlock()

		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordConnectionAccepted()
			s.mu.Lock()
			n := len(s.clients)
			s.mu.Unlock()
			s.cfg.Metrics.SetActiveConnections(n)
		}
		logger.Debug("server: connection accepted", logger.ConnID(id), logger.RemoteAddr(conn.RemoteAddr().String()))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleClient(c)
		}()
	}
}

// handleClient runs the receiver loop inline and the sender loop on its
// own goroutine, joining both before reporting the client closed.
func (s *Server) handleClient(c *client) {
	go c.sendLoop()

	s.pushEvent(inboundEvent{kind: eventOpen, connID: c.id, client: c})

	for {
		payload, err := ReadFrame(c.conn)
		if err != nil {
			break
		}
		req, err := DecodeRequest(payload)
		if err != nil {
			logger.Debug("server: malformed request", logger.ConnID(c.id), logger.Err(err))
			continue
		}
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordFrameBytes(uint32(len(payload)))
		}
		s.pushEvent(inboundEvent{kind: eventMessage, connID: c.id, req: req, client: c})
	}

	c.closeOnce()
	<-c.done
	s.pushEvent(inboundEvent{kind: eventClose, connID: c.id, client: c})
	s.closed <- c
}

func (s *Server) pushEvent(ev inboundEvent) {
	select {
	case s.inbound <- ev:
	case <-s.shutdown:
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SetQueueDepth(len(s.inbound))
	}
}

// runWorker pops events off the inbound queue and, for messages, runs the
// MemCore pipeline and ships the result back on the owning client's
// outbound channel.
func (s *Server) runWorker(ctx context.Context, workerID int) {
	logger.Debug("server: worker started", logger.WorkerID(workerID), logger.NumWorkers(s.cfg.NumWorkers))
	for ev := range s.inbound {
		switch ev.kind {
		case eventMessage:
			s.dispatch(ctx, ev)
		case eventOpen, eventClose:
			// No per-event work beyond bookkeeping already done by the
			// accept/reap paths; the event exists so an observer could
			// hook in without touching the hot request path.
		}
	}
}

func (s *Server) dispatch(ctx context.Context, ev inboundEvent) {
	start := time.Now()
	output, err := s.cfg.Handler.Handle(ctx, ev.req.Code)

	errCode := ""
	resp := Response{RPCID: ev.req.RPCID, Output: output}
	if err != nil {
		errCode = "eval_error"
		resp.IsError = true
		resp.Output = err.Error()
	}

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordRequest(ev.req.RPCID, time.Since(start), errCode)
	}
	ev.client.reply(resp)
}

// reap drains closed clients, removing them from the registry and
// updating the active-connection gauge -- the Go analogue of the
// source's reaper thread joining finished client threads.
func (s *Server) reap() {
	defer s.reaperWg.Done()
	for c := range s.closed {
		s.mu.Lock()
		delete(s.clients, c.id)
		n := len(s.clients)
		s.mu.Unlock()

		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordConnectionClosed()
			s.cfg.Metrics.SetActiveConnections(n)
		}
		logger.Debug("server: connection closed", logger.ConnID(c.id))
	}
}
