package netsrv

import (
	"fmt"
	"net"
	"sync"

	"github.com/libp2p/go-reuseport"
	"github.com/rpcpool/trustcore/internal/ancillary"
	"github.com/rpcpool/trustcore/internal/netconn"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Server is the server-side interface: binds one TCP port, accepts
// connections, runs the server handshake on each, and feeds a shared
// inbound queue (spec §5 "Reactor"/"Inbound queue").
type Server struct {
	name     string
	listener net.Listener
	rng      *ancillary.Rand
	cost     uint32
	log      ancillary.Logger

	mu    sync.Mutex
	conns map[string]*netconn.Connection

	queue *InboundQueue
	group errgroup.Group

	stopOnce sync.Once
}

// NewServer binds addr (using SO_REUSEADDR/SO_REUSEPORT via
// libp2p/go-reuseport, so a restarted server can rebind immediately) and
// returns an unstarted Server.
func NewServer(name, addr string, cost uint32) (*Server, error) {
	ln, err := reuseport.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netsrv: listen %s: %w", addr, err)
	}
	return &Server{
		name:     name,
		listener: ln,
		rng:      ancillary.NewRand(),
		cost:     cost,
		log:      ancillary.NewLogger("netsrv.server." + name),
		conns:    make(map[string]*netconn.Connection),
		queue:    NewInboundQueue(name),
	}, nil
}

// Addr returns the bound local address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Queue returns the interface's shared inbound queue.
func (s *Server) Queue() *InboundQueue { return s.queue }

// Run accepts connections until the listener closes, spawning a handshake
// goroutine per accepted socket — the single-reactor-thread-per-interface
// model re-cast as one accept loop plus per-connection goroutines sharing
// nothing but the inbound queue and the connection map's mutex.
func (s *Server) Run() error {
	for {
		raw, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.onAccept(raw)
	}
}

func (s *Server) onAccept(raw net.Conn) {
	// s.rng is not safe for concurrent use; each handshake gets its own
	// generator, seeded from s.rng under s.mu.
	s.mu.Lock()
	rng := ancillary.NewRandSeeded(s.rng.Uint32())
	s.mu.Unlock()

	c := netconn.New(netconn.OwnerServer, raw, s.queue.in)
	if err := netconn.ServerHandshake(c, rng, s.cost); err != nil {
		handshakeFailures.WithLabelValues(s.name).Inc()
		s.log.Warn("handshake", "interface", s.name, "remote", raw.RemoteAddr().String(), "err", err.Error())
		c.Disconnect()
		return
	}

	s.mu.Lock()
	s.conns[c.ID.String()] = c
	s.mu.Unlock()
	connectionsGauge.WithLabelValues(s.name).Inc()

	s.group.Go(c.ReadLoop)
	s.group.Go(c.WriteLoop)
	<-c.Closed()

	s.mu.Lock()
	delete(s.conns, c.ID.String())
	s.mu.Unlock()
	connectionsGauge.WithLabelValues(s.name).Dec()
}

// Stop is idempotent (spec §5 "Cancellation"): it disconnects every
// connection, closes the listener, and joins the read and write loop
// goroutines of every authenticated connection (goroutines still running a
// handshake are not joined), accumulating every close error with go.uber.org/multierr rather than
// stopping at the first one.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		conns := make([]*netconn.Connection, 0, len(s.conns))
		for _, c := range s.conns {
			conns = append(conns, c)
		}
		s.conns = nil
		s.mu.Unlock()

		for _, c := range conns {
			c.Disconnect()
		}
		err = multierr.Append(err, s.listener.Close())
		err = multierr.Append(err, s.group.Wait())
		s.queue.Close()
	})
	return err
}
