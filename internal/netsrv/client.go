package netsrv

import (
	"fmt"
	"net"
	"sync"

	"github.com/rpcpool/trustcore/internal/ancillary"
	"github.com/rpcpool/trustcore/internal/netconn"
	"golang.org/x/sync/errgroup"
)

// Client is the client-side interface: dials one host/port, runs the
// client handshake, and exposes the resulting Connection plus its own
// inbound queue.
type Client struct {
	name string
	conn *netconn.Connection
	log  ancillary.Logger

	queue *InboundQueue
	group errgroup.Group

	stopOnce sync.Once
}

// Dial connects to addr and completes the client side of the handshake
// before returning, matching the reference implementation's synchronous
// connect-then-handshake client startup.
func Dial(name, addr string) (*Client, error) {
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netsrv: dial %s: %w", addr, err)
	}
	queue := NewInboundQueue(name)
	c := netconn.New(netconn.OwnerClient, raw, queue.in)
	if err := netconn.ClientHandshake(c); err != nil {
		_ = raw.Close()
		handshakeFailures.WithLabelValues(name).Inc()
		return nil, fmt.Errorf("netsrv: handshake: %w", err)
	}
	connectionsGauge.WithLabelValues(name).Inc()

	cl := &Client{name: name, conn: c, log: ancillary.NewLogger("netsrv.client." + name), queue: queue}
	cl.group.Go(c.ReadLoop)
	cl.group.Go(c.WriteLoop)
	return cl, nil
}

// Connection returns the underlying connection, for Send.
func (c *Client) Connection() *netconn.Connection { return c.conn }

// Queue returns the client's inbound queue.
func (c *Client) Queue() *InboundQueue { return c.queue }

// Stop is idempotent: disconnects the socket, joins both loop goroutines,
// and closes the inbound queue.
func (c *Client) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		c.conn.Disconnect()
		err = c.group.Wait()
		c.queue.Close()
		connectionsGauge.WithLabelValues(c.name).Dec()
	})
	return err
}
