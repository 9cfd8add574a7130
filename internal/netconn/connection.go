package netconn

import (
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rpcpool/trustcore/internal/ancillary"
	"github.com/rpcpool/trustcore/internal/packet"
)

// Owner mirrors net2_connection.h's `owner` enum.
type Owner int

const (
	OwnerServer Owner = iota
	OwnerClient
	OwnerWorker
)

// Inbound is one message delivered to an interface's shared inbound queue,
// tagged with its sender — the Go analogue of `owned_packet`.
type Inbound struct {
	From *Connection
	Msg  *packet.Packet
}

// Connection is one socket's state: goroutine read/write loops standing in
// for the original's strand-serialized callback chain (spec §9 "Async I/O"
// redesign note), a buffered send channel standing in for the FIFO send
// queue, and an optional encryptor.
type Connection struct {
	ID    uuid.UUID
	Owner Owner
	Name  string

	conn net.Conn
	log  ancillary.Logger

	mu        sync.Mutex
	encryptor Encryptor

	sendCh  chan *packet.Packet
	inbound chan<- Inbound

	numOutgoing int32
	numIncoming int32

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps conn, delivering decoded packets onto inbound and tagging them
// with this Connection as sender.
func New(owner Owner, conn net.Conn, inbound chan<- Inbound) *Connection {
	return &Connection{
		ID:        uuid.New(),
		Owner:     owner,
		conn:      conn,
		log:       ancillary.NewLogger("netconn"),
		encryptor: NoneEncryptor{},
		sendCh:    make(chan *packet.Packet, 64),
		inbound:   inbound,
		closed:    make(chan struct{}),
	}
}

// SetEncryptor installs enc as the connection's encryption hook (called
// once a handshake completes; spec §9 "None, BlowFish" capability set).
func (c *Connection) SetEncryptor(enc Encryptor) {
	c.mu.Lock()
	c.encryptor = enc
	c.mu.Unlock()
}

func (c *Connection) currentEncryptor() Encryptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encryptor
}

// NumOutgoing and NumIncoming report the message counters
// net2_connection.h tracks per connection. NumOutgoing is the number of
// sent packets not yet written to the socket. NumIncoming is the number of
// packets delivered to the inbound queue since the connection was created;
// it is not decremented when the queue is drained.
func (c *Connection) NumOutgoing() int32 { return atomic.LoadInt32(&c.numOutgoing) }
func (c *Connection) NumIncoming() int32 { return atomic.LoadInt32(&c.numIncoming) }

// Closed reports whether the connection's loops have stopped.
func (c *Connection) Closed() <-chan struct{} { return c.closed }

// Disconnect closes the underlying socket; outstanding loop goroutines
// observe the resulting I/O error and exit (the same mechanism the
// original gets from cancelling asio ops via socket closure).
func (c *Connection) Disconnect() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		close(c.closed)
	})
}

// Send enqueues p for the write loop. Matches net2_connection.cpp's Send:
// the outgoing counter is bumped immediately, before the frame is actually
// on the wire.
func (c *Connection) Send(p *packet.Packet) {
	atomic.AddInt32(&c.numOutgoing, 1)
	select {
	case c.sendCh <- p:
	case <-c.closed:
	}
}

// writeRaw encodes and writes one packet: SwapNetEndian first (folded into
// EncodeHeader, which always marshals to wire endian), then the encryptor
// if present, matching net2_connection.cpp's Send ordering exactly.
func (c *Connection) writeRaw(p *packet.Packet) error {
	head := p.EncodeHeader()
	body := append([]byte(nil), p.Body...)
	enc := c.currentEncryptor()
	enc.Encrypt(packet.HeadSpan(head), body)
	if _, err := c.conn.Write(head); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := c.conn.Write(body); err != nil {
			return err
		}
	}
	return nil
}

// WriteLoop drains the send channel until the connection closes or a write
// fails, the goroutine standing in for the original's strand-posted
// WriteLoop.
func (c *Connection) WriteLoop() error {
	for {
		select {
		case p, ok := <-c.sendCh:
			if !ok {
				return nil
			}
			if err := c.writeRaw(p); err != nil {
				c.log.Error(err, "write_loop", "connection", c.ID.String())
				c.Disconnect()
				return err
			}
			atomic.AddInt32(&c.numOutgoing, -1)
		case <-c.closed:
			return nil
		}
	}
}

// readRaw reads one full frame: fixed header, decrypt-then-swap ordering
// mirrored from net2_connection.cpp's Recv (decrypt happens on the
// still-wire-endian-excluding-length header span before DecodeHeader
// converts it to native).
func (c *Connection) readRaw() (*packet.Packet, error) {
	head := make([]byte, packet.HeaderSize)
	if _, err := io.ReadFull(c.conn, head); err != nil {
		return nil, err
	}
	var p packet.Packet
	bodyLength, ok := p.DecodeHeader(head)
	if !ok {
		return nil, fmt.Errorf("netconn: short header")
	}
	body := make([]byte, bodyLength)
	if bodyLength > 0 {
		if _, err := io.ReadFull(c.conn, body); err != nil {
			return nil, err
		}
	}
	enc := c.currentEncryptor()
	enc.Decrypt(packet.HeadSpan(head), body)
	// Header fields after decryption may differ only in payload the
	// encryptor touched; length itself was never encrypted, so re-parse
	// the remaining header fields from the (now decrypted) head slice.
	p.DecodeHeader(head)
	p.Body = body
	return &p, nil
}

// ReadLoop reads frames until the connection closes or a read fails,
// delivering each to the owner's inbound queue tagged with this connection
// (spec §4.F-H "Read loop").
func (c *Connection) ReadLoop() error {
	for {
		p, err := c.readRaw()
		if err != nil {
			c.log.Error(err, "read_loop", "connection", c.ID.String())
			c.Disconnect()
			return err
		}
		atomic.AddInt32(&c.numIncoming, 1)
		select {
		case c.inbound <- Inbound{From: c, Msg: p}:
		case <-c.closed:
			return nil
		}
	}
}

// rawWrite and rawRead are used by the handshake, which writes and reads
// packets directly, before the read and write loops start and without going
// through the buffered send queue. Whatever encryptor is installed at the
// time still applies (the client's echo is written after its session
// cipher is set).
func (c *Connection) rawWrite(p *packet.Packet) error { return c.writeRaw(p) }
func (c *Connection) rawRead() (*packet.Packet, error) { return c.readRaw() }
