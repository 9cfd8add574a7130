package netsrv

import "github.com/rpcpool/trustcore/internal/netconn"

// InboundQueue is the interface-owned shared queue spec §5 describes as "a
// mutex-protected FIFO with a condition variable to let a caller
// Update(n, wait=true) block until work arrives". A buffered channel gives
// the same semantics idiomatically: the channel itself is the mutex-free
// FIFO, and a blocking receive is the condition-variable wait.
type InboundQueue struct {
	name   string
	in     chan netconn.Inbound
	closed chan struct{}
}

// NewInboundQueue returns an empty queue labeling its metrics as name.
func NewInboundQueue(name string) *InboundQueue {
	return &InboundQueue{
		name:   name,
		in:     make(chan netconn.Inbound, 256),
		closed: make(chan struct{}),
	}
}

// Update drains up to n messages, blocking for the first one if wait is
// true (and none are immediately available); it returns early, with
// whatever it has, once the queue is closed.
func (q *InboundQueue) Update(n int, wait bool) []netconn.Inbound {
	out := make([]netconn.Inbound, 0, n)
	if len(out) >= n {
		return out
	}
	if wait {
		select {
		case m, ok := <-q.in:
			if !ok {
				return out
			}
			inboundMessages.WithLabelValues(q.name).Inc()
			out = append(out, m)
		case <-q.closed:
			return out
		}
	}
	for len(out) < n {
		select {
		case m, ok := <-q.in:
			if !ok {
				return out
			}
			inboundMessages.WithLabelValues(q.name).Inc()
			out = append(out, m)
		default:
			return out
		}
	}
	return out
}

// Close unblocks any pending Update call; subsequent Updates return
// immediately with no messages.
func (q *InboundQueue) Close() {
	select {
	case <-q.closed:
	default:
		close(q.closed)
	}
}
