package netsrv

import (
	"testing"
	"time"

	"github.com/rpcpool/trustcore/internal/packet"
	"github.com/stretchr/testify/require"
)

func TestServerClientHandshakeAndEcho(t *testing.T) {
	srv, err := NewServer(t.Name(), "127.0.0.1:0", 2)
	require.NoError(t, err)
	go func() { _ = srv.Run() }()
	defer srv.Stop()

	cl, err := Dial(t.Name(), srv.Addr().String())
	require.NoError(t, err)
	defer cl.Stop()

	cl.Connection().Send(packet.New(1, 0, 0, 0, []byte("ping")))

	msgs := srv.Queue().Update(1, true)
	require.Len(t, msgs, 1)
	require.Equal(t, "ping", string(msgs[0].Msg.Body))

	msgs[0].From.Send(packet.New(2, 0, 0, 0, []byte("pong")))
	reply := cl.Queue().Update(1, true)
	require.Len(t, reply, 1)
	require.Equal(t, "pong", string(reply[0].Msg.Body))
}

func TestStopIsIdempotent(t *testing.T) {
	srv, err := NewServer(t.Name(), "127.0.0.1:0", 2)
	require.NoError(t, err)
	go func() { _ = srv.Run() }()

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
}

func TestUpdateWithoutWaitReturnsImmediately(t *testing.T) {
	q := NewInboundQueue(t.Name())
	done := make(chan struct{})
	go func() {
		msgs := q.Update(1, false)
		require.Empty(t, msgs)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("non-waiting Update blocked")
	}
}
