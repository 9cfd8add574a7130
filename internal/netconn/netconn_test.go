package netconn

import (
	"net"
	"testing"

	"github.com/rpcpool/trustcore/internal/ancillary"
	"github.com/rpcpool/trustcore/internal/packet"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestHandshakeAndEchoS4 is spec scenario S4: after a successful handshake,
// a 1,000-byte echo round-trips and both sides' session ciphers match.
func TestHandshakeAndEchoS4(t *testing.T) {
	serverRaw, clientRaw := net.Pipe()

	serverInbound := make(chan Inbound, 4)
	clientInbound := make(chan Inbound, 4)

	server := New(OwnerServer, serverRaw, serverInbound)
	client := New(OwnerClient, clientRaw, clientInbound)

	rng := ancillary.NewRand()

	var g errgroup.Group
	g.Go(func() error { return ServerHandshake(server, rng, 4) })
	g.Go(func() error { return ClientHandshake(client) })
	require.NoError(t, g.Wait())

	serverFish := server.encryptor.(*BlowFishEncryptor).Fish
	clientFish := client.encryptor.(*BlowFishEncryptor).Fish
	require.True(t, serverFish.IsEqual(clientFish))

	go func() { _ = server.ReadLoop() }()
	go func() { _ = server.WriteLoop() }()
	go func() { _ = client.ReadLoop() }()
	go func() { _ = client.WriteLoop() }()
	defer server.Disconnect()
	defer client.Disconnect()

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}
	client.Send(packet.New(1, 0, 0, 0, payload))

	received := <-serverInbound
	require.Equal(t, payload, received.Msg.Body)

	server.Send(packet.New(2, 0, 0, 0, received.Msg.Body))
	echoed := <-clientInbound
	require.Equal(t, payload, echoed.Msg.Body)
}

func TestHandshakeRejectsExcessiveCost(t *testing.T) {
	serverRaw, _ := net.Pipe()
	server := New(OwnerServer, serverRaw, make(chan Inbound, 1))
	err := ServerHandshake(server, ancillary.NewRand(), 200000)
	require.Error(t, err)
}
