package netconn

import (
	"bytes"
	"fmt"

	"github.com/rpcpool/trustcore/internal/ancillary"
	"github.com/rpcpool/trustcore/internal/blowfish"
	"github.com/rpcpool/trustcore/internal/bvec"
	"github.com/rpcpool/trustcore/internal/packet"
)

// Fixed field widths for the handshake body, matching the S1 cipher vector
// (16-byte pass, 32-byte salt) and a matching challenge width. Grounded on
// NetLib/net2_encryption.cpp's fixed-size blow_pass/blow_salt parameter
// types.
const (
	PassSize      = 16
	SaltSize      = 32
	ChallengeSize = 32

	// DefaultCost matches server_bcrypt::generate()'s `Params.Count = 400`.
	DefaultCost = 400

	handshakeCommand = 0
)

// ErrHandshakeFailed covers every handshake rejection path: challenge
// mismatch, out-of-range cost, or a malformed handshake body.
type ErrHandshakeFailed struct{ Reason string }

func (e *ErrHandshakeFailed) Error() string { return "netconn: handshake failed: " + e.Reason }

// ServerHandshake runs the server side of the negotiation (spec §4.F-H
// "Handshake: Server side"): generate pass/salt/cost/challenge, derive the
// session cipher locally, send the parameters plaintext, then require the
// peer to echo back the cipher-encrypted challenge before promoting the
// connection.
func ServerHandshake(c *Connection, rng *ancillary.Rand, cost uint32) error {
	if cost > blowfish.MaxCost {
		return &ErrHandshakeFailed{Reason: fmt.Sprintf("cost %d exceeds maximum", cost)}
	}
	pass := make([]byte, PassSize)
	salt := make([]byte, SaltSize)
	challenge := make([]byte, ChallengeSize)
	rng.Bytes(pass)
	rng.Bytes(salt)
	rng.Bytes(challenge)

	fish := blowfish.New()
	if err := fish.Bcrypt(pass, salt, cost); err != nil {
		return err
	}
	expectedEcho := append([]byte(nil), challenge...)
	fish.Encrypt(expectedEcho)

	v := bvec.New()
	defer v.Release()
	v.PushSpan(pass)
	v.PushSpan(salt)
	v.PushUint32(cost)
	v.PushSpan(challenge)
	body := append([]byte(nil), v.Bytes()...)

	params := packet.New(handshakeCommand, 0, 0, 0, body)
	if err := c.rawWrite(params); err != nil {
		return fmt.Errorf("netconn: handshake: write params: %w", err)
	}

	echo, err := c.rawRead()
	if err != nil {
		return fmt.Errorf("netconn: handshake: read echo: %w", err)
	}
	if !bytes.Equal(echo.Body, expectedEcho) {
		return &ErrHandshakeFailed{Reason: "challenge echo mismatch"}
	}
	c.SetEncryptor(&BlowFishEncryptor{Fish: fish})
	return nil
}

// ClientHandshake runs the client side (spec §4.F-H "Handshake: Client
// side"): read the plaintext parameters, derive the identical session
// cipher, then re-send the challenge — which the connection's write path
// (writeRaw) now encrypts under the freshly installed cipher, producing
// exactly the bytewise echo the server is waiting for.
func ClientHandshake(c *Connection) error {
	params, err := c.rawRead()
	if err != nil {
		return fmt.Errorf("netconn: handshake: read params: %w", err)
	}

	v := bvec.New()
	defer v.Release()
	v.PushSpan(params.Body)

	challenge, ok := v.PopSpan(ChallengeSize)
	if !ok {
		return &ErrHandshakeFailed{Reason: "short challenge field"}
	}
	cost, ok := v.PopUint32()
	if !ok {
		return &ErrHandshakeFailed{Reason: "short cost field"}
	}
	if cost > blowfish.MaxCost {
		return &ErrHandshakeFailed{Reason: fmt.Sprintf("cost %d exceeds maximum", cost)}
	}
	salt, ok := v.PopSpan(SaltSize)
	if !ok {
		return &ErrHandshakeFailed{Reason: "short salt field"}
	}
	pass, ok := v.PopSpan(PassSize)
	if !ok {
		return &ErrHandshakeFailed{Reason: "short pass field"}
	}

	fish := blowfish.New()
	if err := fish.Bcrypt(pass, salt, cost); err != nil {
		return err
	}
	c.SetEncryptor(&BlowFishEncryptor{Fish: fish})

	echo := packet.New(handshakeCommand, 0, 0, 0, challenge)
	if err := c.rawWrite(echo); err != nil {
		return fmt.Errorf("netconn: handshake: write echo: %w", err)
	}
	return nil
}
