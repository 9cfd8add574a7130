// Package netconn implements spec component G: per-connection state — a
// read loop, a write loop, a FIFO send queue, an optional encryption hook,
// and the Bcrypt handshake that negotiates a connection's session cipher.
// Grounded on NetLib/net2_connection.h/.cpp (the read/write loop state
// machine and the Send/Recv encrypt-then-swap ordering) and
// NetLib/net2_encryption.h/.cpp (the encryptor variants and handshake field
// push/pop order), re-cast from an asio strand onto goroutines and channels
// per spec §9's "Async I/O" redesign note.
package netconn

import "github.com/rpcpool/trustcore/internal/blowfish"

// Encryptor is the capability set spec §9 re-casts from the original's
// polymorphic connection_encryption_interface: encrypt/decrypt operate on
// a packet's already-endian-swapped header span (excluding the plaintext
// length prefix) and body. Deriving the session cipher from
// handshake-negotiated parameters is done by the handshake functions, not by
// this interface.
type Encryptor interface {
	Encrypt(headSpan, body []byte)
	Decrypt(headSpan, body []byte)
}

// NoneEncryptor is the no-op variant used before a handshake completes.
type NoneEncryptor struct{}

func (NoneEncryptor) Encrypt(_, _ []byte) {}
func (NoneEncryptor) Decrypt(_, _ []byte) {}

// BlowFishEncryptor encrypts/decrypts using a per-connection session
// cipher, the Go analogue of net2_encryption.cpp's connection_bcrypt: both
// the header's non-length span and the body pass through the same cipher.
type BlowFishEncryptor struct {
	Fish *blowfish.Cipher
}

func (e *BlowFishEncryptor) Encrypt(headSpan, body []byte) {
	e.Fish.Encrypt(headSpan)
	e.Fish.Encrypt(body)
}

func (e *BlowFishEncryptor) Decrypt(headSpan, body []byte) {
	e.Fish.Decrypt(headSpan)
	e.Fish.Decrypt(body)
}
