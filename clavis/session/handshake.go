package session

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/thewander02/clavis-go/clavis/crypto"
	"github.com/thewander02/clavis-go/clavis/frame"
	"github.com/thewander02/clavis-go/clavis/packet"
)

// Role fixes an endpoint's side of the handshake for the session
// lifetime. It determines message order and which derived key encrypts
// which direction.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return "unknown"
	}
}

// DefaultMaxPacketSize bounds a packet's plaintext when Options leaves
// MaxPacketSize zero.
const DefaultMaxPacketSize = 64 * 1024

var (
	ErrHandshakeMalformed = errors.New("session: malformed handshake message")
	ErrHandshakeTimeout   = errors.New("session: handshake timed out")
	ErrClosed             = errors.New("session: connection closed")
	ErrNilProtocol        = errors.New("session: options must carry a protocol descriptor")
)

// Options configures a session. The zero MaxPacketSize means
// DefaultMaxPacketSize. PSK, when set, must match the peer's or every
// frame after the handshake fails authentication; there is no explicit
// mismatch signal, so nothing leaks to a probing peer. Compression must
// be configured identically on both ends.
type Options struct {
	MaxPacketSize uint32
	PSK           []byte
	Protocol      *packet.Protocol
	Compression   bool
}

// Handshake runs the ephemeral key exchange over rw and derives the two
// directional session keys. The handshake message is exactly the 32-byte
// X25519 public key; the Initiator writes first. Ephemeral key material
// and the raw shared secret are wiped before returning. On any failure
// no Session is produced.
func Handshake(rw io.ReadWriteCloser, role Role, opts *Options) (*Session, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.MaxPacketSize == 0 {
		o.MaxPacketSize = DefaultMaxPacketSize
	}
	if o.Protocol == nil {
		return nil, ErrNilProtocol
	}

	kp, err := crypto.GenerateX25519()
	if err != nil {
		return nil, fmt.Errorf("session: generate ephemeral key: %w", err)
	}
	defer kp.Zero()

	var peerPub [crypto.KeySize]byte
	switch role {
	case Initiator:
		if err := writePublicKey(rw, kp.PublicKey); err != nil {
			return nil, err
		}
		if err := readPublicKey(rw, &peerPub); err != nil {
			return nil, err
		}
	case Responder:
		if err := readPublicKey(rw, &peerPub); err != nil {
			return nil, err
		}
		if err := writePublicKey(rw, kp.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("session: invalid role %d", role)
	}

	shared, err := crypto.ECDH(kp.PrivateKey, peerPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshakeMalformed, err)
	}
	defer crypto.Zero(shared)

	var initiatorPub, responderPub [crypto.KeySize]byte
	if role == Initiator {
		initiatorPub, responderPub = kp.PublicKey, peerPub
	} else {
		initiatorPub, responderPub = peerPub, kp.PublicKey
	}

	initKey, respKey, err := crypto.DeriveSessionKeys(shared, o.PSK, initiatorPub, responderPub)
	if err != nil {
		return nil, fmt.Errorf("session: derive keys: %w", err)
	}
	defer crypto.Zero(initKey)
	defer crypto.Zero(respKey)

	// The initiator sends under the initiator→responder key and
	// receives under the other; the responder mirrors it.
	sendKey, recvKey := initKey, respKey
	if role == Responder {
		sendKey, recvKey = respKey, initKey
	}

	sendState, err := frame.NewCipherState(sendKey)
	if err != nil {
		return nil, err
	}
	recvState, err := frame.NewCipherState(recvKey)
	if err != nil {
		return nil, err
	}

	return newSession(rw, o, sendState, recvState), nil
}

func writePublicKey(w io.Writer, pub [crypto.KeySize]byte) error {
	if _, err := w.Write(pub[:]); err != nil {
		return handshakeIOError(err)
	}
	return nil
}

func readPublicKey(r io.Reader, pub *[crypto.KeySize]byte) error {
	if _, err := io.ReadFull(r, pub[:]); err != nil {
		return handshakeIOError(err)
	}
	return nil
}

// handshakeIOError classifies transport failures during the exchange. A
// truncated key is a close, not a malformed message: the peer never got
// to say anything wrong.
func handshakeIOError(err error) error {
	var nerr net.Error
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return fmt.Errorf("%w: %v", ErrHandshakeTimeout, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return fmt.Errorf("%w: stream closed mid-handshake", ErrClosed)
	default:
		return fmt.Errorf("session: handshake i/o: %w", err)
	}
}
