package clavis

import (
	"io"

	"github.com/thewander02/clavis-go/clavis/session"
)

// Role aliases for callers that only import the root package.
type Role = session.Role

const (
	Initiator = session.Initiator
	Responder = session.Responder
)

// Options configures an EncryptedStream; see session.Options.
type Options = session.Options

// Reader is the receive half of an established stream.
type Reader = session.Reader

// Writer is the send half of an established stream.
type Writer = session.Writer

// EncryptedStream is the high-level handle for one encrypted connection.
// It runs the handshake at construction and then only hands out the two
// session halves; all per-direction state lives in them.
type EncryptedStream struct {
	sess *session.Session
}

// NewEncryptedStream wraps a connected byte stream in an encrypted
// session. The stream must be ordered, reliable and duplex; role fixes
// which side of the handshake this endpoint plays.
func NewEncryptedStream(rw io.ReadWriteCloser, role Role, opts *Options) (*EncryptedStream, error) {
	sess, err := session.Handshake(rw, role, opts)
	if err != nil {
		return nil, err
	}
	return &EncryptedStream{sess: sess}, nil
}

// Split returns the stream's read and write halves. Each may be moved to
// its own goroutine.
func (s *EncryptedStream) Split() (*Reader, *Writer) {
	return s.sess.Split()
}

// Close closes the underlying byte stream; both halves fail afterwards.
func (s *EncryptedStream) Close() error {
	return s.sess.Close()
}
