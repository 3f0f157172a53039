package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/thewander02/clavis-go/clavis/compress"
	"github.com/thewander02/clavis-go/clavis/frame"
	"github.com/thewander02/clavis-go/clavis/packet"
)

const (
	flagRaw        = 0
	flagCompressed = 1
)

// Session is a completed encrypted channel over a duplex byte stream.
// It holds the two directional cipher states until Split hands each to
// its half. A Session belongs to exactly one connection and is never
// reused.
type Session struct {
	rw        io.ReadWriteCloser
	reader    *Reader
	writer    *Writer
	closeOnce sync.Once
	closeErr  error
}

func newSession(rw io.ReadWriteCloser, o Options, sendState, recvState *frame.CipherState) *Session {
	s := &Session{rw: rw}
	s.reader = &Reader{
		src:         rw,
		state:       recvState,
		proto:       o.Protocol,
		maxPacket:   o.MaxPacketSize,
		compression: o.Compression,
	}
	s.writer = &Writer{
		dst:         rw,
		state:       sendState,
		proto:       o.Protocol,
		maxPacket:   o.MaxPacketSize,
		compression: o.Compression,
	}
	return s
}

// Split returns the session's two halves. The Reader exclusively owns
// the receive cipher state and the Writer the send state; nothing either
// half does can observe or disturb the other's nonce counter, so one
// reading task and one writing task run concurrently without shared
// locks.
func (s *Session) Split() (*Reader, *Writer) {
	return s.reader, s.writer
}

// Close closes the underlying stream. Pending and later operations on
// both halves fail with ErrClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rw.Close()
	})
	return s.closeErr
}

// Reader is the receive half. Concurrent ReadPacket calls are serialized;
// interleaved partial reads would corrupt framing. Any crypto or framing
// failure is fatal: the error latches and every later call returns it,
// because an AEAD nonce stream cannot be resynchronized past a bad frame.
type Reader struct {
	mu          sync.Mutex
	src         io.Reader
	state       *frame.CipherState
	proto       *packet.Protocol
	maxPacket   uint32
	compression bool
	err         error
}

// ReadPacket reads and decrypts the next frame and decodes the packet
// inside it. It blocks until a full frame is available or the stream
// fails. Deadlines and cancellation belong to the underlying stream;
// note that abandoning a read mid-frame leaves the byte position inside
// a frame, after which the session can only be closed.
func (r *Reader) ReadPacket() (packet.Packet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	plaintext, err := frame.ReadFrame(r.src, r.state, r.maxPlaintext())
	if err != nil {
		return nil, r.fatal(mapStreamError(err))
	}

	payload := plaintext
	if r.compression {
		payload, err = r.unwrap(plaintext)
		if err != nil {
			return nil, r.fatal(err)
		}
	}

	pkt, err := r.proto.Decode(payload)
	if err != nil {
		// Unknown tags and malformed payloads mean protocol mismatch
		// or an attacker; there is no safe way to skip and resync.
		return nil, r.fatal(err)
	}
	return pkt, nil
}

// Counter reports how many frames this half has accepted.
func (r *Reader) Counter() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Counter()
}

func (r *Reader) maxPlaintext() uint32 {
	if r.compression {
		return r.maxPacket + 1
	}
	return r.maxPacket
}

// unwrap strips the compression flag byte and inflates the body if the
// peer compressed it. The inflated size is capped at the packet bound.
func (r *Reader) unwrap(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("%w: missing compression flag", packet.ErrMalformedPayload)
	}
	flag, body := plaintext[0], plaintext[1:]
	switch flag {
	case flagRaw:
		return body, nil
	case flagCompressed:
		out, err := compress.Decompress(body, int(r.maxPacket))
		if errors.Is(err, compress.ErrOutputTooLarge) {
			return nil, fmt.Errorf("%w: compressed packet inflates past bound", frame.ErrFrameOversized)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", packet.ErrMalformedPayload, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: bad compression flag %d", packet.ErrMalformedPayload, flag)
	}
}

func (r *Reader) fatal(err error) error {
	r.err = err
	return err
}

// Writer is the send half. Concurrent WritePacket calls are serialized
// and each packet leaves in a single Write of the whole frame, so frames
// from one Writer never interleave. Oversized packets are rejected
// before any byte is written and are not fatal; I/O failures and nonce
// exhaustion latch the half.
type Writer struct {
	mu          sync.Mutex
	dst         io.Writer
	state       *frame.CipherState
	proto       *packet.Protocol
	maxPacket   uint32
	compression bool
	err         error
}

// WritePacket encodes, optionally compresses, encrypts and sends one
// packet.
func (w *Writer) WritePacket(pkt packet.Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	data, err := w.proto.Encode(pkt)
	if err != nil {
		return err
	}
	if uint64(len(data)) > uint64(w.maxPacket) {
		return fmt.Errorf("%w: packet is %d bytes, max %d", frame.ErrPayloadTooLarge, len(data), w.maxPacket)
	}

	plaintext := data
	if w.compression {
		plaintext = w.wrap(data)
	}

	if err := frame.WriteFrame(w.dst, w.state, plaintext, w.maxPlaintext()); err != nil {
		if errors.Is(err, frame.ErrPayloadTooLarge) {
			// Nothing was written; the session stays usable.
			return err
		}
		w.err = mapStreamError(err)
		return w.err
	}
	return nil
}

// Counter reports how many frames this half has sent.
func (w *Writer) Counter() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Counter()
}

func (w *Writer) maxPlaintext() uint32 {
	if w.compression {
		return w.maxPacket + 1
	}
	return w.maxPacket
}

// wrap prepends the compression flag, compressing only when it helps.
func (w *Writer) wrap(data []byte) []byte {
	if shrunk, err := compress.Compress(data); err == nil && len(shrunk) < len(data) {
		return append([]byte{flagCompressed}, shrunk...)
	}
	return append([]byte{flagRaw}, data...)
}

// mapStreamError folds transport shutdown conditions into ErrClosed and
// leaves everything else as-is.
func mapStreamError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
