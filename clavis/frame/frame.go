// Package frame implements the encrypted record layer: length-delimited
// AEAD frames over an ordered byte stream.
//
// Wire format:
//
//	4 bytes: ciphertext length including tag (big endian)
//	N bytes: ChaCha20-Poly1305 ciphertext || 16-byte tag
//
// Nonces are never carried on the wire. Each direction keeps a monotonic
// counter and both ends derive the nonce from frame position alone, so a
// duplicated, dropped or reordered frame fails authentication.
package frame

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// LengthPrefixSize is the size of the frame length field.
	LengthPrefixSize = 4

	// Overhead is the per-frame ciphertext expansion (Poly1305 tag).
	Overhead = chacha20poly1305.Overhead
)

var (
	ErrKeySize              = errors.New("frame: key must be 32 bytes")
	ErrPayloadTooLarge      = errors.New("frame: payload exceeds max packet size")
	ErrFrameOversized       = errors.New("frame: declared frame length exceeds max packet size")
	ErrAuthenticationFailed = errors.New("frame: frame authentication failed")
	ErrNonceExhausted       = errors.New("frame: nonce counter exhausted")
)

// CipherState is one direction's encryption state: a session key and the
// strictly monotonic nonce counter. A CipherState is owned by exactly one
// session half and is never shared between directions.
type CipherState struct {
	aead    cipher.AEAD
	counter uint64
}

// NewCipherState creates a directional cipher state from a 32-byte session key.
func NewCipherState(key []byte) (*CipherState, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &CipherState{aead: aead}, nil
}

// Counter returns the number of frames sealed or opened so far.
func (cs *CipherState) Counter() uint64 { return cs.counter }

// nextNonce returns the nonce for the current frame position. The last
// counter value is reserved so the counter itself can never wrap.
func (cs *CipherState) nextNonce() ([chacha20poly1305.NonceSize]byte, error) {
	var nonce [chacha20poly1305.NonceSize]byte
	if cs.counter == math.MaxUint64 {
		return nonce, ErrNonceExhausted
	}
	binary.BigEndian.PutUint64(nonce[4:], cs.counter)
	return nonce, nil
}

// WriteFrame seals plaintext under the next nonce and writes the whole
// frame with a single Write call. The size bound is checked before any
// byte goes out, so the stream is never left half-written by an oversized
// payload. Nonce exhaustion is fatal to the session.
func WriteFrame(w io.Writer, cs *CipherState, plaintext []byte, maxPlaintext uint32) error {
	if uint64(len(plaintext)) > uint64(maxPlaintext) {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(plaintext), maxPlaintext)
	}
	nonce, err := cs.nextNonce()
	if err != nil {
		return err
	}

	buf := make([]byte, LengthPrefixSize, LengthPrefixSize+len(plaintext)+Overhead)
	buf = cs.aead.Seal(buf, nonce[:], plaintext, nil)
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(buf)-LengthPrefixSize))

	if _, err := w.Write(buf); err != nil {
		return err
	}
	cs.counter++
	return nil
}

// ReadFrame reads one frame and opens it with the expected next nonce.
// The declared length is validated against the bound before the body is
// read, so a hostile peer cannot force a huge allocation. Authentication
// failure means the stream is compromised or desynchronized; the caller
// must tear the session down.
func ReadFrame(r io.Reader, cs *CipherState, maxPlaintext uint32) ([]byte, error) {
	var lenBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	frameLen := binary.BigEndian.Uint32(lenBuf[:])
	if uint64(frameLen) > uint64(maxPlaintext)+Overhead {
		return nil, fmt.Errorf("%w: %d", ErrFrameOversized, frameLen)
	}

	body := make([]byte, frameLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	nonce, err := cs.nextNonce()
	if err != nil {
		return nil, err
	}
	plaintext, err := cs.aead.Open(body[:0], nonce[:], body, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	cs.counter++
	return plaintext, nil
}
