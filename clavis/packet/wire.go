package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrMalformedPayload = errors.New("packet: malformed payload")
	ErrStringTooLong    = errors.New("packet: string exceeds 65535 bytes")
	ErrBytesTooLong     = errors.New("packet: byte field exceeds 4 GiB")
)

// Encoder accumulates a packet payload. All integers are big endian;
// strings carry a uint16 length prefix, byte blobs a uint32 prefix.
// Nested records encode by calling their own payload methods against the
// same Encoder.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with the given initial capacity hint.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded payload.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) Uint8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) Uint16(v uint16) {
	e.buf = binary.BigEndian.AppendUint16(e.buf, v)
}

func (e *Encoder) Uint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) Uint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

// String writes a uint16 length prefix followed by the raw bytes.
func (e *Encoder) String(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	e.Uint16(uint16(len(s)))
	e.buf = append(e.buf, s...)
	return nil
}

// Bytes32 writes a uint32 length prefix followed by the raw bytes.
func (e *Encoder) Bytes32(b []byte) error {
	if uint64(len(b)) > math.MaxUint32 {
		return ErrBytesTooLong
	}
	e.Uint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
	return nil
}

// Decoder consumes a packet payload produced by Encoder. Every accessor
// reports ErrMalformedPayload on short input; the registry additionally
// rejects payloads with trailing bytes, so decoding is exact.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder wraps a payload for decoding.
func NewDecoder(payload []byte) *Decoder {
	return &Decoder{buf: payload}
}

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

func (d *Decoder) take(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedPayload, n, d.Remaining())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool byte %d", ErrMalformedPayload, v)
	}
}

func (d *Decoder) String() (string, error) {
	n, err := d.Uint16()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) Bytes32() ([]byte, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	b, err := d.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}
