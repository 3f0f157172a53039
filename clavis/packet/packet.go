// Package packet maps a closed set of typed application messages onto
// compact wire tags.
//
// An application declares its message catalogue once by registering each
// variant with a Protocol. On the wire a packet is the one-byte tag
// followed by the variant's payload; variants without fields are just the
// tag. The tag space is total: a tag outside the catalogue is a hard
// decode error, never skipped.
//
// This layer is purely structural. It operates on plaintext and has no
// cryptographic responsibility; the frame layer seals its output.
package packet

import (
	"errors"
	"fmt"
)

// Tag identifies a packet variant on the wire.
type Tag uint8

var (
	ErrUnknownTag   = errors.New("packet: unknown packet tag")
	ErrDuplicateTag = errors.New("packet: tag already registered")
	ErrEmptyPacket  = errors.New("packet: empty packet")
)

// Packet is one variant of an application protocol. Implementations hold
// the variant's fields and encode/decode them through the field codec.
// Variants with no fields implement both payload methods as no-ops.
type Packet interface {
	// PacketTag returns the variant's fixed wire tag.
	PacketTag() Tag
	// EncodePayload appends the variant's fields to the encoder.
	EncodePayload(e *Encoder) error
	// DecodePayload reads the variant's fields from the decoder.
	DecodePayload(d *Decoder) error
}

type variant struct {
	name    string
	factory func() Packet
}

// Protocol is the protocol descriptor: the immutable tag→variant
// catalogue both endpoints agree on. Register every variant during
// definition time, before the descriptor is handed to a session; the
// registry is not safe for mutation concurrent with use.
type Protocol struct {
	name     string
	variants map[Tag]variant
}

// NewProtocol creates an empty descriptor. The name only appears in
// error messages.
func NewProtocol(name string) *Protocol {
	return &Protocol{name: name, variants: make(map[Tag]variant)}
}

// Register adds a variant to the descriptor. The factory returns a fresh
// zero value to decode into. Tags must be unique; the tag→variant mapping
// is a bijection fixed for the process lifetime.
func (p *Protocol) Register(tag Tag, name string, factory func() Packet) error {
	if existing, ok := p.variants[tag]; ok {
		return fmt.Errorf("%w: tag %d used by %s and %s", ErrDuplicateTag, tag, existing.name, name)
	}
	p.variants[tag] = variant{name: name, factory: factory}
	return nil
}

// MustRegister is Register but panics on a duplicate tag. Suitable for
// the package-level protocol definitions applications typically use.
func (p *Protocol) MustRegister(tag Tag, name string, factory func() Packet) {
	if err := p.Register(tag, name, factory); err != nil {
		panic(err)
	}
}

// Name returns the variant name for a tag, or "" if unregistered.
func (p *Protocol) Name(tag Tag) string {
	return p.variants[tag].name
}

// Encode serializes a packet as tag followed by payload.
func (p *Protocol) Encode(pkt Packet) ([]byte, error) {
	tag := pkt.PacketTag()
	if _, ok := p.variants[tag]; !ok {
		return nil, fmt.Errorf("%w: tag %d not in protocol %s", ErrUnknownTag, tag, p.name)
	}
	e := NewEncoder(64)
	e.Uint8(uint8(tag))
	if err := pkt.EncodePayload(e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Decode parses tag and payload into a fresh variant value. The payload
// must be consumed exactly; trailing bytes are malformed.
func (p *Protocol) Decode(data []byte) (Packet, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPacket
	}
	tag := Tag(data[0])
	v, ok := p.variants[tag]
	if !ok {
		return nil, fmt.Errorf("%w: tag %d not in protocol %s", ErrUnknownTag, tag, p.name)
	}

	pkt := v.factory()
	d := NewDecoder(data[1:])
	if err := pkt.DecodePayload(d); err != nil {
		return nil, fmt.Errorf("%s: %w", v.name, err)
	}
	if d.Remaining() != 0 {
		return nil, fmt.Errorf("%s: %w: %d trailing bytes", v.name, ErrMalformedPayload, d.Remaining())
	}
	return pkt, nil
}
