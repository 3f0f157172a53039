package packet

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// Test protocol: a small chat catalogue with bare, string, and nested
// record variants.

const (
	tagHeartbeat Tag = 1
	tagJoin      Tag = 2
	tagMessage   Tag = 3
	tagShutdown  Tag = 4
)

type heartbeat struct{}

func (heartbeat) PacketTag() Tag                  { return tagHeartbeat }
func (heartbeat) EncodePayload(e *Encoder) error  { return nil }
func (*heartbeat) DecodePayload(d *Decoder) error { return nil }

type join struct {
	Name string
}

func (join) PacketTag() Tag { return tagJoin }
func (p join) EncodePayload(e *Encoder) error {
	return e.String(p.Name)
}
func (p *join) DecodePayload(d *Decoder) error {
	var err error
	p.Name, err = d.String()
	return err
}

type chatMessage struct {
	Username  string
	Content   string
	Timestamp uint64
}

func (chatMessage) PacketTag() Tag { return tagMessage }
func (p chatMessage) EncodePayload(e *Encoder) error {
	if err := e.String(p.Username); err != nil {
		return err
	}
	if err := e.String(p.Content); err != nil {
		return err
	}
	e.Uint64(p.Timestamp)
	return nil
}
func (p *chatMessage) DecodePayload(d *Decoder) error {
	var err error
	if p.Username, err = d.String(); err != nil {
		return err
	}
	if p.Content, err = d.String(); err != nil {
		return err
	}
	p.Timestamp, err = d.Uint64()
	return err
}

type shutdown struct{}

func (shutdown) PacketTag() Tag                  { return tagShutdown }
func (shutdown) EncodePayload(e *Encoder) error  { return nil }
func (*shutdown) DecodePayload(d *Decoder) error { return nil }

func testProtocol(t testing.TB) *Protocol {
	p := NewProtocol("chat-test")
	p.MustRegister(tagHeartbeat, "Heartbeat", func() Packet { return &heartbeat{} })
	p.MustRegister(tagJoin, "Join", func() Packet { return &join{} })
	p.MustRegister(tagMessage, "Message", func() Packet { return &chatMessage{} })
	p.MustRegister(tagShutdown, "Shutdown", func() Packet { return &shutdown{} })
	return p
}

func TestRoundTrip(t *testing.T) {
	p := testProtocol(t)

	packets := []Packet{
		&heartbeat{},
		&join{Name: "alice"},
		&chatMessage{Username: "alice", Content: "hello there", Timestamp: 1724630400},
		&shutdown{},
	}

	for _, pkt := range packets {
		wire, err := p.Encode(pkt)
		if err != nil {
			t.Fatalf("Encode %T: %v", pkt, err)
		}
		got, err := p.Decode(wire)
		if err != nil {
			t.Fatalf("Decode %T: %v", pkt, err)
		}
		if !reflect.DeepEqual(got, pkt) {
			t.Fatalf("round trip mismatch: %#v != %#v", got, pkt)
		}
	}
}

func TestBareVariantIsTagOnly(t *testing.T) {
	p := testProtocol(t)
	wire, err := p.Encode(&heartbeat{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(wire) != 1 || Tag(wire[0]) != tagHeartbeat {
		t.Fatalf("bare variant must serialize to just the tag, got %v", wire)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	p := testProtocol(t)
	_, err := p.Decode([]byte{0xEE, 1, 2, 3})
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestDecodeEmpty(t *testing.T) {
	p := testProtocol(t)
	if _, err := p.Decode(nil); !errors.Is(err, ErrEmptyPacket) {
		t.Fatalf("expected ErrEmptyPacket, got %v", err)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	p := testProtocol(t)
	wire, _ := p.Encode(&join{Name: "alice"})
	_, err := p.Decode(wire[:len(wire)-2])
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	p := testProtocol(t)
	wire, _ := p.Encode(&join{Name: "alice"})
	_, err := p.Decode(append(wire, 0x00))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestRegisterDuplicateTag(t *testing.T) {
	p := testProtocol(t)
	err := p.Register(tagJoin, "Join2", func() Packet { return &join{} })
	if !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}
}

func TestEncodeUnregisteredPacket(t *testing.T) {
	p := NewProtocol("empty")
	if _, err := p.Encode(&join{Name: "x"}); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestDecoderBool(t *testing.T) {
	e := NewEncoder(2)
	e.Bool(true)
	e.Bool(false)
	d := NewDecoder(e.Bytes())
	v1, err := d.Bool()
	if err != nil || !v1 {
		t.Fatalf("Bool true: %v %v", v1, err)
	}
	v2, err := d.Bool()
	if err != nil || v2 {
		t.Fatalf("Bool false: %v %v", v2, err)
	}

	if _, err := NewDecoder([]byte{7}).Bool(); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for bool byte 7, got %v", err)
	}
}

func TestProtocolName(t *testing.T) {
	p := testProtocol(t)
	if got := p.Name(tagJoin); got != "Join" {
		t.Fatalf("Name(tagJoin) = %q, want Join", got)
	}
	if got := p.Name(0xEE); got != "" {
		t.Fatalf("Name of unregistered tag = %q, want empty", got)
	}
}

func TestEncoderLen(t *testing.T) {
	e := NewEncoder(16)
	if e.Len() != 0 {
		t.Fatalf("fresh encoder Len = %d", e.Len())
	}
	e.Uint32(7)
	if err := e.String("abc"); err != nil {
		t.Fatalf("String: %v", err)
	}
	if want := 4 + 2 + 3; e.Len() != want {
		t.Fatalf("Len = %d, want %d", e.Len(), want)
	}
	if e.Len() != len(e.Bytes()) {
		t.Fatalf("Len and Bytes disagree")
	}
}

func TestEncoderBytes32(t *testing.T) {
	blob := make([]byte, 300)
	for i := range blob {
		blob[i] = byte(i)
	}

	e := NewEncoder(0)
	if err := e.Bytes32(blob); err != nil {
		t.Fatalf("Bytes32: %v", err)
	}

	d := NewDecoder(e.Bytes())
	got, err := d.Bytes32()
	if err != nil {
		t.Fatalf("decode Bytes32: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("blob round trip mismatch")
	}
	if d.Remaining() != 0 {
		t.Fatalf("trailing bytes after blob")
	}
}

func TestEncoderStringTooLong(t *testing.T) {
	e := NewEncoder(0)
	err := e.String(string(make([]byte, 70000)))
	if !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
}
