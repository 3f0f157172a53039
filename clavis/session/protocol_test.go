package session

// Test message catalogue: a small chat protocol exercising bare
// variants, string payloads and nested records.

import "github.com/thewander02/clavis-go/clavis/packet"

const (
	tagHeartbeat packet.Tag = 1
	tagJoin      packet.Tag = 2
	tagLeave     packet.Tag = 3
	tagMessage   packet.Tag = 4
	tagStatus    packet.Tag = 5
	tagPing      packet.Tag = 6
	tagPong      packet.Tag = 7
	tagShutdown  packet.Tag = 8
)

type Heartbeat struct{}

func (Heartbeat) PacketTag() packet.Tag                { return tagHeartbeat }
func (Heartbeat) EncodePayload(*packet.Encoder) error  { return nil }
func (*Heartbeat) DecodePayload(*packet.Decoder) error { return nil }

type Join struct{ Name string }

func (Join) PacketTag() packet.Tag { return tagJoin }
func (p Join) EncodePayload(e *packet.Encoder) error {
	return e.String(p.Name)
}
func (p *Join) DecodePayload(d *packet.Decoder) error {
	var err error
	p.Name, err = d.String()
	return err
}

type Leave struct{ Name string }

func (Leave) PacketTag() packet.Tag { return tagLeave }
func (p Leave) EncodePayload(e *packet.Encoder) error {
	return e.String(p.Name)
}
func (p *Leave) DecodePayload(d *packet.Decoder) error {
	var err error
	p.Name, err = d.String()
	return err
}

type ChatMessage struct {
	Username  string
	Content   string
	Timestamp uint64
}

func (ChatMessage) PacketTag() packet.Tag { return tagMessage }
func (p ChatMessage) EncodePayload(e *packet.Encoder) error {
	if err := e.String(p.Username); err != nil {
		return err
	}
	if err := e.String(p.Content); err != nil {
		return err
	}
	e.Uint64(p.Timestamp)
	return nil
}
func (p *ChatMessage) DecodePayload(d *packet.Decoder) error {
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

type Status struct {
	UsersOnline  uint32
	ServerUptime uint64
}

func (Status) PacketTag() packet.Tag { return tagStatus }
func (p Status) EncodePayload(e *packet.Encoder) error {
	e.Uint32(p.UsersOnline)
	e.Uint64(p.ServerUptime)
	return nil
}
func (p *Status) DecodePayload(d *packet.Decoder) error {
	var err error
	if p.UsersOnline, err = d.Uint32(); err != nil {
		return err
	}
	p.ServerUptime, err = d.Uint64()
	return err
}

type Ping struct{ Message string }

func (Ping) PacketTag() packet.Tag { return tagPing }
func (p Ping) EncodePayload(e *packet.Encoder) error {
	return e.String(p.Message)
}
func (p *Ping) DecodePayload(d *packet.Decoder) error {
	var err error
	p.Message, err = d.String()
	return err
}

type Pong struct{ Message string }

func (Pong) PacketTag() packet.Tag { return tagPong }
func (p Pong) EncodePayload(e *packet.Encoder) error {
	return e.String(p.Message)
}
func (p *Pong) DecodePayload(d *packet.Decoder) error {
	var err error
	p.Message, err = d.String()
	return err
}

type Shutdown struct{}

func (Shutdown) PacketTag() packet.Tag                { return tagShutdown }
func (Shutdown) EncodePayload(*packet.Encoder) error  { return nil }
func (*Shutdown) DecodePayload(*packet.Decoder) error { return nil }

func chatProtocol() *packet.Protocol {
	p := packet.NewProtocol("chat")
	p.MustRegister(tagHeartbeat, "Heartbeat", func() packet.Packet { return &Heartbeat{} })
	p.MustRegister(tagJoin, "Join", func() packet.Packet { return &Join{} })
	p.MustRegister(tagLeave, "Leave", func() packet.Packet { return &Leave{} })
	p.MustRegister(tagMessage, "Message", func() packet.Packet { return &ChatMessage{} })
	p.MustRegister(tagStatus, "Status", func() packet.Packet { return &Status{} })
	p.MustRegister(tagPing, "Ping", func() packet.Packet { return &Ping{} })
	p.MustRegister(tagPong, "Pong", func() packet.Packet { return &Pong{} })
	p.MustRegister(tagShutdown, "Shutdown", func() packet.Packet { return &Shutdown{} })
	return p
}
