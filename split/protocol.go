// Package split runs the first fully-connected layer of a TextCNN on a
// server that only ever sees encrypted features.
package split

import (
	"encoding/gob"
	"fmt"
	"io"
)

func init() {
	gob.Register(SetupPayload{})
	gob.Register(FeaturesPayload{})
	gob.Register(ScoresPayload{})
}

// MessageType defines message types for the scoring protocol
type MessageType int

const (
	MsgSetup MessageType = iota
	MsgFeatures
	MsgScores
	MsgDone
	MsgError
)

// Message represents a message in the scoring protocol
type Message struct {
	Type    MessageType
	Payload interface{}
}

// SetupPayload carries the client's public evaluation keys.
type SetupPayload struct {
	LogN     int
	EvalKeys []byte
}

// FeaturesPayload holds the encrypted flattened features of one document,
// one serialized ciphertext per slot-sized chunk.
type FeaturesPayload struct {
	RequestID int
	Chunks    [][]byte
}

// ScoresPayload holds one serialized ciphertext per hidden unit, with the
// pre-activation in slot 0.
type ScoresPayload struct {
	RequestID int
	Scores    [][]byte
}

// Protocol handles gob-framed communication over a byte stream.
type Protocol struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewProtocol creates a new protocol handler
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	p := &Protocol{}
	if w != nil {
		p.encoder = gob.NewEncoder(w)
	}
	if r != nil {
		p.decoder = gob.NewDecoder(r)
	}
	return p
}

// Send sends a message
func (p *Protocol) Send(msg *Message) error {
	return p.encoder.Encode(msg)
}

// Receive receives a message
func (p *Protocol) Receive() (*Message, error) {
	var msg Message
	if err := p.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (p *Protocol) SendSetup(logN int, evalKeys []byte) error {
	return p.Send(&Message{Type: MsgSetup, Payload: SetupPayload{LogN: logN, EvalKeys: evalKeys}})
}

func (p *Protocol) SendFeatures(id int, chunks [][]byte) error {
	return p.Send(&Message{Type: MsgFeatures, Payload: FeaturesPayload{RequestID: id, Chunks: chunks}})
}

func (p *Protocol) SendScores(id int, scores [][]byte) error {
	return p.Send(&Message{Type: MsgScores, Payload: ScoresPayload{RequestID: id, Scores: scores}})
}

// SendDone signals completion
func (p *Protocol) SendDone() error {
	return p.Send(&Message{Type: MsgDone})
}

// SendError sends an error message
func (p *Protocol) SendError(err error) error {
	return p.Send(&Message{
		Type:    MsgError,
		Payload: err.Error(),
	})
}

// receive reads the next message, turning MsgDone into io.EOF and MsgError
// into a remote error.
func (p *Protocol) receive(want MessageType) (*Message, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	switch msg.Type {
	case MsgError:
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	case MsgDone:
		return nil, io.EOF
	case want:
		return msg, nil
	}
	return nil, fmt.Errorf("expected message %d, got %d", want, msg.Type)
}

// ReceiveScores receives the server's answer to one features request.
func (p *Protocol) ReceiveScores() (*ScoresPayload, error) {
	msg, err := p.receive(MsgScores)
	if err != nil {
		return nil, err
	}
	payload, ok := msg.Payload.(ScoresPayload)
	if !ok {
		return nil, fmt.Errorf("invalid scores payload type")
	}
	return &payload, nil
}

// ReceiveFeatures receives a features payload
func (p *Protocol) ReceiveFeatures() (*FeaturesPayload, error) {
	msg, err := p.receive(MsgFeatures)
	if err != nil {
		return nil, err
	}
	payload, ok := msg.Payload.(FeaturesPayload)
	if !ok {
		return nil, fmt.Errorf("invalid features payload type")
	}
	return &payload, nil
}

// ReceiveSetup receives the client's key material.
func (p *Protocol) ReceiveSetup() (*SetupPayload, error) {
	msg, err := p.receive(MsgSetup)
	if err != nil {
		return nil, err
	}
	payload, ok := msg.Payload.(SetupPayload)
	if !ok {
		return nil, fmt.Errorf("invalid setup payload type")
	}
	return &payload, nil
}
