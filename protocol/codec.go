package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"nhooyr.io/websocket"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownCodec = errors.New("unknown codec")
)

// Message is one named event and its still-encoded payload.
type Message struct {
	Event string
	Data  json.RawMessage
}

func NewMessage(event string, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encoding %s: %w", event, err)
	}
	return Message{Event: event, Data: data}, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrMalformed, m.Event)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, m.Event, err)
	}
	return nil
}

// Codec frames messages for the websocket.
type Codec interface {
	Encode(m Message) (websocket.MessageType, []byte, error)
	Decode(typ websocket.MessageType, b []byte) (Message, error)
}

func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "proto", "protobuf":
		return ProtoCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JSONCodec sends {"event", "data"} envelopes as text frames.
type JSONCodec struct{}

func (JSONCodec) Encode(m Message) (websocket.MessageType, []byte, error) {
	b, err := json.Marshal(envelope{Event: m.Event, Data: m.Data})
	if err != nil {
		return 0, nil, err
	}
	return websocket.MessageText, b, nil
}

func (JSONCodec) Decode(_ websocket.MessageType, b []byte) (Message, error) {
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.Event == "" {
		return Message{}, fmt.Errorf("%w: missing event name", ErrMalformed)
	}
	return Message{Event: e.Event, Data: e.Data}, nil
}

// ProtoCodec sends the same envelope as a google.protobuf.Struct in binary
// frames.
type ProtoCodec struct{}

func (ProtoCodec) Encode(m Message) (websocket.MessageType, []byte, error) {
	fields := map[string]*structpb.Value{
		"event": structpb.NewStringValue(m.Event),
	}
	if len(m.Data) > 0 {
		var data interface{}
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		v, err := structpb.NewValue(data)
		if err != nil {
			return 0, nil, err
		}
		fields["data"] = v
	}
	b, err := proto.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return 0, nil, err
	}
	return websocket.MessageBinary, b, nil
}

func (ProtoCodec) Decode(_ websocket.MessageType, b []byte) (Message, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	event := s.Fields["event"].GetStringValue()
	if event == "" {
		return Message{}, fmt.Errorf("%w: missing event name", ErrMalformed)
	}
	m := Message{Event: event}
	if data, ok := s.Fields["data"]; ok {
		b, err := protojson.Marshal(data)
		if err != nil {
			return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		m.Data = b
	}
	return m, nil
}
