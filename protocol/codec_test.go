package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"nhooyr.io/websocket"
)

func roundTrip(t *testing.T, codec Codec, event string, payload, out interface{}) websocket.MessageType {
	t.Helper()
	m, err := NewMessage(event, payload)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	typ, b, err := codec.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := codec.Decode(typ, b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Event != event {
		t.Fatalf("Event = %q, want %q", got.Event, event)
	}
	if err := got.Decode(out); err != nil {
		t.Fatalf("payload Decode: %v", err)
	}
	return typ
}

func TestCodecRoundTrip(t *testing.T) {
	hp, maxHP := 80, 100
	tests := map[string]struct {
		codec   string
		frame   websocket.MessageType
		event   string
		payload interface{}
		out     func() interface{}
	}{
		"json moved": {
			codec:   "json",
			frame:   websocket.MessageText,
			event:   EventPlayerMoved,
			payload: &PlayerMoved{SID: "abc", X: 12.5, Y: -3},
			out:     func() interface{} { return &PlayerMoved{} },
		},
		"proto moved": {
			codec:   "proto",
			frame:   websocket.MessageBinary,
			event:   EventPlayerMoved,
			payload: &PlayerMoved{SID: "abc", X: 12.5, Y: -3},
			out:     func() interface{} { return &PlayerMoved{} },
		},
		"proto nickname success": {
			codec:   "proto",
			frame:   websocket.MessageBinary,
			event:   EventNicknameSuccess,
			payload: &NicknameSuccess{Nickname: "neo", Skin: "skin_fox", HP: &hp, MaxHP: &maxHP},
			out:     func() interface{} { return &NicknameSuccess{} },
		},
		"proto current players": {
			codec: "proto",
			frame: websocket.MessageBinary,
			event: EventCurrentPlayers,
			payload: &CurrentPlayers{
				"a": {X: 1, Y: 2, Color: "#ff0000", Nickname: "alice"},
				"b": {X: -1, Y: 0.25},
			},
			out: func() interface{} { return &CurrentPlayers{} },
		},
		"json world time": {
			codec:   "",
			frame:   websocket.MessageText,
			event:   EventTimeUpdate,
			payload: &WorldTime{WorldTime: 0.375},
			out:     func() interface{} { return &WorldTime{} },
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			codec, err := NewCodec(tt.codec)
			if err != nil {
				t.Fatalf("NewCodec: %v", err)
			}
			out := tt.out()
			if typ := roundTrip(t, codec, tt.event, tt.payload, out); typ != tt.frame {
				t.Fatalf("frame type = %v, want %v", typ, tt.frame)
			}
			if diff := cmp.Diff(tt.payload, out); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodecStringPayload(t *testing.T) {
	for _, name := range []string{"json", "proto"} {
		codec, _ := NewCodec(name)
		var sid string
		roundTrip(t, codec, EventPlayerDisconnected, "abc", &sid)
		if sid != "abc" {
			t.Fatalf("%s: sid = %q, want abc", name, sid)
		}
	}
}

func TestNumericIDs(t *testing.T) {
	codec := JSONCodec{}
	m, err := codec.Decode(websocket.MessageText, []byte(`{"event":"npc_data","data":[{"id":7,"x":1,"y":2},{"id":"boss","x":0,"y":0}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var npcs []NPC
	if err := m.Decode(&npcs); err != nil {
		t.Fatalf("payload Decode: %v", err)
	}
	if len(npcs) != 2 || npcs[0].ID != "7" || npcs[1].ID != "boss" {
		t.Fatalf("ids = %+v", npcs)
	}

	// Proto carries every number as a double.
	typ, b, err := ProtoCodec{}.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	m, err = ProtoCodec{}.Decode(typ, b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	npcs = nil
	if err := m.Decode(&npcs); err != nil {
		t.Fatalf("payload Decode: %v", err)
	}
	if npcs[0].ID != "7" {
		t.Fatalf("id = %q, want 7", npcs[0].ID)
	}
}

func TestMalformed(t *testing.T) {
	tests := map[string]struct {
		codec Codec
		frame []byte
	}{
		"json garbage":   {codec: JSONCodec{}, frame: []byte("{not json")},
		"json no event":  {codec: JSONCodec{}, frame: []byte(`{"data":{}}`)},
		"proto garbage":  {codec: ProtoCodec{}, frame: []byte{0xff, 0xff, 0xff}},
		"proto no event": {codec: ProtoCodec{}, frame: nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tt.codec.Decode(websocket.MessageBinary, tt.frame); !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestMessageDecodeErrors(t *testing.T) {
	var moved PlayerMoved
	if err := (Message{Event: EventPlayerMoved}).Decode(&moved); !errors.Is(err, ErrMalformed) {
		t.Fatalf("empty payload err = %v, want ErrMalformed", err)
	}
	if err := (Message{Event: EventPlayerMoved, Data: []byte(`"nope"`)}).Decode(&moved); !errors.Is(err, ErrMalformed) {
		t.Fatalf("wrong shape err = %v, want ErrMalformed", err)
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := NewCodec("xml"); !errors.Is(err, ErrUnknownCodec) {
		t.Fatalf("err = %v, want ErrUnknownCodec", err)
	}
}
