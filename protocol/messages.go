package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an entity id. NPC ids arrive as numbers from some servers, so it
// accepts both JSON strings and numbers.
type ID string

func (i *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: id %s", ErrMalformed, b)
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*i = ID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*i = ID(n.String())
	return nil
}

type Session struct {
	SID string `json:"sid"`
}

type SetNickname struct {
	Nickname string `json:"nickname"`
	Skin     string `json:"skin"`
	Token    string `json:"token,omitempty"`
}

type NicknameSuccess struct {
	Nickname string `json:"nickname"`
	Skin     string `json:"skin"`
	HP       *int   `json:"hp,omitempty"`
	MaxHP    *int   `json:"max_hp,omitempty"`
}

type NicknameError struct {
	Message string `json:"message"`
}

type PlayerInfo struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color,omitempty"`
	Nickname string  `json:"nickname,omitempty"`
	Skin     string  `json:"skin,omitempty"`
	HP       *int    `json:"hp,omitempty"`
	MaxHP    *int    `json:"max_hp,omitempty"`
}

// CurrentPlayers is keyed by session id and includes the receiver.
type CurrentPlayers map[string]PlayerInfo

type NewPlayer struct {
	SID    string     `json:"sid"`
	Player PlayerInfo `json:"player"`
}

type Move struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PlayerMoved struct {
	SID string  `json:"sid"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

type UpdatePlayerInfo struct {
	SID      string `json:"sid"`
	Nickname string `json:"nickname"`
	Skin     string `json:"skin,omitempty"`
}

type MapFeature struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Biome string  `json:"biome,omitempty"`
}

type NPC struct {
	ID    ID      `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Name  string  `json:"name,omitempty"`
	Skin  string  `json:"skin,omitempty"`
	HP    *int    `json:"hp,omitempty"`
	MaxHP *int    `json:"max_hp,omitempty"`
}

// NPCsMoved is keyed by NPC id.
type NPCsMoved map[string]Move

type WorldTime struct {
	WorldTime float64 `json:"world_time"`
}

// Emoji is sent without SID and broadcast back with it.
type Emoji struct {
	SID   string `json:"sid,omitempty"`
	Emoji string `json:"emoji"`
}

type GuestbookPost struct {
	Nickname  string `json:"nickname"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
