package world

import "time"

type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	}
	return "unknown"
}

type Health struct {
	Current, Max int
}

// Emote is a transient gesture shown above an entity until Until.
type Emote struct {
	Emoji string
	Until time.Duration
}

// Entity is a remote player or NPC as last reported by the server.
type Entity struct {
	ID          string
	Kind        Kind
	Position    Vector
	FacingLeft  bool
	DisplayName string
	Appearance  string
	// Health is nil until the server first reports it.
	Health        *Health
	LastUpdatedAt time.Duration
	Emote         *Emote
}

// Fields is a partial update for Registry.Upsert. Nil fields are left
// untouched on existing entities.
type Fields struct {
	Kind          *Kind
	Position      *Vector
	DisplayName   *string
	Appearance    *string
	Health        *Health
	LastUpdatedAt *time.Duration
	Emote         *Emote
}

func (e *Entity) apply(f Fields) {
	if f.Kind != nil {
		e.Kind = *f.Kind
	}
	if f.Position != nil {
		if f.Position.X < e.Position.X {
			e.FacingLeft = true
		} else if f.Position.X > e.Position.X {
			e.FacingLeft = false
		}
		e.Position = *f.Position
	}
	if f.DisplayName != nil {
		e.DisplayName = *f.DisplayName
	}
	if f.Appearance != nil {
		e.Appearance = *f.Appearance
	}
	if f.Health != nil {
		h := *f.Health
		e.Health = &h
	}
	if f.LastUpdatedAt != nil {
		e.LastUpdatedAt = *f.LastUpdatedAt
	}
	if f.Emote != nil {
		em := *f.Emote
		e.Emote = &em
	}
}

// Name returns the display name, or fallback when identity sync has not
// completed yet.
func (e *Entity) Name(fallback string) string {
	if e.DisplayName == "" {
		return fallback
	}
	return e.DisplayName
}
