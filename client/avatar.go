package client

import (
	"math"
	"time"

	"glade/protocol"
	"glade/utils"
	"glade/world"
)

// Intent is the four-way directional input, already merged across
// keyboard and joystick.
type Intent struct {
	Left, Right, Up, Down bool
}

func (i Intent) Any() bool {
	return i.Left || i.Right || i.Up || i.Down
}

// Sender is the outbound half of the channel.
type Sender interface {
	Send(event string, payload interface{})
	Connected() bool
}

const emoteLifetime = 3 * time.Second

// Avatar is the locally controlled player. It moves optimistically and
// reports its position only when it has moved far enough.
type Avatar struct {
	Position   world.Vector
	FacingLeft bool
	Walking    bool

	Nickname string
	Skin     string
	Token    string
	Health   *world.Health
	Emote    *world.Emote

	speed        float64
	epsilon      float64
	sender       Sender
	joined       bool
	seeded       bool
	lastReported world.Vector
}

func NewAvatar(sender Sender, cfg utils.PlayerConfig) *Avatar {
	return &Avatar{
		Nickname: cfg.Nickname,
		Skin:     cfg.Skin,
		Token:    cfg.Token,
		speed:    cfg.Speed,
		epsilon:  cfg.ReportEpsilon,
		sender:   sender,
	}
}

// Join marks the avatar as taking part in the shared world. Position
// reports start only after this.
func (a *Avatar) Join(nickname, skin, token string) {
	if nickname != "" {
		a.Nickname = nickname
	}
	if skin != "" {
		a.Skin = skin
	}
	a.Token = token
	a.joined = true
}

func (a *Avatar) Joined() bool {
	return a.joined
}

// Identify asks the server to accept our nickname. Called on every
// (re)connect.
func (a *Avatar) Identify() {
	if a.Nickname == "" {
		return
	}
	a.sender.Send(protocol.EventSetNickname, protocol.SetNickname{
		Nickname: a.Nickname,
		Skin:     a.Skin,
		Token:    a.Token,
	})
}

// Velocity derives the per-second velocity from intent. Left wins over
// right and up over down; diagonals are not normalized.
func (a *Avatar) Velocity(intent Intent) world.Vector {
	var v world.Vector
	if intent.Left {
		v.X = -a.speed
	} else if intent.Right {
		v.X = a.speed
	}
	if intent.Up {
		v.Y = -a.speed
	} else if intent.Down {
		v.Y = a.speed
	}
	return v
}

// Update applies one tick of movement and reports the new position if it
// drifted past epsilon from the last report.
func (a *Avatar) Update(intent Intent, dt time.Duration) {
	v := a.Velocity(intent)
	a.Position = a.Position.Add(v.Scale(dt.Seconds())).Clamp()
	if intent.Left {
		a.FacingLeft = true
	} else if intent.Right {
		a.FacingLeft = false
	}
	a.Walking = intent.Any()

	a.report()
}

func (a *Avatar) report() {
	if !a.seeded {
		a.lastReported = a.Position
		a.seeded = true
		return
	}
	if math.Abs(a.Position.X-a.lastReported.X) <= a.epsilon && math.Abs(a.Position.Y-a.lastReported.Y) <= a.epsilon {
		return
	}
	if !a.joined {
		a.lastReported = a.Position
		return
	}
	// Offline movement is held back and reported on the first tick after
	// the channel comes back.
	if !a.sender.Connected() {
		return
	}
	a.sender.Send(protocol.EventPlayerMove, protocol.Move{X: a.Position.X, Y: a.Position.Y})
	a.lastReported = a.Position
}

// LastReported is the position the server was last told about.
func (a *Avatar) LastReported() world.Vector {
	return a.lastReported
}

func (a *Avatar) Pose(now time.Duration) world.Pose {
	return world.PlayerGait.At(now, a.Walking)
}

// SendEmote broadcasts a gesture and shows it locally straight away.
func (a *Avatar) SendEmote(now time.Duration, emoji string) {
	if !a.sender.Connected() {
		return
	}
	a.sender.Send(protocol.EventShowEmoji, protocol.Emoji{Emoji: emoji})
	a.ShowEmote(now, emoji)
}

func (a *Avatar) ShowEmote(now time.Duration, emoji string) {
	a.Emote = &world.Emote{
		Emoji: emoji,
		Until: now + emoteLifetime,
	}
}
