package client

import (
	"fmt"
	"time"

	"glade/protocol"
	"glade/world"

	"go.uber.org/zap"
)

// Reconciler applies server events to the registry and the other tick
// state. It is the only writer of the registry.
type Reconciler struct {
	registry  *world.Registry
	features  *world.Features
	clock     *world.Clock
	avatar    *Avatar
	scheduler *Scheduler
	notices   *Notices
	ui        UI
	log       *zap.Logger

	localID       func() string
	retryAttempts int
	retryInterval time.Duration

	lastMove  string
	guestbook []protocol.GuestbookPost
}

type ReconcilerConfig struct {
	Registry  *world.Registry
	Features  *world.Features
	Clock     *world.Clock
	Avatar    *Avatar
	Scheduler *Scheduler
	Notices   *Notices
	UI        UI
	Log       *zap.Logger
	// LocalID returns our own session id, or "" before the handshake.
	LocalID       func() string
	RetryAttempts int
	RetryInterval time.Duration
}

func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{
		registry:      cfg.Registry,
		features:      cfg.Features,
		clock:         cfg.Clock,
		avatar:        cfg.Avatar,
		scheduler:     cfg.Scheduler,
		notices:       cfg.Notices,
		ui:            cfg.UI,
		log:           cfg.Log,
		localID:       cfg.LocalID,
		retryAttempts: cfg.RetryAttempts,
		retryInterval: cfg.RetryInterval,
	}
}

// on registers a typed handler; payloads that fail to decode are logged and
// dropped.
func on[T any](ch *Channel, log *zap.Logger, event string, fn func(T)) {
	ch.On(event, func(m protocol.Message) {
		var payload T
		if err := m.Decode(&payload); err != nil {
			log.Warn("dropping malformed event", zap.String("event", event), zap.Error(err))
			return
		}
		fn(payload)
	})
}

// Bind registers every handler on the channel.
func (r *Reconciler) Bind(ch *Channel) {
	ch.On(protocol.EventConnect, func(protocol.Message) { r.OnConnect() })
	ch.On(protocol.EventDisconnect, func(protocol.Message) { r.OnDisconnect() })
	on(ch, r.log, protocol.EventNicknameSuccess, r.OnNicknameSuccess)
	on(ch, r.log, protocol.EventNicknameError, r.OnNicknameError)
	on(ch, r.log, protocol.EventCurrentPlayers, r.OnCurrentPlayers)
	on(ch, r.log, protocol.EventNewPlayer, r.OnNewPlayer)
	on(ch, r.log, protocol.EventPlayerMoved, r.OnPlayerMoved)
	on(ch, r.log, protocol.EventUpdatePlayerInfo, r.OnUpdatePlayerInfo)
	on(ch, r.log, protocol.EventPlayerDisconnected, r.OnPlayerDisconnected)
	on(ch, r.log, protocol.EventMapData, r.OnMapData)
	on(ch, r.log, protocol.EventNPCData, r.OnNPCData)
	on(ch, r.log, protocol.EventNPCsMoved, r.OnNPCsMoved)
	on(ch, r.log, protocol.EventTimeInit, r.OnTime)
	on(ch, r.log, protocol.EventTimeUpdate, r.OnTime)
	on(ch, r.log, protocol.EventShowEmoji, r.OnShowEmoji)
	on(ch, r.log, protocol.EventGuestbookData, r.OnGuestbookData)
	on(ch, r.log, protocol.EventNewGuestbookPost, r.OnNewGuestbookPost)
}

// isLocal is the one self-echo check: the server broadcasts to the sender
// as well.
func (r *Reconciler) isLocal(ID string) bool {
	local := r.localID()
	return local != "" && ID == local
}

func (r *Reconciler) now() time.Duration {
	return r.scheduler.Now()
}

// OnConnect starts a fresh session. Players left over from an earlier one
// are dropped; the server's current_players snapshot repopulates them.
func (r *Reconciler) OnConnect() {
	r.registry.ReplaceAll(world.KindPlayer, nil)
	r.notices.Add(r.now(), "Connected to server!")
	if r.avatar.Joined() {
		r.avatar.Identify()
	}
}

func (r *Reconciler) OnDisconnect() {
	r.notices.Add(r.now(), "Disconnected from server.")
}

func (r *Reconciler) OnNicknameSuccess(s protocol.NicknameSuccess) {
	r.avatar.Nickname = s.Nickname
	if s.Skin != "" {
		r.avatar.Skin = s.Skin
	}
	if h := health(s.HP, s.MaxHP); h != nil {
		r.avatar.Health = h
	}
	r.ui.NicknameAccepted(s)
}

func (r *Reconciler) OnNicknameError(e protocol.NicknameError) {
	r.ui.NicknameRejected(e.Message)
}

func (r *Reconciler) OnCurrentPlayers(players protocol.CurrentPlayers) {
	others := 0
	for ID, info := range players {
		if r.isLocal(ID) {
			continue
		}
		r.upsertPlayer(ID, info)
		others++
	}
	r.notices.Add(r.now(), fmt.Sprintf("Joined world with %d other players.", others))
}

func (r *Reconciler) OnNewPlayer(p protocol.NewPlayer) {
	if r.isLocal(p.SID) {
		return
	}
	r.upsertPlayer(p.SID, p.Player)
	name := p.Player.Nickname
	if name == "" {
		name = "Unknown"
	}
	r.notices.Add(r.now(), fmt.Sprintf("%s joined the game.", name))
}

func (r *Reconciler) upsertPlayer(ID string, info protocol.PlayerInfo) {
	kind := world.KindPlayer
	f := world.Fields{
		Kind:     &kind,
		Position: &world.Vector{X: info.X, Y: info.Y},
		Health:   health(info.HP, info.MaxHP),
	}
	if info.Nickname != "" {
		f.DisplayName = &info.Nickname
	}
	if appearance := appearanceOf(info.Skin, info.Color); appearance != "" {
		f.Appearance = &appearance
	}
	r.registry.Upsert(ID, f)
}

func (r *Reconciler) OnPlayerMoved(m protocol.PlayerMoved) {
	r.lastMove = fmt.Sprintf("%.4s.. -> %.0f,%.0f", m.SID, m.X, m.Y)
	if r.isLocal(m.SID) {
		return
	}
	if !r.registry.Has(m.SID) {
		return
	}
	now := r.now()
	r.registry.Upsert(m.SID, world.Fields{
		Position:      &world.Vector{X: m.X, Y: m.Y},
		LastUpdatedAt: &now,
	})
}

func (r *Reconciler) OnUpdatePlayerInfo(u protocol.UpdatePlayerInfo) {
	if r.isLocal(u.SID) {
		r.avatar.Nickname = u.Nickname
		if u.Skin != "" {
			r.avatar.Skin = u.Skin
		}
		return
	}
	r.applyPlayerInfo(u, 0)
}

// applyPlayerInfo retries on the scheduler while the player is unknown,
// since the info can overtake the player's own join event.
func (r *Reconciler) applyPlayerInfo(u protocol.UpdatePlayerInfo, attempt int) {
	if r.registry.Has(u.SID) {
		f := world.Fields{DisplayName: &u.Nickname}
		if u.Skin != "" {
			f.Appearance = &u.Skin
		}
		r.registry.Upsert(u.SID, f)
		r.notices.Add(r.now(), fmt.Sprintf("%s joined/updated.", u.Nickname))
		return
	}
	if attempt >= r.retryAttempts {
		r.log.Warn("dropping player info for unknown player",
			zap.String("sid", u.SID),
			zap.Int("attempts", attempt),
			zap.Duration("at", r.now()))
		return
	}
	r.log.Debug("player not found, retrying info update",
		zap.String("sid", u.SID),
		zap.Int("attempt", attempt+1),
		zap.Int("max", r.retryAttempts),
		zap.Duration("at", r.now()))
	r.scheduler.After(r.retryInterval, func(time.Duration) {
		r.applyPlayerInfo(u, attempt+1)
	})
}

func (r *Reconciler) OnPlayerDisconnected(sid string) {
	e, ok := r.registry.Remove(sid)
	if !ok {
		r.log.Warn("disconnect for unknown player", zap.String("sid", sid))
		return
	}
	r.notices.Add(r.now(), fmt.Sprintf("%s left the game.", e.Name("A player")))
}

func (r *Reconciler) OnMapData(features []protocol.MapFeature) {
	loaded := make([]world.Feature, 0, len(features))
	for _, f := range features {
		loaded = append(loaded, world.Feature{
			Position: world.Vector{X: f.X, Y: f.Y},
			Category: world.CategoryForBiome(f.Biome),
		})
	}
	r.features.Load(loaded)
	r.log.Debug("loaded map", zap.Int("features", len(loaded)))
}

func (r *Reconciler) OnNPCData(npcs []protocol.NPC) {
	entities := make([]world.Entity, 0, len(npcs))
	for _, n := range npcs {
		entities = append(entities, world.Entity{
			ID:          string(n.ID),
			Position:    world.Vector{X: n.X, Y: n.Y},
			DisplayName: n.Name,
			Appearance:  n.Skin,
			Health:      health(n.HP, n.MaxHP),
		})
	}
	r.registry.ReplaceAll(world.KindNPC, entities)
}

// OnNPCsMoved moves the listed NPCs and leaves the rest alone.
func (r *Reconciler) OnNPCsMoved(moves protocol.NPCsMoved) {
	now := r.now()
	for ID, m := range moves {
		e, ok := r.registry.Get(ID)
		if !ok || e.Kind != world.KindNPC {
			continue
		}
		r.registry.Upsert(ID, world.Fields{
			Position:      &world.Vector{X: m.X, Y: m.Y},
			LastUpdatedAt: &now,
		})
	}
}

func (r *Reconciler) OnTime(t protocol.WorldTime) {
	r.clock.Set(t.WorldTime)
}

func (r *Reconciler) OnShowEmoji(e protocol.Emoji) {
	if r.isLocal(e.SID) {
		return
	}
	if !r.registry.Has(e.SID) {
		return
	}
	r.registry.Upsert(e.SID, world.Fields{
		Emote: &world.Emote{
			Emoji: e.Emoji,
			Until: r.now() + emoteLifetime,
		},
	})
}

func (r *Reconciler) OnGuestbookData(posts []protocol.GuestbookPost) {
	r.guestbook = append([]protocol.GuestbookPost(nil), posts...)
	r.ui.GuestbookFeed(posts)
}

func (r *Reconciler) OnNewGuestbookPost(post protocol.GuestbookPost) {
	r.guestbook = append([]protocol.GuestbookPost{post}, r.guestbook...)
	r.ui.GuestbookPost(post)
}

// LastMove describes the most recent remote move, for the debug overlay.
func (r *Reconciler) LastMove() string {
	return r.lastMove
}

// Guestbook returns the feed, newest first.
func (r *Reconciler) Guestbook() []protocol.GuestbookPost {
	return r.guestbook
}

func health(hp, maxHP *int) *world.Health {
	if hp == nil {
		return nil
	}
	h := &world.Health{Current: *hp, Max: *hp}
	if maxHP != nil {
		h.Max = *maxHP
	}
	return h
}

// appearanceOf prefers a named skin over a raw tint color.
func appearanceOf(skin, color string) string {
	if skin != "" {
		return skin
	}
	return color
}
