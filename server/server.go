// Package server is a small relay that speaks the client protocol. It
// trusts every client and keeps everything in memory; it exists for local
// play and end-to-end tests.
package server

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"glade/protocol"
	"glade/utils"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	spawnRadius   = 100
	startingHP    = 100
	npcPatrol     = 60
	duplicateName = "Nickname already taken"
)

var npcNames = []string{"Panda", "Roach", "Owl", "Fox", "Deer", "Hedgehog"}

type subscriber struct {
	messages chan protocol.Message
	sid      string
	codec    protocol.Codec
	c        *websocket.Conn
}

type npc struct {
	id   int
	name string
	home protocol.Move
}

type Server struct {
	cfg utils.ServerConfig
	log *zap.Logger

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	players     map[string]*protocol.PlayerInfo
	guestbook   []protocol.GuestbookPost

	trees    []protocol.MapFeature
	npcs     []npc
	serveMux http.ServeMux
	start    time.Time
}

// NewServer builds the relay and starts its broadcast loop, which runs
// until ctx is done.
func NewServer(ctx context.Context, cfg utils.ServerConfig, log *zap.Logger) *Server {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Server{
		cfg:         cfg,
		log:         log,
		subscribers: make(map[*subscriber]struct{}),
		players:     make(map[string]*protocol.PlayerInfo),
		trees:       generateMap(rng, cfg),
		npcs:        generateNPCs(rng, cfg),
		start:       time.Now(),
	}

	go s.broadcastLoop(ctx)

	s.serveMux.HandleFunc("/ws", s.onConnection)
	return s
}

func generateMap(rng *rand.Rand, cfg utils.ServerConfig) []protocol.MapFeature {
	biomes := []string{"forest", "forest", "snow", "desert"}
	trees := make([]protocol.MapFeature, 0, cfg.TreeCount)
	for len(trees) < cfg.TreeCount {
		x := float64(rng.Intn(2*cfg.MapSize+1) - cfg.MapSize)
		y := float64(rng.Intn(2*cfg.MapSize+1) - cfg.MapSize)
		if math.Hypot(x, y) <= float64(cfg.SafeRadius) {
			continue
		}
		trees = append(trees, protocol.MapFeature{X: x, Y: y, Biome: biomes[rng.Intn(len(biomes))]})
	}
	return trees
}

func generateNPCs(rng *rand.Rand, cfg utils.ServerConfig) []npc {
	npcs := make([]npc, cfg.NPCCount)
	for i := range npcs {
		npcs[i] = npc{
			id:   i + 1,
			name: npcNames[i%len(npcNames)],
			home: protocol.Move{
				X: float64(rng.Intn(2*cfg.MapSize+1) - cfg.MapSize),
				Y: float64(rng.Intn(2*cfg.MapSize+1) - cfg.MapSize),
			},
		}
	}
	return npcs
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.serveMux.ServeHTTP(w, r)
}

// worldTime is the fraction of the current day.
func (s *Server) worldTime() float64 {
	day := time.Duration(s.cfg.DayLengthMS) * time.Millisecond
	if day <= 0 {
		return 0
	}
	return math.Mod(float64(time.Since(s.start))/float64(day), 1)
}

// npcPosition walks each NPC around a circle centered on its home.
func (s *Server) npcPosition(n npc) protocol.Move {
	angle := time.Since(s.start).Seconds()*0.2 + float64(n.id)
	return protocol.Move{
		X: n.home.X + npcPatrol*math.Cos(angle),
		Y: n.home.Y + npcPatrol*math.Sin(angle),
	}
}

func (s *Server) npcSnapshot() []protocol.NPC {
	snapshot := make([]protocol.NPC, 0, len(s.npcs))
	for _, n := range s.npcs {
		p := s.npcPosition(n)
		hp := startingHP
		snapshot = append(snapshot, protocol.NPC{
			ID:    protocol.ID(strconv.Itoa(n.id)),
			X:     p.X,
			Y:     p.Y,
			Name:  n.name,
			HP:    &hp,
			MaxHP: &hp,
		})
	}
	return snapshot
}

func (s *Server) npcMoves() protocol.NPCsMoved {
	moves := make(protocol.NPCsMoved, len(s.npcs))
	for _, n := range s.npcs {
		moves[strconv.Itoa(n.id)] = s.npcPosition(n)
	}
	return moves
}

func (s *Server) broadcastLoop(ctx context.Context) {
	clock := time.NewTicker(millis(s.cfg.TimeBroadcastMS, 5000))
	npcs := time.NewTicker(millis(s.cfg.NPCBroadcastMS, 500))
	defer clock.Stop()
	defer npcs.Stop()
	for {
		select {
		case <-clock.C:
			s.publish(protocol.EventTimeUpdate, protocol.WorldTime{WorldTime: s.worldTime()})
		case <-npcs.C:
			if len(s.npcs) > 0 {
				s.publish(protocol.EventNPCsMoved, s.npcMoves())
			}
		case <-ctx.Done():
			return
		}
	}
}

func millis(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *Server) onConnection(w http.ResponseWriter, r *http.Request) {
	codec, err := protocol.NewCodec(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("accept failed", zap.Error(err))
		return
	}
	defer c.Close(websocket.StatusInternalError, "")

	if err := s.handleConnection(r.Context(), c, codec); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Debug("connection closed", zap.Error(err))
	}
}

func (s *Server) handleConnection(ctx context.Context, c *websocket.Conn, codec protocol.Codec) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := &subscriber{
		messages: make(chan protocol.Message, s.outboxSize()),
		sid:      ksuid.New().String(),
		codec:    codec,
		c:        c,
	}
	s.join(sub)
	defer s.leave(sub)

	go func() {
		defer cancel()
		for {
			typ, b, err := c.Read(ctx)
			if err != nil {
				return
			}
			m, err := codec.Decode(typ, b)
			if err != nil {
				s.log.Warn("dropping undecodable frame", zap.String("sid", sub.sid), zap.Error(err))
				continue
			}
			s.onEvent(sub, m)
		}
	}()

	for {
		select {
		case m := <-sub.messages:
			typ, b, err := codec.Encode(m)
			if err != nil {
				s.log.Warn("encode failed", zap.String("event", m.Event), zap.Error(err))
				continue
			}
			if err := c.Write(ctx, typ, b); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) outboxSize() int {
	if s.cfg.OutboxSize > 0 {
		return s.cfg.OutboxSize
	}
	return 1024
}

// join registers the player, sends it the world and announces it to
// everyone, itself included.
func (s *Server) join(sub *subscriber) {
	info := &protocol.PlayerInfo{
		X:        float64(rand.Intn(2*spawnRadius+1) - spawnRadius),
		Y:        float64(rand.Intn(2*spawnRadius+1) - spawnRadius),
		Color:    randomColor(),
		Nickname: "Unknown",
	}

	// The snapshot and the subscription happen under one lock, so every
	// peer is either in current_players or announced later by new_player.
	s.mu.Lock()
	s.players[sub.sid] = info
	players := make(protocol.CurrentPlayers, len(s.players))
	for sid, p := range s.players {
		players[sid] = *p
	}
	guestbook := make([]protocol.GuestbookPost, len(s.guestbook))
	copy(guestbook, s.guestbook)

	s.send(sub, protocol.EventSession, protocol.Session{SID: sub.sid})
	s.send(sub, protocol.EventCurrentPlayers, players)
	s.send(sub, protocol.EventMapData, s.trees)
	s.send(sub, protocol.EventNPCData, s.npcSnapshot())
	s.send(sub, protocol.EventTimeInit, protocol.WorldTime{WorldTime: s.worldTime()})
	s.send(sub, protocol.EventGuestbookData, guestbook)
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	s.publish(protocol.EventNewPlayer, protocol.NewPlayer{SID: sub.sid, Player: *info})
	s.log.Info("player connected", zap.String("sid", sub.sid))
}

func (s *Server) leave(sub *subscriber) {
	s.mu.Lock()
	delete(s.subscribers, sub)
	_, ok := s.players[sub.sid]
	delete(s.players, sub.sid)
	s.mu.Unlock()
	if ok {
		s.publish(protocol.EventPlayerDisconnected, sub.sid)
	}
	s.log.Info("player disconnected", zap.String("sid", sub.sid))
}

func (s *Server) onEvent(sub *subscriber, m protocol.Message) {
	switch m.Event {
	case protocol.EventSetNickname:
		var req protocol.SetNickname
		if err := m.Decode(&req); err != nil {
			s.log.Warn("bad set_nickname", zap.Error(err))
			return
		}
		s.setNickname(sub, req)

	case protocol.EventPlayerMove:
		var move protocol.Move
		if err := m.Decode(&move); err != nil {
			return
		}
		s.mu.Lock()
		p, ok := s.players[sub.sid]
		if ok {
			p.X, p.Y = move.X, move.Y
		}
		s.mu.Unlock()
		if !ok {
			s.log.Debug("ignored move from unknown sid", zap.String("sid", sub.sid))
			return
		}
		s.publish(protocol.EventPlayerMoved, protocol.PlayerMoved{SID: sub.sid, X: move.X, Y: move.Y})

	case protocol.EventShowEmoji:
		var e protocol.Emoji
		if err := m.Decode(&e); err != nil {
			return
		}
		s.publish(protocol.EventShowEmoji, protocol.Emoji{SID: sub.sid, Emoji: e.Emoji})

	default:
		s.log.Debug("unhandled event", zap.String("event", m.Event))
	}
}

func (s *Server) setNickname(sub *subscriber, req protocol.SetNickname) {
	s.mu.Lock()
	for sid, p := range s.players {
		if sid != sub.sid && p.Nickname == req.Nickname {
			s.mu.Unlock()
			s.send(sub, protocol.EventNicknameError, protocol.NicknameError{Message: duplicateName})
			return
		}
	}
	p, ok := s.players[sub.sid]
	if ok {
		p.Nickname = req.Nickname
		p.Skin = req.Skin
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	hp := startingHP
	s.send(sub, protocol.EventNicknameSuccess, protocol.NicknameSuccess{
		Nickname: req.Nickname,
		Skin:     req.Skin,
		HP:       &hp,
		MaxHP:    &hp,
	})
	s.publish(protocol.EventUpdatePlayerInfo, protocol.UpdatePlayerInfo{
		SID:      sub.sid,
		Nickname: req.Nickname,
		Skin:     req.Skin,
	})
}

// PostGuestbook appends a post and broadcasts it.
func (s *Server) PostGuestbook(post protocol.GuestbookPost) {
	s.mu.Lock()
	s.guestbook = append(s.guestbook, post)
	s.mu.Unlock()
	s.publish(protocol.EventNewGuestbookPost, post)
}

func (s *Server) send(sub *subscriber, event string, payload interface{}) {
	m, err := protocol.NewMessage(event, payload)
	if err != nil {
		s.log.Warn("encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case sub.messages <- m:
	default:
		sub.c.Close(websocket.StatusPolicyViolation, "write would block")
	}
}

func (s *Server) publish(event string, payload interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sub := range s.subscribers {
		s.send(sub, event, payload)
	}
}

func randomColor() string {
	const hex = "0123456789abcdef"
	b := []byte("#000000")
	for i := 1; i < len(b); i++ {
		b[i] = hex[rand.Intn(len(hex))]
	}
	return string(b)
}

func Run(args []string) error {
	cfg, err := utils.ReadTOML("config.toml")
	if err != nil {
		return err
	}
	log, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	address := cfg.Server.Address
	if len(args) > 1 {
		address = args[1]
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	log.Info("listening", zap.String("addr", "ws://"+l.Addr().String()+"/ws"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &http.Server{
		Handler:      NewServer(ctx, cfg.Server, log.Named("relay")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		log.Error("serve failed", zap.Error(err))
	case sig := <-sigs:
		log.Info("terminating", zap.String("signal", sig.String()))
	}

	return s.Shutdown(context.Background())
}
