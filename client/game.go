package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glade/protocol"
	"glade/utils"
	"glade/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

const waveEmoji = "👋"

type landmark struct {
	name     string
	position world.Vector
	monitor  *world.Proximity
}

// Game runs the whole sync core from ebiten's Update, one tick at a time.
type Game struct {
	cfg *utils.Config
	log *zap.Logger
	ctx context.Context

	channel    *Channel
	registry   *world.Registry
	features   *world.Features
	clock      *world.Clock
	scheduler  *Scheduler
	notices    *Notices
	ui         *LogUI
	avatar     *Avatar
	reconciler *Reconciler
	landmarks  []*landmark
	dots       *world.MinimapDots

	renderer *Renderer
	joystick Joystick
	intent   Intent
	now      time.Duration
	width    int
	height   int
}

// NewGame wires the core together. assets may be nil when nothing is drawn.
func NewGame(cfg *utils.Config, log *zap.Logger, assets *Assets, opts ...ChannelOption) (*Game, error) {
	codec, err := protocol.NewCodec(cfg.Network.Codec)
	if err != nil {
		return nil, err
	}
	opts = append([]ChannelOption{WithQueueSizes(cfg.Network.InboxSize, cfg.Network.OutboxSize)}, opts...)
	channel := NewChannel(cfg.Network.URL, codec, log.Named("channel"), opts...)

	g := &Game{
		cfg:       cfg,
		log:       log,
		channel:   channel,
		registry:  world.NewRegistry(),
		features:  &world.Features{},
		clock:     &world.Clock{},
		scheduler: NewScheduler(),
		notices:   &Notices{},
		ui:        NewLogUI(log.Named("ui")),
		dots:      world.NewMinimapDots(),
		renderer:  NewRenderer(assets),
		width:     cfg.UI.Resolution.X,
		height:    cfg.UI.Resolution.Y,
	}
	g.avatar = NewAvatar(channel, cfg.Player)
	g.reconciler = NewReconciler(ReconcilerConfig{
		Registry:      g.registry,
		Features:      g.features,
		Clock:         g.clock,
		Avatar:        g.avatar,
		Scheduler:     g.scheduler,
		Notices:       g.notices,
		UI:            g.ui,
		Log:           log.Named("reconciler"),
		LocalID:       channel.ID,
		RetryAttempts: cfg.Retry.Attempts,
		RetryInterval: cfg.Retry.Interval(),
	})
	g.reconciler.Bind(channel)

	for _, l := range cfg.Landmarks {
		g.landmarks = append(g.landmarks, &landmark{
			name:     l.Name,
			position: world.Vector{X: l.X, Y: l.Y},
			monitor:  world.NewProximity(l.Near, l.Far, l.Dwell()),
		})
	}
	return g, nil
}

// Join enters the shared world and opens the connection. The nickname is
// sent once the server has handed us a session.
func (g *Game) Join(ctx context.Context, nickname, skin, token string) {
	if g.avatar.Joined() {
		return
	}
	g.ctx = ctx
	g.avatar.Join(nickname, skin, token)
	g.channel.Connect(ctx)
}

// Reconnect opens a new session after the server hung up. It does nothing
// before Join or while the channel is still up.
func (g *Game) Reconnect(ctx context.Context) {
	if !g.avatar.Joined() || g.channel.Connected() {
		return
	}
	g.log.Info("reconnecting")
	g.channel.Connect(ctx)
}

// Close drops the connection.
func (g *Game) Close() {
	g.channel.Close()
}

func (g *Game) Update() error {
	g.joystick.Update()
	intent := keyboardIntent().Union(g.joystick.Intent())

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.ui.CloseAll()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.avatar.SendEmote(g.now, waveEmoji)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reconnect(g.ctx)
	}

	g.step(intent, time.Second/time.Duration(ebiten.TPS()))
	return nil
}

// step is one tick: deferred work, then inbound events, then the avatar,
// then everything derived from them.
func (g *Game) step(intent Intent, dt time.Duration) {
	g.now += dt
	g.intent = intent

	g.scheduler.Advance(g.now)
	g.channel.Drain()

	g.avatar.Update(intent, dt)

	if g.avatar.Joined() {
		for _, l := range g.landmarks {
			distance := g.avatar.Position.Distance(l.position)
			if l.monitor.Update(distance, dt, g.ui.SurfaceOpen(l.name)) {
				g.ui.OpenSurface(l.name)
			}
		}
	}

	g.dots.Sync(g.registry, g.minimap())
	g.notices.Expire(g.now)
}

func (g *Game) minimap() world.Minimap {
	size := g.cfg.UI.Minimap.Size
	if g.width > 0 && g.width < g.cfg.UI.Minimap.MobileWidth {
		size = g.cfg.UI.Minimap.MobileSize
	}
	return world.NewMinimap(size)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (g *Game) debugString() string {
	id := g.channel.ID()
	if id == "" {
		id = "No Socket"
	}
	lastMove := g.reconciler.LastMove()
	if lastMove == "" {
		lastMove = "None"
	}
	return strings.Join([]string{
		fmt.Sprintf("Version: %s, TPS: %0.02f, FPS: %0.02f", strings.TrimSpace(Version), ebiten.ActualTPS(), ebiten.ActualFPS()),
		fmt.Sprintf("ID: %s", id),
		fmt.Sprintf("Others: %d", g.registry.Count(world.KindPlayer)),
		fmt.Sprintf("LastMove: %s", lastMove),
		fmt.Sprintf("Input: L:%d R:%d U:%d D:%d", bit(g.intent.Left), bit(g.intent.Right), bit(g.intent.Up), bit(g.intent.Down)),
		fmt.Sprintf("Pos: X:%0.0f Y:%0.0f", g.avatar.Position.X, g.avatar.Position.Y),
	}, "\n")
}
