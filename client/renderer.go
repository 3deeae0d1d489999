package client

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"glade/world"

	"github.com/ebiten/emoji"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	backdropColor = color.RGBA{0x33, 0x33, 0x33, 0xff}
	groundColor   = color.RGBA{0x6a, 0x8f, 0x4e, 0xff}
	minimapBg     = color.RGBA{0x11, 0x11, 0x11, 0xcc}
	minimapBorder = color.RGBA{0x44, 0x44, 0x44, 0xff}
	safeZoneColor = color.RGBA{0x00, 0xff, 0x00, 0x26}
	selfDotColor  = color.RGBA{0x00, 0xff, 0x00, 0xff}
	otherDotColor = color.RGBA{0xff, 0x66, 0x00, 0xff}
	npcDotColor   = color.RGBA{0xff, 0xd5, 0x4f, 0xff}
	treeDotColor  = color.RGBA{0x2e, 0x7d, 0x32, 0xff}
	lampColor     = color.RGBA{0xff, 0xdc, 0x96, 0xff}
	panelColor    = color.RGBA{0x00, 0x00, 0x00, 0xbb}
	healthColor   = color.RGBA{0xe5, 0x39, 0x35, 0xff}
)

const (
	safeZoneRadius = 150
	emoteSize      = 24
	panelPosts     = 8
)

type drawItem struct {
	depth float64
	draw  func(screen *ebiten.Image)
}

// Renderer draws one frame from the tick state. It never mutates it.
type Renderer struct {
	assets *Assets
	emojis map[string]*ebiten.Image
	items  []drawItem
}

func NewRenderer(assets *Assets) *Renderer {
	return &Renderer{
		assets: assets,
		emojis: make(map[string]*ebiten.Image),
	}
}

type camera struct {
	offset  world.Vector
	ambient color.RGBA
}

func (c camera) screen(v world.Vector) world.Vector {
	return v.Add(c.offset)
}

func (r *Renderer) Draw(screen *ebiten.Image, g *Game) {
	if r.assets == nil {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	cam := camera{
		offset:  world.Vector{X: float64(w)/2 - g.avatar.Position.X, Y: float64(h)/2 - g.avatar.Position.Y},
		ambient: world.NoonColor,
	}
	if g.clock.Known() {
		cam.ambient = g.clock.Ambient()
	}

	r.collect(g, cam)
	sort.SliceStable(r.items, func(i, j int) bool {
		return r.items[i].depth < r.items[j].depth
	})
	for _, item := range r.items {
		item.draw(screen)
	}

	if intensity := g.clock.LightIntensity(); intensity > 0 {
		glow := lampColor
		glow.A = uint8(intensity * 0x40)
		vector.DrawFilledCircle(screen, float32(w)/2, float32(h)/2, 90, glow, true)
	}

	r.drawMinimap(screen, g)
	r.drawHUD(screen, g, cam, w, h)
}

// collect gathers everything in the world with its depth key.
func (r *Renderer) collect(g *Game, cam camera) {
	r.items = r.items[:0]

	r.items = append(r.items, drawItem{depth: world.BackdropDepth, draw: func(screen *ebiten.Image) {
		screen.Fill(backdropColor)
	}})
	r.items = append(r.items, drawItem{depth: world.GroundDepth, draw: func(screen *ebiten.Image) {
		origin := cam.screen(world.Vector{X: world.WorldMin, Y: world.WorldMin})
		size := float32(world.WorldMax - world.WorldMin)
		vector.DrawFilledRect(screen, float32(origin.X), float32(origin.Y), size, size, tint(groundColor, cam.ambient), false)
	}})

	for _, f := range g.features.All() {
		f := f
		r.items = append(r.items, drawItem{depth: world.DepthKey(f.Position), draw: func(screen *ebiten.Image) {
			r.sprite(screen, r.assets.Feature(f.Category), cam.screen(f.Position), world.Pose{}, false, color.White, cam.ambient, 0.9)
		}})
	}

	for _, l := range g.landmarks {
		l := l
		r.items = append(r.items, drawItem{depth: world.DepthKey(l.position), draw: func(screen *ebiten.Image) {
			r.sprite(screen, r.assets.Image("board"), cam.screen(l.position), world.Pose{}, false, color.White, cam.ambient, 0.5)
			p := cam.screen(l.position)
			ebitenutil.DebugPrintAt(screen, strings.ToUpper(l.name), int(p.X)-len(l.name)*3, int(p.Y)+25)
		}})
	}

	g.registry.ForEach(func(e world.Entity) {
		pose := world.GaitFor(e.Kind).For(g.now, e)
		r.items = append(r.items, drawItem{depth: world.DepthKey(e.Position), draw: func(screen *ebiten.Image) {
			r.drawEntity(screen, cam, e, pose)
		}})
		if e.Emote != nil && g.now < e.Emote.Until {
			em := *e.Emote
			r.items = append(r.items, drawItem{depth: world.DepthKey(e.Position) + 0.5, draw: func(screen *ebiten.Image) {
				r.drawEmote(screen, cam.screen(e.Position), em.Emoji)
			}})
		}
	})

	a := g.avatar
	self := world.Entity{
		Position:    a.Position,
		FacingLeft:  a.FacingLeft,
		DisplayName: a.Nickname,
		Appearance:  a.Skin,
		Health:      a.Health,
	}
	pose := a.Pose(g.now)
	r.items = append(r.items, drawItem{depth: world.DepthKey(a.Position), draw: func(screen *ebiten.Image) {
		r.drawEntity(screen, cam, self, pose)
	}})
	if a.Emote != nil && g.now < a.Emote.Until {
		em := *a.Emote
		r.items = append(r.items, drawItem{depth: world.DepthKey(a.Position) + 0.5, draw: func(screen *ebiten.Image) {
			r.drawEmote(screen, cam.screen(a.Position), em.Emoji)
		}})
	}
}

func (r *Renderer) drawEntity(screen *ebiten.Image, cam camera, e world.Entity, pose world.Pose) {
	p := cam.screen(e.Position)

	shadow := &ebiten.DrawImageOptions{}
	shadow.GeoM.Translate(-12, -12)
	shadow.GeoM.Scale(1, 0.5)
	shadow.GeoM.Translate(p.X, p.Y+15)
	screen.DrawImage(r.assets.Image("shadow"), shadow)

	image, clr := r.appearance(e)
	r.sprite(screen, image, p, pose, e.FacingLeft, clr, cam.ambient, 0.5)

	name := e.Name("Unknown")
	ebitenutil.DebugPrintAt(screen, name, int(p.X)-len(name)*3, int(p.Y)-45)

	if e.Health != nil && e.Health.Max > 0 {
		frac := float32(e.Health.Current) / float32(e.Health.Max)
		vector.DrawFilledRect(screen, float32(p.X)-16, float32(p.Y)-30, 32, 4, panelColor, false)
		vector.DrawFilledRect(screen, float32(p.X)-16, float32(p.Y)-30, 32*frac, 4, healthColor, false)
	}
}

// appearance resolves a skin name to its sprite, or a #rrggbb tint onto the
// base sprite.
func (r *Renderer) appearance(e world.Entity) (*ebiten.Image, color.Color) {
	base := "player"
	if e.Kind == world.KindNPC {
		base = "npc"
	}
	if clr, ok := parseHexColor(e.Appearance); ok {
		return r.assets.Image(base), clr
	}
	if e.Appearance != "" && r.assets.Has(e.Appearance) {
		return r.assets.Image(e.Appearance), color.White
	}
	return r.assets.Image(base), color.White
}

func (r *Renderer) sprite(screen, image *ebiten.Image, p world.Vector, pose world.Pose, flip bool, clr color.Color, ambient color.RGBA, originY float64) {
	w, h := image.Bounds().Dx(), image.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(w)/2, -float64(h)*originY)
	if flip {
		op.GeoM.Scale(-1, 1)
	}
	op.GeoM.Rotate(pose.Tilt)
	op.GeoM.Translate(p.X, p.Y+pose.Bob)
	op.ColorScale.ScaleWithColor(clr)
	op.ColorScale.ScaleWithColor(ambient)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(image, op)
}

func (r *Renderer) drawEmote(screen *ebiten.Image, p world.Vector, e string) {
	image, ok := r.emojis[e]
	if !ok {
		image = emoji.Image(e)
		r.emojis[e] = image
	}
	if image == nil {
		ebitenutil.DebugPrintAt(screen, e, int(p.X)-4, int(p.Y)-70)
		return
	}
	scale := float64(emoteSize) / float64(image.Bounds().Dx())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(p.X-emoteSize/2, p.Y-70)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(image, op)
}

func (r *Renderer) drawMinimap(screen *ebiten.Image, g *Game) {
	m := g.minimap()
	pad := float32(g.cfg.UI.Minimap.Padding)
	size := float32(m.Size)

	vector.DrawFilledRect(screen, pad, pad, size, size, minimapBg, false)
	vector.StrokeRect(screen, pad, pad, size, size, 2, minimapBorder, false)
	center := m.Project(world.Vector{})
	vector.DrawFilledCircle(screen, pad+float32(center.X), pad+float32(center.Y), float32(safeZoneRadius*m.Scale()), safeZoneColor, true)

	dot := func(v world.Vector, radius float32, clr color.Color) {
		vector.DrawFilledCircle(screen, pad+float32(v.X), pad+float32(v.Y), radius, clr, true)
	}
	for _, f := range g.features.All() {
		dot(m.Project(f.Position), 1, treeDotColor)
	}
	g.dots.ForEach(func(ID string, v world.Vector) {
		clr, radius := otherDotColor, float32(3)
		if e, ok := g.registry.Get(ID); ok && e.Kind == world.KindNPC {
			clr, radius = npcDotColor, 2
		}
		dot(v, radius, clr)
	})
	dot(m.Project(g.avatar.Position), 4, selfDotColor)

	ebitenutil.DebugPrintAt(screen, "MINIMAP", int(pad+size/2)-21, int(pad+size)+4)
}

func (r *Renderer) drawHUD(screen *ebiten.Image, g *Game, cam camera, w, h int) {
	if g.clock.Known() {
		ebitenutil.DebugPrintAt(screen, g.clock.String(), w-50, 10)
	}

	for _, l := range g.landmarks {
		if !l.monitor.Accumulating() {
			continue
		}
		p := cam.screen(l.position)
		label := fmt.Sprintf("Reading... %0.1fs", l.monitor.Remaining().Seconds())
		vector.DrawFilledRect(screen, float32(p.X)-55, float32(p.Y)-78, 110, 18, panelColor, false)
		ebitenutil.DebugPrintAt(screen, label, int(p.X)-48, int(p.Y)-76)
	}

	lines := g.notices.Lines()
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, h-20-16*(len(lines)-1-i))
	}

	if g.ui.SurfaceOpen("guestbook") {
		r.drawGuestbook(screen, g, w, h)
	}

	if g.cfg.UI.Debug {
		ebitenutil.DebugPrintAt(screen, g.debugString(), 10, int(g.minimap().Size+g.cfg.UI.Minimap.Padding)+24)
	}
}

func (r *Renderer) drawGuestbook(screen *ebiten.Image, g *Game, w, h int) {
	pw, ph := float32(w)*0.6, float32(h)*0.5
	x, y := (float32(w)-pw)/2, (float32(h)-ph)/2
	vector.DrawFilledRect(screen, x, y, pw, ph, panelColor, false)

	lines := []string{"GUESTBOOK (esc to close)", ""}
	for i, post := range g.reconciler.Guestbook() {
		if i == panelPosts {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %s  %s", post.Nickname, post.Message, post.Timestamp))
	}
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), int(x)+12, int(y)+12)
}

func tint(c, ambient color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(ambient.R) / 0xff),
		G: uint8(uint16(c.G) * uint16(ambient.G) / 0xff),
		B: uint8(uint16(c.B) * uint16(ambient.B) / 0xff),
		A: c.A,
	}
}

// parseHexColor accepts #rrggbb.
func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
