package client

import (
	"embed"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"path/filepath"
	"strings"

	"glade/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	dir = "assets"
)

//go:embed assets/*
var assets embed.FS

//go:embed assets/version.txt
var Version string

type Assets struct {
	images map[string]*ebiten.Image
}

// Image returns the named image, or the plain player sprite for unknown
// skins.
func (a *Assets) Image(name string) *ebiten.Image {
	if image := a.images[name]; image != nil {
		return image
	}
	return a.images["player"]
}

func (a *Assets) Has(name string) bool {
	_, ok := a.images[name]
	return ok
}

var categoryImages = map[world.Category]string{
	world.CategoryTree:     "tree",
	world.CategorySnowTree: "snow_tree",
	world.CategoryCactus:   "cactus",
	world.CategoryRock:     "rock",
}

func (a *Assets) Feature(c world.Category) *ebiten.Image {
	return a.Image(categoryImages[c])
}

// LoadAssets draws the built-in sprites and then lets any embedded PNG of
// the same name replace them.
func LoadAssets() (*Assets, error) {
	a := &Assets{
		images: map[string]*ebiten.Image{
			"player":    circleSprite(48, color.White),
			"npc":       circleSprite(40, color.RGBA{0xb0, 0x8d, 0x57, 0xff}),
			"shadow":    circleSprite(24, color.RGBA{0, 0, 0, 0x4c}),
			"tree":      treeSprite(color.RGBA{0x2e, 0x7d, 0x32, 0xff}),
			"snow_tree": treeSprite(color.RGBA{0xe3, 0xf2, 0xfd, 0xff}),
			"cactus":    cactusSprite(),
			"rock":      circleSprite(40, color.RGBA{0x75, 0x75, 0x75, 0xff}),
			"board":     boardSprite(),
		},
	}

	files, err := assets.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	overridden := make(map[string]bool)
	for _, f := range files {
		if f.IsDir() || filepath.Ext(strings.ToLower(f.Name())) != ".png" {
			continue
		}
		name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if overridden[name] {
			return nil, fmt.Errorf("duplicate filename: %s", name)
		}
		overridden[name] = true

		// Can't use filepath.Join due to Windows using backlash and assets expecting a forward slash.
		file, err := assets.Open(strings.Join([]string{dir, f.Name()}, "/"))
		if err != nil {
			return nil, err
		}
		decoded, _, err := image.Decode(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.Name(), err)
		}
		a.images[name] = ebiten.NewImageFromImage(decoded)
	}
	return a, nil
}

func circleSprite(size int, clr color.Color) *ebiten.Image {
	image := ebiten.NewImage(size, size)
	r := float32(size) / 2
	vector.DrawFilledCircle(image, r, r, r, clr, true)
	return image
}

func treeSprite(canopy color.Color) *ebiten.Image {
	image := ebiten.NewImage(96, 96)
	vector.DrawFilledRect(image, 42, 56, 12, 36, color.RGBA{0x5d, 0x40, 0x37, 0xff}, false)
	vector.DrawFilledCircle(image, 48, 38, 32, canopy, true)
	return image
}

func cactusSprite() *ebiten.Image {
	image := ebiten.NewImage(48, 64)
	green := color.RGBA{0x55, 0x8b, 0x2f, 0xff}
	vector.DrawFilledRect(image, 18, 4, 12, 60, green, false)
	vector.DrawFilledRect(image, 6, 20, 8, 20, green, false)
	vector.DrawFilledRect(image, 34, 14, 8, 20, green, false)
	return image
}

func boardSprite() *ebiten.Image {
	image := ebiten.NewImage(50, 80)
	vector.DrawFilledRect(image, 5, 20, 40, 60, color.RGBA{0x5d, 0x40, 0x37, 0xff}, false)
	vector.DrawFilledRect(image, 0, 10, 50, 40, color.RGBA{0x8d, 0x6e, 0x63, 0xff}, false)
	vector.StrokeRect(image, 0, 10, 50, 40, 2, color.RGBA{0x5d, 0x40, 0x37, 0xff}, false)
	return image
}
