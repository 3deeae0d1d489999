package world

import (
	"fmt"
	"image/color"
	"math"
)

type keyframe struct {
	t     float64
	color color.RGBA
}

var (
	MidnightColor = color.RGBA{0x1c, 0x23, 0x40, 0xff}
	DawnColor     = color.RGBA{0xe8, 0xa9, 0x7c, 0xff}
	NoonColor     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	DuskColor     = color.RGBA{0xc8, 0x6b, 0x5a, 0xff}
)

var keyframes = []keyframe{
	{0, MidnightColor},
	{0.25, DawnColor},
	{0.5, NoonColor},
	{0.75, DuskColor},
	{1, MidnightColor},
}

const (
	minutesPerDay = 24 * 60

	nightStart = 0.7
	nightEnd   = 0.3

	nightLightIntensity = 0.9
)

// Clock is the server's time of day in [0,1). It only moves when the server
// says so.
type Clock struct {
	t     float64
	known bool
}

// Set normalizes t into [0,1).
func (c *Clock) Set(t float64) {
	t = math.Mod(t, 1)
	if t < 0 {
		t++
	}
	c.t = t
	c.known = true
}

func (c *Clock) T() float64 {
	return c.t
}

// Known reports whether the server has sent a time yet.
func (c *Clock) Known() bool {
	return c.known
}

func (c *Clock) Ambient() color.RGBA {
	return AmbientColor(c.t)
}

func (c *Clock) String() string {
	return ClockString(c.t)
}

func (c *Clock) IsNight() bool {
	return c.t < nightEnd || c.t > nightStart
}

// LightIntensity drives lamps and the avatar's glow, independent of the
// ambient tint.
func (c *Clock) LightIntensity() float64 {
	if c.IsNight() {
		return nightLightIntensity
	}
	return 0
}

// AmbientColor interpolates linearly between the two keyframes bracketing t.
func AmbientColor(t float64) color.RGBA {
	for i := 0; i < len(keyframes)-1; i++ {
		lo, hi := keyframes[i], keyframes[i+1]
		if t >= lo.t && t <= hi.t {
			frac := (t - lo.t) / (hi.t - lo.t)
			return color.RGBA{
				R: lerpChannel(lo.color.R, hi.color.R, frac),
				G: lerpChannel(lo.color.G, hi.color.G, frac),
				B: lerpChannel(lo.color.B, hi.color.B, frac),
				A: 0xff,
			}
		}
	}
	return keyframes[0].color
}

func lerpChannel(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}

// ClockString renders t as a zero-padded 24 hour HH:MM.
func ClockString(t float64) string {
	total := math.Mod(t*minutesPerDay, minutesPerDay)
	if total < 0 {
		total += minutesPerDay
	}
	hours := int(math.Floor(total / 60))
	minutes := int(math.Floor(math.Mod(total, 60)))
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
