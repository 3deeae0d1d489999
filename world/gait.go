package world

import (
	"math"
	"time"
)

// Gait parameterizes the procedural walk: a vertical bob and a sideways
// tilt, both driven by wall-clock time.
type Gait struct {
	// Window is how long after the last position update an entity still
	// counts as walking.
	Window        time.Duration
	BobAmplitude  float64
	TiltAmplitude float64
	// Rate is radians per millisecond.
	Rate float64
}

var (
	PlayerGait = Gait{
		Window:        100 * time.Millisecond,
		BobAmplitude:  8,
		TiltAmplitude: 0.1,
		Rate:          0.015,
	}
	NPCGait = Gait{
		Window:        150 * time.Millisecond,
		BobAmplitude:  5,
		TiltAmplitude: 0.08,
		Rate:          0.01,
	}
)

// Pose is a purely cosmetic sprite offset. Bob is negative (upwards).
type Pose struct {
	Walking bool
	Bob     float64
	Tilt    float64
}

// Walking reports whether an entity last updated at lastUpdatedAt is still
// in its walk window at now.
func (g Gait) Walking(now, lastUpdatedAt time.Duration) bool {
	return lastUpdatedAt > 0 && now-lastUpdatedAt < g.Window
}

// At returns the pose at now for a walking or idle entity.
func (g Gait) At(now time.Duration, walking bool) Pose {
	if !walking {
		return Pose{}
	}
	t := float64(now.Milliseconds()) * g.Rate
	return Pose{
		Walking: true,
		Bob:     -g.BobAmplitude * math.Abs(math.Sin(t)),
		Tilt:    g.TiltAmplitude * math.Sin(t),
	}
}

// For derives the pose of a remote entity from its last update time.
func (g Gait) For(now time.Duration, e Entity) Pose {
	return g.At(now, g.Walking(now, e.LastUpdatedAt))
}

func GaitFor(kind Kind) Gait {
	if kind == KindNPC {
		return NPCGait
	}
	return PlayerGait
}
