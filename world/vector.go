package world

import "math"

const (
	// WorldMin and WorldMax bound both axes of the square world.
	WorldMin = -1000.0
	WorldMax = 1000.0
)

type Vector struct {
	X, Y float64
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) Scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f}
}

func (v Vector) Distance(o Vector) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Clamp keeps v inside the world bounds.
func (v Vector) Clamp() Vector {
	return Vector{
		X: math.Max(WorldMin, math.Min(WorldMax, v.X)),
		Y: math.Max(WorldMin, math.Min(WorldMax, v.Y)),
	}
}
