package world

// Static background layers sit on fixed keys below anything a dynamic
// object can reach, since dynamic keys are bounded by WorldMin.
const (
	BackdropDepth = WorldMin - 2000
	GroundDepth   = WorldMin - 1000
)

// DepthKey is the draw order of a dynamic object: lower on screen draws on
// top.
func DepthKey(position Vector) float64 {
	return position.Y
}

// Minimap maps world coordinates onto a square minimap of Size pixels.
type Minimap struct {
	Size        float64
	WorldMin    float64
	WorldExtent float64
}

func NewMinimap(size float64) Minimap {
	return Minimap{
		Size:        size,
		WorldMin:    WorldMin,
		WorldExtent: WorldMax - WorldMin,
	}
}

func (m Minimap) Scale() float64 {
	return m.Size / m.WorldExtent
}

func (m Minimap) Project(v Vector) Vector {
	s := m.Scale()
	return Vector{
		X: (v.X - m.WorldMin) * s,
		Y: (v.Y - m.WorldMin) * s,
	}
}

// MinimapDots mirrors the registry as minimap dots: one per live id, created
// on first sight and dropped once the entity is gone.
type MinimapDots struct {
	dots map[string]Vector
}

func NewMinimapDots() *MinimapDots {
	return &MinimapDots{
		dots: make(map[string]Vector),
	}
}

func (d *MinimapDots) Sync(r *Registry, m Minimap) {
	r.ForEach(func(e Entity) {
		d.dots[e.ID] = m.Project(e.Position)
	})
	for ID := range d.dots {
		if !r.Has(ID) {
			delete(d.dots, ID)
		}
	}
}

func (d *MinimapDots) Dot(ID string) (Vector, bool) {
	v, ok := d.dots[ID]
	return v, ok
}

func (d *MinimapDots) ForEach(callback func(ID string, v Vector)) {
	for ID, v := range d.dots {
		callback(ID, v)
	}
}

func (d *MinimapDots) Len() int {
	return len(d.dots)
}
