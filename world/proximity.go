package world

import "time"

type ProximityState int

const (
	ProximityFar ProximityState = iota
	ProximityAccumulating
	ProximityTriggered
)

// Proximity tracks how long an actor has lingered near a landmark. Once it
// fires it stays latched until the actor leaves FarRadius, so standing on
// the NearRadius boundary cannot make it flicker.
type Proximity struct {
	NearRadius    float64
	FarRadius     float64
	RequiredDwell time.Duration

	accumulated time.Duration
	isOpen      bool
	state       ProximityState
}

func NewProximity(near, far float64, dwell time.Duration) *Proximity {
	return &Proximity{
		NearRadius:    near,
		FarRadius:     far,
		RequiredDwell: dwell,
	}
}

// Update advances the monitor by one frame. surfaceOpen tells it whether
// the interaction's UI is already showing. It returns true on the one frame
// the interaction triggers.
func (p *Proximity) Update(distance float64, dt time.Duration, surfaceOpen bool) bool {
	if distance >= p.NearRadius {
		p.accumulated = 0
		if distance > p.FarRadius {
			p.isOpen = false
			p.state = ProximityFar
		} else if !p.isOpen {
			p.state = ProximityFar
		}
		return false
	}

	if p.isOpen || surfaceOpen {
		return false
	}

	p.state = ProximityAccumulating
	p.accumulated += dt
	if p.accumulated < p.RequiredDwell {
		return false
	}
	p.accumulated = 0
	p.isOpen = true
	p.state = ProximityTriggered
	return true
}

func (p *Proximity) State() ProximityState {
	return p.state
}

func (p *Proximity) Accumulated() time.Duration {
	return p.accumulated
}

// Latched reports whether the interaction has fired and not yet been reset
// by walking away.
func (p *Proximity) Latched() bool {
	return p.isOpen
}

// Accumulating reports whether a countdown is currently running.
func (p *Proximity) Accumulating() bool {
	return p.state == ProximityAccumulating
}

// Remaining is the dwell time left before the interaction fires.
func (p *Proximity) Remaining() time.Duration {
	if r := p.RequiredDwell - p.accumulated; r > 0 {
		return r
	}
	return 0
}
