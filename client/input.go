package client

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// joystickDeadZone is how far the pointer must be dragged from where it
	// went down before it counts as a direction.
	joystickDeadZone = 16
	// sin(22.5°): splits the circle into eight direction sectors.
	joystickSector = 0.3827
)

// Joystick is a floating virtual stick: it appears where the pointer goes
// down and reads the drag from there.
type Joystick struct {
	Active           bool
	OriginX, OriginY int
	X, Y             int
}

// Update tracks the first touch, or the left mouse button when there is no
// touch.
func (j *Joystick) Update() {
	x, y, pressed := pointer()
	if !pressed {
		j.Active = false
		return
	}
	if !j.Active {
		j.Active = true
		j.OriginX, j.OriginY = x, y
	}
	j.X, j.Y = x, y
}

func (j *Joystick) Intent() Intent {
	if !j.Active {
		return Intent{}
	}
	return joystickIntent(float64(j.X-j.OriginX), float64(j.Y-j.OriginY))
}

func joystickIntent(dx, dy float64) Intent {
	length := math.Hypot(dx, dy)
	if length < joystickDeadZone {
		return Intent{}
	}
	nx, ny := dx/length, dy/length
	return Intent{
		Left:  nx < -joystickSector,
		Right: nx > joystickSector,
		Up:    ny < -joystickSector,
		Down:  ny > joystickSector,
	}
}

func pointer() (x, y int, pressed bool) {
	if touches := ebiten.AppendTouchIDs(nil); len(touches) > 0 {
		x, y = ebiten.TouchPosition(touches[0])
		return x, y, true
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y = ebiten.CursorPosition()
		return x, y, true
	}
	return 0, 0, false
}

func keyboardIntent() Intent {
	return Intent{
		Left:  ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		Right: ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
		Up:    ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW),
		Down:  ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS),
	}
}

// Union merges two intents direction by direction.
func (i Intent) Union(o Intent) Intent {
	return Intent{
		Left:  i.Left || o.Left,
		Right: i.Right || o.Right,
		Up:    i.Up || o.Up,
		Down:  i.Down || o.Down,
	}
}
