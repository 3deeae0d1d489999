package world

import (
	"image/color"
	"testing"
)

func TestAmbientColor(t *testing.T) {
	tests := map[string]struct {
		t    float64
		want color.RGBA
	}{
		"midnight": {t: 0, want: MidnightColor},
		"dawn":     {t: 0.25, want: DawnColor},
		"noon":     {t: 0.5, want: NoonColor},
		"dusk":     {t: 0.75, want: DuskColor},
		"end":      {t: 1, want: MidnightColor},
		"midpoint": {t: 0.125, want: color.RGBA{R: 130, G: 102, B: 94, A: 0xff}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := AmbientColor(tt.t); got != tt.want {
				t.Fatalf("AmbientColor(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestClockString(t *testing.T) {
	tests := map[string]struct {
		t    float64
		want string
	}{
		"midnight": {t: 0, want: "00:00"},
		"dawn":     {t: 0.25, want: "06:00"},
		"noon":     {t: 0.5, want: "12:00"},
		"evening":  {t: 0.75, want: "18:00"},
		"late":     {t: 0.999, want: "23:58"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ClockString(tt.t); got != tt.want {
				t.Fatalf("ClockString(%v) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}

func TestClockSetNormalizes(t *testing.T) {
	var c Clock
	if c.Known() {
		t.Fatal("zero clock should be unknown")
	}
	c.Set(1.25)
	if c.T() != 0.25 || !c.Known() {
		t.Fatalf("T = %v, want 0.25", c.T())
	}
	c.Set(-0.25)
	if c.T() != 0.75 {
		t.Fatalf("T = %v, want 0.75", c.T())
	}
	if c.String() != "18:00" {
		t.Fatalf("String = %q, want 18:00", c.String())
	}
}

func TestClockNight(t *testing.T) {
	tests := map[string]struct {
		t     float64
		night bool
	}{
		"midnight":   {t: 0, night: true},
		"early":      {t: 0.29, night: true},
		"dawn edge":  {t: 0.3, night: false},
		"noon":       {t: 0.5, night: false},
		"dusk edge":  {t: 0.7, night: false},
		"late night": {t: 0.8, night: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var c Clock
			c.Set(tt.t)
			if c.IsNight() != tt.night {
				t.Fatalf("IsNight at %v = %v, want %v", tt.t, c.IsNight(), tt.night)
			}
			if tt.night && c.LightIntensity() != nightLightIntensity {
				t.Fatalf("LightIntensity = %v at night", c.LightIntensity())
			}
			if !tt.night && c.LightIntensity() != 0 {
				t.Fatalf("LightIntensity = %v during the day", c.LightIntensity())
			}
		})
	}
}
