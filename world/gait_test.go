package world

import (
	"math"
	"testing"
	"time"
)

func TestGaitWalking(t *testing.T) {
	tests := map[string]struct {
		now, last time.Duration
		want      bool
	}{
		"fresh":       {now: 150 * time.Millisecond, last: 100 * time.Millisecond, want: true},
		"window edge": {now: 200 * time.Millisecond, last: 100 * time.Millisecond, want: false},
		"stale":       {now: time.Second, last: 100 * time.Millisecond, want: false},
		"never moved": {now: 50 * time.Millisecond, last: 0, want: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := PlayerGait.Walking(tt.now, tt.last); got != tt.want {
				t.Fatalf("Walking(%v, %v) = %v, want %v", tt.now, tt.last, got, tt.want)
			}
		})
	}
}

func TestGaitPoseBounds(t *testing.T) {
	for _, g := range []Gait{PlayerGait, NPCGait} {
		if pose := g.At(time.Second, false); pose != (Pose{}) {
			t.Fatalf("idle pose = %+v, want zero", pose)
		}
		for ms := 0; ms < 2000; ms += 7 {
			pose := g.At(time.Duration(ms)*time.Millisecond, true)
			if pose.Bob > 0 || pose.Bob < -g.BobAmplitude {
				t.Fatalf("Bob = %v out of [-%v, 0]", pose.Bob, g.BobAmplitude)
			}
			if math.Abs(pose.Tilt) > g.TiltAmplitude {
				t.Fatalf("Tilt = %v out of ±%v", pose.Tilt, g.TiltAmplitude)
			}
		}
	}
}

func TestGaitFor(t *testing.T) {
	if GaitFor(KindNPC) != NPCGait || GaitFor(KindPlayer) != PlayerGait {
		t.Fatal("GaitFor picked the wrong gait")
	}
	e := Entity{LastUpdatedAt: time.Second}
	if !PlayerGait.For(time.Second+50*time.Millisecond, e).Walking {
		t.Fatal("entity updated 50ms ago should walk")
	}
}
