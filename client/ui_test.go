package client

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func TestLogUISurfaces(t *testing.T) {
	u := NewLogUI(zaptest.NewLogger(t))
	u.OpenSurface("guestbook")
	u.OpenSurface("shop")

	names := u.OpenSurfaces()
	sort.Strings(names)
	if diff := cmp.Diff([]string{"guestbook", "shop"}, names); diff != "" {
		t.Fatalf("open surfaces mismatch (-want +got):\n%s", diff)
	}

	u.CloseSurface("shop")
	if u.SurfaceOpen("shop") || !u.SurfaceOpen("guestbook") {
		t.Fatal("CloseSurface closed the wrong surface")
	}
	u.CloseAll()
	if len(u.OpenSurfaces()) != 0 {
		t.Fatalf("surfaces still open: %v", u.OpenSurfaces())
	}
}
