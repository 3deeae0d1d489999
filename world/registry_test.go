package world

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T {
	return &v
}

func TestRegistryUpsert(t *testing.T) {
	r := NewRegistry()
	created := r.Upsert("a", Fields{
		Kind:        ptr(KindPlayer),
		Position:    &Vector{X: 10, Y: 20},
		DisplayName: ptr("alice"),
	})
	if !created {
		t.Fatal("first upsert should create")
	}
	if created := r.Upsert("a", Fields{Position: &Vector{X: 5, Y: 20}}); created {
		t.Fatal("second upsert should merge")
	}

	e, ok := r.Get("a")
	if !ok {
		t.Fatal("entity missing after upsert")
	}
	want := Entity{
		ID:          "a",
		Kind:        KindPlayer,
		Position:    Vector{X: 5, Y: 20},
		FacingLeft:  true,
		DisplayName: "alice",
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Fatalf("entity mismatch (-want +got):\n%s", diff)
	}

	r.Upsert("a", Fields{Position: &Vector{X: 8, Y: 20}})
	if e, _ := r.Get("a"); e.FacingLeft {
		t.Fatal("moving right should face right")
	}
	r.Upsert("a", Fields{Position: &Vector{X: 8, Y: 40}})
	if e, _ := r.Get("a"); e.FacingLeft {
		t.Fatal("vertical movement should keep facing")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Upsert("a", Fields{Health: &Health{Current: 5, Max: 10}})
	e, _ := r.Get("a")
	e.Position.X = 99

	got, _ := r.Get("a")
	if got.Position.X != 0 {
		t.Fatalf("Position.X = %v, registry mutated through a copy", got.Position.X)
	}
	if got.Health == nil || *got.Health != (Health{Current: 5, Max: 10}) {
		t.Fatalf("Health = %+v, want 5/10", got.Health)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Upsert("a", Fields{DisplayName: ptr("alice")})

	e, ok := r.Remove("a")
	if !ok || e.DisplayName != "alice" {
		t.Fatalf("Remove = %+v, %v; want alice, true", e, ok)
	}
	if r.Has("a") || r.Len() != 0 {
		t.Fatal("entity still present after Remove")
	}
	if _, ok := r.Remove("a"); ok {
		t.Fatal("second Remove should report missing")
	}
}

func TestRegistryReplaceAll(t *testing.T) {
	r := NewRegistry()
	r.Upsert("p1", Fields{Kind: ptr(KindPlayer)})
	r.Upsert("1", Fields{Kind: ptr(KindNPC)})
	r.Upsert("2", Fields{Kind: ptr(KindNPC)})

	r.ReplaceAll(KindNPC, []Entity{
		{ID: "3", Position: Vector{X: 1, Y: 2}, DisplayName: "Panda"},
	})

	var ids []string
	for _, e := range r.All() {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"3", "p1"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got := r.Count(KindNPC); got != 1 {
		t.Fatalf("Count(KindNPC) = %d, want 1", got)
	}
	if e, _ := r.Get("3"); e.Kind != KindNPC {
		t.Fatalf("replaced entity kind = %v, want npc", e.Kind)
	}
}

func TestRegistryForEachVisitsAll(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"a", "b", "c"} {
		r.Upsert(id, Fields{LastUpdatedAt: ptr(time.Second)})
	}
	seen := map[string]bool{}
	r.ForEach(func(e Entity) {
		seen[e.ID] = true
	})
	if len(seen) != 3 {
		t.Fatalf("visited %d entities, want 3", len(seen))
	}
}

func TestEntityName(t *testing.T) {
	e := Entity{}
	if got := e.Name("Unknown"); got != "Unknown" {
		t.Fatalf("Name = %q, want fallback", got)
	}
	e.DisplayName = "bob"
	if got := e.Name("Unknown"); got != "bob" {
		t.Fatalf("Name = %q, want bob", got)
	}
}
