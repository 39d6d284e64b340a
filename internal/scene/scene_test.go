package scene

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/world"
)

func TestNames(t *testing.T) {
	names := Names()
	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
	for _, n := range names {
		if Describe(n) == "" {
			t.Errorf("scene %q has no description", n)
		}
	}
}

func TestBuild_Unknown(t *testing.T) {
	_, err := Build("nonexistent", world.New(1), Params{})
	if !errors.Is(err, dynamo.ErrUnknownScene) {
		t.Errorf("err = %v, want ErrUnknownScene", err)
	}
}

func TestBuild_AllScenes(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			w := world.New(1)
			w.AddEntity(dynamo.NewEntity("leftover"))

			s, err := Build(name, w, Params{Count: 6, Seed: 3})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if w.Find("leftover") != nil {
				t.Error("Build should clear the world first")
			}
			if w.Len() < 2 {
				t.Fatalf("scene has %d entities", w.Len())
			}
			if s.Focus == nil {
				t.Error("scene has no focus entity")
			}
			seen := map[string]bool{}
			for _, e := range w.Entities() {
				if _, ok := e.Volume(); !ok || e.Body() == nil {
					t.Errorf("%s lacks a volume or body", e.Name)
				}
				if _, ok := e.BroadphaseAABB(); !ok {
					t.Errorf("%s has no cached broad-phase bounds", e.Name)
				}
				if seen[e.Name] {
					t.Errorf("duplicate name %s", e.Name)
				}
				seen[e.Name] = true
			}
		})
	}
}

func TestBuild_Counts(t *testing.T) {
	tests := []struct {
		scene       string
		count       int
		entities    int
		constraints int
	}{
		{"drop", 7, 8, 0},
		{"stack", 5, 6, 0},
		{"pool", 10, 16, 0},
		{"random", 12, 13, 0},
		// anchors, links, pendulum bob and spring weight
		{"bridge", 4, 8, 7},
		{"course", 99, 33, 0},
	}
	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			w := world.New(1)
			if _, err := Build(tt.scene, w, Params{Count: tt.count}); err != nil {
				t.Fatal(err)
			}
			if w.Len() != tt.entities || len(w.Constraints()) != tt.constraints {
				t.Errorf("entities=%d constraints=%d, want %d and %d",
					w.Len(), len(w.Constraints()), tt.entities, tt.constraints)
			}
		})
	}
}

func TestElasticityByTag(t *testing.T) {
	w := world.New(1)
	if _, err := Build("course", w, Params{}); err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{TagSlime: 1.7, TagCoin: 0, TagGoal: 0.1, TagFloor: 0.5, TagSpring: 0.8}
	found := map[string]bool{}
	for _, e := range w.Entities() {
		el, ok := want[e.Tag]
		if !ok {
			continue
		}
		found[e.Tag] = true
		if got := e.Body().Elasticity(); got != el {
			t.Errorf("%s (%s): elasticity %v, want %v", e.Name, e.Tag, got, el)
		}
	}
	if len(found) != len(want) {
		t.Errorf("course is missing tags: found %v", found)
	}
	if _, ok := Elasticity(TagPlayer); ok {
		t.Error("player should keep the default elasticity")
	}
}

func tagged(name, tag string) *dynamo.Entity {
	e := dynamo.NewEntity(name)
	e.Tag = tag
	e.AttachBody(1)
	return e
}

func TestRules_CoinPickup(t *testing.T) {
	w := world.New(1)
	player := tagged("player", TagPlayer)
	coin := tagged("coin", TagCoin)
	other := tagged("crate", "")
	w.AddEntity(player)
	w.AddEntity(coin)

	r := NewRules()
	r.Watch(coin)
	coin.OnCollisionBegin(other)
	if r.Pending() {
		t.Fatal("coins are only collected by the player")
	}
	coin.OnCollisionBegin(player)
	coin.OnCollisionBegin(player)
	r.Apply(w)

	if r.Score != 1 {
		t.Errorf("Score = %d, want 1", r.Score)
	}
	if w.Find("coin") != nil {
		t.Error("collected coin still in the world")
	}
	if r.Pending() {
		t.Error("Apply left work queued")
	}
}

func TestRules_ResetAndGoal(t *testing.T) {
	w := world.New(1)
	ball := tagged("ball", TagPlayer)
	ball.Transform().SetPosition(mgl64.Vec3{16, 2, 16})
	w.AddEntity(ball)

	r := NewRules()
	r.Spawn(ball)

	ball.Transform().SetPosition(mgl64.Vec3{3, -4, 0})
	ball.Body().SetLinearVelocity(mgl64.Vec3{0, -9, 0})
	ball.OnCollisionBegin(tagged("floor", TagFloor))
	if r.Pending() {
		t.Fatal("touching a floor queued work")
	}
	ball.OnCollisionBegin(tagged("pit", TagReset))
	r.Apply(w)

	if ball.Transform().Position() != (mgl64.Vec3{16, 2, 16}) {
		t.Errorf("ball at %v, want spawn", ball.Transform().Position())
	}
	if ball.Body().LinearVelocity() != (mgl64.Vec3{}) {
		t.Error("velocity not cleared on reset")
	}

	ball.OnCollisionBegin(tagged("goal", TagGoal))
	if !r.Finished {
		t.Error("goal not reached")
	}
}

func TestRules_ButtonFiresSprings(t *testing.T) {
	w := world.New(1)
	ball := tagged("ball", TagPlayer)
	pad := tagged("pad", TagSpring)
	r := NewRules()
	r.Watch(ball)
	r.Spring(pad, mgl64.Vec3{-250, 0, 0})

	ball.OnCollisionBegin(tagged("button", TagButton))
	r.Apply(w)
	if pad.Body().Force() != (mgl64.Vec3{-250, 0, 0}) {
		t.Errorf("pad force = %v", pad.Body().Force())
	}

	pad.Body().ClearForces()
	r.Apply(w)
	if pad.Body().Force() != (mgl64.Vec3{}) {
		t.Error("spring fired twice for one press")
	}
}

func TestRules_WatchKeepsExistingListener(t *testing.T) {
	begins := 0
	coin := tagged("coin", TagCoin)
	coin.SetListener(dynamo.ListenerFuncs{Begin: func(_, _ *dynamo.Entity) { begins++ }})

	r := NewRules()
	r.Watch(coin)
	r.Watch(coin)
	coin.OnCollisionBegin(tagged("player", TagPlayer))

	if begins != 1 {
		t.Errorf("existing listener saw %d begins, want 1", begins)
	}
	if !r.Pending() {
		t.Error("rules did not see the event")
	}
}

func TestDropSettles(t *testing.T) {
	w := world.New(1)
	s, err := Build("drop", w, Params{Count: 12, Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	settings := sim.DefaultSettings()
	settings.UseGravity = true
	settings.UseBroadPhase = true
	simulator, err := sim.New(w, integrators.NewSemiImplicitEuler(), settings)
	if err != nil {
		t.Fatal(err)
	}
	simulator.SetClock(func() func() time.Time {
		now := time.Unix(0, 0)
		return func() time.Time { return now }
	}())

	for i := 0; i < 180; i++ {
		simulator.Update(1.0 / 60)
		s.Rules.Apply(w)
	}
	for _, e := range w.Entities() {
		if !e.IsValid() {
			t.Fatalf("%s has a non-finite state", e.Name)
		}
		if y := e.Transform().Position().Y(); y < 0 {
			t.Errorf("%s fell through the floor: y=%v", e.Name, y)
		}
	}
}
