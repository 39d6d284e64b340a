package scene

import (
	"log"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Remover takes entities out of the running world. sim.Simulator also
// drops their contacts; a bare world.World does not.
type Remover interface {
	RemoveEntity(e *dynamo.Entity) bool
}

// Rules turns collision begin events into gameplay effects. Events only
// queue work; Apply performs it between frames so that nothing teleports
// or disappears in the middle of a physics step.
type Rules struct {
	Score    int
	Finished bool

	spawns  map[*dynamo.Entity]mgl64.Vec3
	springs map[*dynamo.Entity]mgl64.Vec3

	resets    []*dynamo.Entity
	collected []*dynamo.Entity
	fire      bool
}

func NewRules() *Rules {
	return &Rules{
		spawns:  make(map[*dynamo.Entity]mgl64.Vec3),
		springs: make(map[*dynamo.Entity]mgl64.Vec3),
	}
}

// Watch attaches the rules to e, keeping any listener already there.
func (r *Rules) Watch(e *dynamo.Entity) {
	switch l := e.Listener().(type) {
	case nil:
		e.SetListener(r)
	case *Rules:
		if l != r {
			e.SetListener(dynamo.Listeners{l, r})
		}
	case dynamo.Listeners:
		for _, existing := range l {
			if rules, ok := existing.(*Rules); ok && rules == r {
				return
			}
		}
		e.SetListener(append(l, r))
	default:
		e.SetListener(dynamo.Listeners{l, r})
	}
}

// Spawn watches e and sends it back to its current position whenever it
// touches a reset volume.
func (r *Rules) Spawn(e *dynamo.Entity) {
	r.spawns[e] = e.Transform().Position()
	r.Watch(e)
}

// Spring registers a block that is pushed with force while a player
// touches a button.
func (r *Rules) Spring(e *dynamo.Entity, force mgl64.Vec3) {
	r.springs[e] = force
}

func (r *Rules) OnCollisionBegin(self, other *dynamo.Entity) {
	if _, ok := r.spawns[self]; ok && other.Tag == TagReset && !slices.Contains(r.resets, self) {
		r.resets = append(r.resets, self)
	}
	if self.Tag == TagPlayer {
		switch other.Tag {
		case TagGoal:
			if !r.Finished {
				log.Printf("%s reached the goal", self.Name)
			}
			r.Finished = true
		case TagButton:
			r.fire = true
		}
	}
	if self.Tag == TagCoin && other.Tag == TagPlayer && !slices.Contains(r.collected, self) {
		r.collected = append(r.collected, self)
	}
}

func (r *Rules) OnCollisionEnd(self, other *dynamo.Entity) {}

// Pending reports whether Apply has queued work.
func (r *Rules) Pending() bool {
	return len(r.resets) > 0 || len(r.collected) > 0 || r.fire
}

// Apply performs the queued effects: respawns, coin pickups (removed
// through w) and spring pushes.
func (r *Rules) Apply(w Remover) {
	for _, e := range r.resets {
		e.Transform().SetPosition(r.spawns[e])
		if b := e.Body(); b != nil {
			b.SetLinearVelocity(mgl64.Vec3{})
			b.SetAngularVelocity(mgl64.Vec3{})
		}
	}
	r.resets = r.resets[:0]

	for _, coin := range r.collected {
		if w.RemoveEntity(coin) {
			r.Score++
			log.Printf("collected %s, score %d", coin.Name, r.Score)
		}
	}
	r.collected = r.collected[:0]

	if r.fire {
		for e, force := range r.springs {
			if b := e.Body(); b != nil {
				b.AddForce(force)
			}
		}
		r.fire = false
	}
}
