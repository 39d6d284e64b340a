// Package world holds the entities and constraints a simulator steps.
package world

import (
	"math/rand"
	"slices"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

type World struct {
	entities    []*dynamo.Entity
	constraints []dynamo.Constraint

	useBroadPhase      bool
	shuffleObjects     bool
	shuffleConstraints bool
	rng                *rand.Rand
}

// New returns an empty world. The seed drives the optional shuffles.
func New(seed int64) *World {
	return &World{rng: rand.New(rand.NewSource(seed))}
}

// AddEntity appends e and caches its broad-phase bounds.
func (w *World) AddEntity(e *dynamo.Entity) {
	e.UpdateBroadphaseAABB()
	w.entities = append(w.entities, e)
}

// RemoveEntity removes e, keeping the order of the rest. Constraints that
// reference e are not touched.
func (w *World) RemoveEntity(e *dynamo.Entity) bool {
	i := slices.Index(w.entities, e)
	if i < 0 {
		return false
	}
	w.entities = slices.Delete(w.entities, i, i+1)
	return true
}

func (w *World) AddConstraint(c dynamo.Constraint) {
	w.constraints = append(w.constraints, c)
}

func (w *World) RemoveConstraint(c dynamo.Constraint) bool {
	i := slices.Index(w.constraints, c)
	if i < 0 {
		return false
	}
	w.constraints = slices.Delete(w.constraints, i, i+1)
	return true
}

// Entities returns the live slice in update order. Callers must not modify it.
func (w *World) Entities() []*dynamo.Entity { return w.entities }

// Constraints returns the live slice in solve order. Callers must not modify it.
func (w *World) Constraints() []dynamo.Constraint { return w.constraints }

func (w *World) Len() int { return len(w.entities) }

// Find returns the first entity with the given name.
func (w *World) Find(name string) *dynamo.Entity {
	for _, e := range w.entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (w *World) UseBroadPhase() bool        { return w.useBroadPhase }
func (w *World) SetBroadPhase(enabled bool) { w.useBroadPhase = enabled }

// ShuffleObjects makes every Shuffle call permute the entity order.
func (w *World) ShuffleObjects(enabled bool) { w.shuffleObjects = enabled }

// ShuffleConstraints makes every Shuffle call permute the constraint order.
func (w *World) ShuffleConstraints(enabled bool) { w.shuffleConstraints = enabled }

// Shuffle applies the enabled permutations. The simulator calls it once per
// frame so that solve order bias does not build up.
func (w *World) Shuffle() {
	if w.shuffleObjects {
		w.rng.Shuffle(len(w.entities), func(i, j int) {
			w.entities[i], w.entities[j] = w.entities[j], w.entities[i]
		})
	}
	if w.shuffleConstraints {
		w.rng.Shuffle(len(w.constraints), func(i, j int) {
			w.constraints[i], w.constraints[j] = w.constraints[j], w.constraints[i]
		})
	}
}

// Clear removes every entity and constraint.
func (w *World) Clear() {
	w.entities = nil
	w.constraints = nil
}
