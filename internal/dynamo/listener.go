package dynamo

// CollisionListener receives contact lifecycle events. self is the entity
// the listener is attached to and other the entity it touched.
type CollisionListener interface {
	OnCollisionBegin(self, other *Entity)
	OnCollisionEnd(self, other *Entity)
}

// ListenerFuncs adapts plain functions to CollisionListener. Nil fields are
// ignored.
type ListenerFuncs struct {
	Begin func(self, other *Entity)
	End   func(self, other *Entity)
}

func (l ListenerFuncs) OnCollisionBegin(self, other *Entity) {
	if l.Begin != nil {
		l.Begin(self, other)
	}
}

func (l ListenerFuncs) OnCollisionEnd(self, other *Entity) {
	if l.End != nil {
		l.End(self, other)
	}
}

// Listeners fans one event out to several listeners in order.
type Listeners []CollisionListener

func (ls Listeners) OnCollisionBegin(self, other *Entity) {
	for _, l := range ls {
		l.OnCollisionBegin(self, other)
	}
}

func (ls Listeners) OnCollisionEnd(self, other *Entity) {
	for _, l := range ls {
		l.OnCollisionEnd(self, other)
	}
}

// Constraint is a correction the solver applies a fixed number of times per
// sub-step, each time with a fraction of the sub-step.
type Constraint interface {
	UpdateConstraint(dt float64)
}
