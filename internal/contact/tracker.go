// Package contact turns per-step intersections into begin and end events.
//
// A pair stays "in contact" for a short window of frames after it was last
// detected, so brief gaps in detection do not produce a flicker of
// begin/end notifications.
package contact

import (
	"sort"

	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/narrowphase"
)

// DefaultWindow is the number of frames a contact survives without being
// detected again.
const DefaultWindow = 5

// Record is one persistent contact.
type Record struct {
	Key        broadphase.PairKey
	A, B       *dynamo.Entity
	Point      narrowphase.ContactPoint
	FramesLeft int
}

// Tracker holds the set of currently touching pairs.
type Tracker struct {
	window  int
	records map[broadphase.PairKey]*Record
}

// NewTracker returns a tracker with the given persistence window. A negative
// window is treated as zero.
func NewTracker(window int) *Tracker {
	if window < 0 {
		window = 0
	}
	return &Tracker{
		window:  window,
		records: make(map[broadphase.PairKey]*Record),
	}
}

func (t *Tracker) Window() int { return t.window }

// Observe records a detected intersection. A new pair starts a contact
// episode and notifies both entities; a known pair has its window reset and
// its contact data replaced. Observe reports whether the episode is new.
func (t *Tracker) Observe(info narrowphase.CollisionInfo) bool {
	key := info.Key()
	if r, ok := t.records[key]; ok {
		r.Point = info.Point
		r.FramesLeft = t.window
		return false
	}
	t.records[key] = &Record{
		Key:        key,
		A:          info.A,
		B:          info.B,
		Point:      info.Point,
		FramesLeft: t.window,
	}
	info.A.OnCollisionBegin(info.B)
	info.B.OnCollisionBegin(info.A)
	return true
}

// Age runs once per frame. Every record loses one frame; records that run
// out are removed and both entities are told the contact ended. Ended pairs
// are notified in key order. Age returns the number of ended contacts.
func (t *Tracker) Age() int {
	var ended []*Record
	for key, r := range t.records {
		r.FramesLeft--
		if r.FramesLeft < 0 {
			ended = append(ended, r)
			delete(t.records, key)
		}
	}
	sort.Slice(ended, func(i, j int) bool { return ended[i].Key.Less(ended[j].Key) })
	for _, r := range ended {
		r.A.OnCollisionEnd(r.B)
		r.B.OnCollisionEnd(r.A)
	}
	return len(ended)
}

// Forget drops every record involving e, for entities leaving the world.
// The remaining partner of each pair is told the contact ended; e itself
// hears nothing. Forget returns the number of records dropped.
func (t *Tracker) Forget(e *dynamo.Entity) int {
	var dropped []*Record
	for key, r := range t.records {
		if r.A == e || r.B == e {
			dropped = append(dropped, r)
			delete(t.records, key)
		}
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Key.Less(dropped[j].Key) })
	for _, r := range dropped {
		if r.A == e {
			r.B.OnCollisionEnd(e)
		} else {
			r.A.OnCollisionEnd(e)
		}
	}
	return len(dropped)
}

// Clear drops every record without notifying anyone.
func (t *Tracker) Clear() {
	clear(t.records)
}

func (t *Tracker) Len() int { return len(t.records) }

func (t *Tracker) Contains(key broadphase.PairKey) bool {
	_, ok := t.records[key]
	return ok
}

// Records returns a snapshot of all contacts ordered by key.
func (t *Tracker) Records() []Record {
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}
