package sim

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Integrator advances bodies in two halves so that impulses can be applied
// between them.
type Integrator interface {
	IntegrateAccel(entities []*dynamo.Entity, gravity mgl64.Vec3, useGravity bool, dt float64)
	IntegrateVelocity(entities []*dynamo.Entity, dt float64)
}

// Frame summarises one Update call.
type Frame struct {
	Index      int
	Time       float64
	Hz         int
	SubSteps   int
	Detections int
	Contacts   int
	Ended      int
	Cost       time.Duration
	Entities   []*dynamo.Entity
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Config describes a headless run.
type Config struct {
	Duration      float64
	FrameRate     float64
	ValidateState bool
}

// Result holds per-frame samples of a headless run. Positions[i] lists the
// tracked bodies' positions after frame i, in Bodies order.
type Result struct {
	Bodies     []string
	Times      []float64
	Hz         []int
	SubSteps   []int
	Contacts   []int
	Detections []int
	Positions  [][]mgl64.Vec3
	Metrics    map[string]float64
	Errors     []error
	Frames     int
}
