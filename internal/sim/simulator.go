package sim

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/contact"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/narrowphase"
	"github.com/san-kum/rigidsim/internal/solver"
	"github.com/san-kum/rigidsim/internal/world"
)

// Settings are the tuning parameters a simulator is built with.
type Settings struct {
	Gravity           mgl64.Vec3
	UseGravity        bool
	UseBroadPhase     bool
	IdealHz           int
	MinHz             int
	Iterations        int
	PersistenceFrames int
	Broadphase        broadphase.Config
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:           mgl64.Vec3{0, -9.8, 0},
		IdealHz:           DefaultIdealHz,
		MinHz:             DefaultMinHz,
		Iterations:        solver.DefaultIterations,
		PersistenceFrames: contact.DefaultWindow,
		Broadphase:        broadphase.DefaultConfig(),
	}
}

func (s Settings) validate() error {
	switch {
	case s.Iterations < 1:
		return fmt.Errorf("%w: constraint iterations %d must be at least 1", dynamo.ErrParameterBounds, s.Iterations)
	case s.PersistenceFrames < 0:
		return fmt.Errorf("%w: persistence frames %d must not be negative", dynamo.ErrParameterBounds, s.PersistenceFrames)
	case s.Broadphase.HalfSize[0] <= 0 || s.Broadphase.HalfSize[1] <= 0:
		return fmt.Errorf("%w: world half size %v must be positive", dynamo.ErrParameterBounds, s.Broadphase.HalfSize)
	case s.Broadphase.MaxDepth < 0:
		return fmt.Errorf("%w: tree depth %d must not be negative", dynamo.ErrParameterBounds, s.Broadphase.MaxDepth)
	case s.Broadphase.MaxPerLeaf < 1:
		return fmt.Errorf("%w: leaf capacity %d must be at least 1", dynamo.ErrParameterBounds, s.Broadphase.MaxPerLeaf)
	}
	return nil
}

// Simulator owns the per-world physics state: the step scheduler, the
// persistent contacts and the solver settings.
type Simulator struct {
	world      *world.World
	integrator Integrator
	scheduler  *Scheduler
	solver     *solver.ConstraintSolver
	tracker    *contact.Tracker
	treeCfg    broadphase.Config
	candidates *broadphase.CandidateSet

	gravity    mgl64.Vec3
	useGravity bool
	clock      func() time.Time

	metrics   []Metric
	observers []Observer

	frame      int
	time       float64
	detections int
}

func New(w *world.World, integrator Integrator, settings Settings) (*Simulator, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	scheduler, err := NewScheduler(settings.IdealHz, settings.MinHz)
	if err != nil {
		return nil, err
	}
	w.SetBroadPhase(settings.UseBroadPhase)
	return &Simulator{
		world:      w,
		integrator: integrator,
		scheduler:  scheduler,
		solver:     solver.NewConstraintSolver(settings.Iterations),
		tracker:    contact.NewTracker(settings.PersistenceFrames),
		treeCfg:    settings.Broadphase,
		candidates: broadphase.NewCandidateSet(),
		gravity:    settings.Gravity,
		useGravity: settings.UseGravity,
		clock:      time.Now,
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetClock replaces the wall clock used to measure physics cost.
func (s *Simulator) SetClock(clock func() time.Time) { s.clock = clock }

func (s *Simulator) World() *world.World { return s.world }
func (s *Simulator) Hz() int             { return s.scheduler.Hz() }
func (s *Simulator) FrameIndex() int     { return s.frame }
func (s *Simulator) Time() float64       { return s.time }
func (s *Simulator) Contacts() int       { return s.tracker.Len() }

// ContactRecords returns the persistent contacts ordered by pair key.
func (s *Simulator) ContactRecords() []contact.Record { return s.tracker.Records() }

func (s *Simulator) Gravity() mgl64.Vec3     { return s.gravity }
func (s *Simulator) SetGravity(g mgl64.Vec3) { s.gravity = g }
func (s *Simulator) GravityEnabled() bool    { return s.useGravity }
func (s *Simulator) UseGravity(enabled bool) { s.useGravity = enabled }

func (s *Simulator) BroadPhase() bool { return s.world.UseBroadPhase() }

func (s *Simulator) SetBroadPhase(enabled bool) {
	if enabled != s.world.UseBroadPhase() {
		log.Printf("setting broad-phase to %t", enabled)
	}
	s.world.SetBroadPhase(enabled)
}

func (s *Simulator) Iterations() int { return s.solver.Iterations() }

// SetIterations changes the constraint pass count, clamped to at least one.
func (s *Simulator) SetIterations(n int) int { return s.solver.SetIterations(n) }

// RemoveEntity takes e out of the world along with its persistent
// contacts. Partners still in the world get an end event; e does not.
func (s *Simulator) RemoveEntity(e *dynamo.Entity) bool {
	if !s.world.RemoveEntity(e) {
		return false
	}
	s.tracker.Forget(e)
	return true
}

// Clear drops persistent contacts without end notifications and discards
// accumulated frame time. Call it whenever the world is reset.
func (s *Simulator) Clear() {
	s.tracker.Clear()
	s.scheduler.Reset()
}

// Update advances the world by one rendered frame of frameDt seconds and
// returns the number of sub-steps taken.
func (s *Simulator) Update(frameDt float64) int {
	start := s.clock()

	s.world.Shuffle()
	s.scheduler.Accumulate(frameDt)

	entities := s.world.Entities()
	if s.world.UseBroadPhase() {
		for _, e := range entities {
			e.UpdateBroadphaseAABB()
		}
	}

	s.detections = 0
	steps := s.scheduler.Drain(func(dt float64) {
		s.Step(dt)
		s.time += dt
	})

	for _, e := range s.world.Entities() {
		if b := e.Body(); b != nil {
			b.ClearForces()
		}
	}
	ended := s.tracker.Age()

	cost := s.clock().Sub(start)
	hz := s.scheduler.Hz()
	s.scheduler.Adjust(frameDt, cost)

	f := Frame{
		Index:      s.frame,
		Time:       s.time,
		Hz:         hz,
		SubSteps:   steps,
		Detections: s.detections,
		Contacts:   s.tracker.Len(),
		Ended:      ended,
		Cost:       cost,
		Entities:   s.world.Entities(),
	}
	s.frame++
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
	return steps
}

// Step runs one fixed sub-step: integrate forces, detect and resolve
// contacts, relax constraints, then move bodies.
func (s *Simulator) Step(dt float64) {
	entities := s.world.Entities()
	s.integrator.IntegrateAccel(entities, s.gravity, s.useGravity, dt)

	if s.world.UseBroadPhase() {
		broadphase.Collect(s.treeCfg, entities, s.candidates)
		narrowphase.Candidates(s.candidates.Pairs(), s.resolve)
	} else {
		narrowphase.BruteForce(entities, s.resolve)
	}

	s.solver.Solve(s.world.Constraints(), dt)
	s.integrator.IntegrateVelocity(entities, dt)
}

func (s *Simulator) resolve(c narrowphase.CollisionInfo) {
	if !c.A.Trigger() && !c.B.Trigger() {
		solver.ResolveImpulse(c.A, c.B, c.Point)
	}
	s.tracker.Observe(c)
	s.detections++
}
