// Package experiment turns a config into a populated world, a simulator
// stepping it and the metrics watching it.
package experiment

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/world"
)

type Experiment struct {
	cfg       *config.Config
	params    scene.Params
	scene     *scene.Scene
	simulator *sim.Simulator
}

// New validates cfg and builds its scene with cfg.Seed.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg, cfg.Seed)
}

func build(cfg *config.Config, seed int64) (*Experiment, error) {
	w := world.New(seed)
	w.ShuffleObjects(cfg.Shuffle.Objects)
	w.ShuffleConstraints(cfg.Shuffle.Constraints)

	params := scene.Params{Count: cfg.Count, Seed: seed}
	sc, err := scene.Build(cfg.Scene, w, params)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(w, cfg.Integrator(), cfg.Settings())
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}

	e := &Experiment{cfg: cfg, params: params, scene: sc, simulator: s}
	for _, m := range metrics.Standard(e.gravity()) {
		s.AddMetric(m)
	}
	// gameplay effects land between frames, after every listener has fired
	s.AddObserver(sim.ObserverFunc(func(sim.Frame) {
		if e.scene.Rules != nil {
			e.scene.Rules.Apply(s)
		}
	}))
	return e, nil
}

func (e *Experiment) gravity() mgl64.Vec3 {
	if !e.simulator.GravityEnabled() {
		return mgl64.Vec3{}
	}
	return e.simulator.Gravity()
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Params() scene.Params      { return e.params }
func (e *Experiment) Scene() *scene.Scene       { return e.scene }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// Rebuild repopulates the world with a fresh copy of the scene and drops
// the simulator's contacts without end events.
func (e *Experiment) Rebuild() error {
	sc, err := scene.Build(e.cfg.Scene, e.simulator.World(), e.params)
	if err != nil {
		return err
	}
	e.scene = sc
	e.simulator.Clear()
	return nil
}

// Run steps the scene for the configured duration.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.cfg.RunConfig())
}

// Factory builds one independent experiment per seed, for ensembles.
func Factory(cfg *config.Config) sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		e, err := build(cfg, seed)
		if err != nil {
			return nil, err
		}
		return e.simulator, nil
	}
}
