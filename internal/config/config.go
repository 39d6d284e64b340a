package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/contact"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/solver"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrameRate = 60.0
	DefaultDuration  = 10.0
	DefaultCount     = 20
)

type Config struct {
	Scene     string        `yaml:"scene"`
	FrameRate float64       `yaml:"frame_rate"`
	Duration  float64       `yaml:"duration"`
	Seed      int64         `yaml:"seed"`
	Count     int           `yaml:"count"`
	Physics   PhysicsConfig `yaml:"physics"`
	Shuffle   ShuffleConfig `yaml:"shuffle"`
}

type PhysicsConfig struct {
	Gravity           [3]float64 `yaml:"gravity"`
	UseGravity        bool       `yaml:"use_gravity"`
	UseBroadPhase     bool       `yaml:"use_broad_phase"`
	IdealHz           int        `yaml:"ideal_hz"`
	MinHz             int        `yaml:"min_hz"`
	Iterations        int        `yaml:"iterations"`
	PersistenceFrames int        `yaml:"persistence_frames"`
	LinearDamping     float64    `yaml:"linear_damping"`
	AngularDamping    float64    `yaml:"angular_damping"`
	WorldHalfSize     float64    `yaml:"world_half_size"`
	TreeDepth         int        `yaml:"tree_depth"`
	TreeLeafCapacity  int        `yaml:"tree_leaf_capacity"`
}

type ShuffleConfig struct {
	Objects     bool `yaml:"objects"`
	Constraints bool `yaml:"constraints"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:     "drop",
		FrameRate: DefaultFrameRate,
		Duration:  DefaultDuration,
		Count:     DefaultCount,
		Physics: PhysicsConfig{
			Gravity:           [3]float64{0, -9.8, 0},
			UseGravity:        true,
			UseBroadPhase:     true,
			IdealHz:           sim.DefaultIdealHz,
			MinHz:             sim.DefaultMinHz,
			Iterations:        solver.DefaultIterations,
			PersistenceFrames: contact.DefaultWindow,
			LinearDamping:     integrators.DefaultDamping,
			AngularDamping:    integrators.DefaultDamping,
			WorldHalfSize:     broadphase.DefaultHalfSize,
			TreeDepth:         broadphase.DefaultMaxDepth,
			TreeLeafCapacity:  broadphase.DefaultMaxPerLeaf,
		},
	}
}

// Clone returns a deep copy that can be edited without touching c.
func (c *Config) Clone() *Config {
	out := &Config{}
	if err := copier.CopyWithOption(out, c, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("config: clone: %v", err))
	}
	return out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level values. Physics values are checked again
// when a simulator is built from Settings.
func (c *Config) Validate() error {
	switch {
	case c.FrameRate <= 0:
		return fmt.Errorf("%w: frame_rate must be positive, got %g", dynamo.ErrParameterBounds, c.FrameRate)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, c.Duration)
	case c.Count < 0:
		return fmt.Errorf("%w: count must not be negative, got %d", dynamo.ErrParameterBounds, c.Count)
	case c.Physics.LinearDamping < 0 || c.Physics.AngularDamping < 0:
		return fmt.Errorf("%w: damping must not be negative", dynamo.ErrParameterBounds)
	case c.Physics.MinHz < 1 || c.Physics.MinHz > c.Physics.IdealHz:
		return fmt.Errorf("%w: min_hz %d must be in [1, ideal_hz=%d]", dynamo.ErrParameterBounds, c.Physics.MinHz, c.Physics.IdealHz)
	case c.Physics.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1, got %d", dynamo.ErrParameterBounds, c.Physics.Iterations)
	case c.Physics.WorldHalfSize <= 0:
		return fmt.Errorf("%w: world_half_size must be positive, got %g", dynamo.ErrParameterBounds, c.Physics.WorldHalfSize)
	}
	return nil
}

func (c *Config) Settings() sim.Settings {
	p := c.Physics
	return sim.Settings{
		Gravity:           mgl64.Vec3(p.Gravity),
		UseGravity:        p.UseGravity,
		UseBroadPhase:     p.UseBroadPhase,
		IdealHz:           p.IdealHz,
		MinHz:             p.MinHz,
		Iterations:        p.Iterations,
		PersistenceFrames: p.PersistenceFrames,
		Broadphase: broadphase.Config{
			HalfSize:   mgl64.Vec2{p.WorldHalfSize, p.WorldHalfSize},
			MaxDepth:   p.TreeDepth,
			MaxPerLeaf: p.TreeLeafCapacity,
		},
	}
}

func (c *Config) Integrator() *integrators.SemiImplicitEuler {
	return &integrators.SemiImplicitEuler{
		LinearDamping:  c.Physics.LinearDamping,
		AngularDamping: c.Physics.AngularDamping,
	}
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{Duration: c.Duration, FrameRate: c.FrameRate, ValidateState: true}
}
