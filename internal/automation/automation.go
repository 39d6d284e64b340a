// Package automation runs scripted batches of headless simulations
// described in YAML.
package automation

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Zero fields keep the preset's (or the
// default config's) value; the pointer fields distinguish off from unset.
type ScenarioStep struct {
	Scene      string  `yaml:"scene"`
	Preset     string  `yaml:"preset"`
	Duration   float64 `yaml:"duration"`
	FrameRate  float64 `yaml:"frame_rate"`
	Seed       int64   `yaml:"seed"`
	Count      int     `yaml:"count"`
	Iterations int     `yaml:"iterations"`
	BroadPhase *bool   `yaml:"broad_phase"`
	Gravity    *bool   `yaml:"gravity"`
	Trials     int     `yaml:"trials"`
	SaveAs     string  `yaml:"save_as"`
}

// StepResult is the outcome of one step. Trials is filled instead of
// Result when the step asked for more than one trial.
type StepResult struct {
	Label  string
	Config *config.Config
	Result *sim.Result
	Trials []MonteCarloResult
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s has no steps", dynamo.ErrParameterBounds, path)
	}

	return &scenario, nil
}

// Config resolves the step against its preset and the defaults.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p := config.GetPreset(s.Scene, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: no preset %q for scene %q", dynamo.ErrUnknownScene, s.Preset, s.Scene)
		}
		cfg = p
	}
	if s.Scene != "" {
		cfg.Scene = s.Scene
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.FrameRate > 0 {
		cfg.FrameRate = s.FrameRate
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Count > 0 {
		cfg.Count = s.Count
	}
	if s.Iterations > 0 {
		cfg.Physics.Iterations = s.Iterations
	}
	if s.BroadPhase != nil {
		cfg.Physics.UseBroadPhase = *s.BroadPhase
	}
	if s.Gravity != nil {
		cfg.Physics.UseGravity = *s.Gravity
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order. Single runs are saved to store
// when it is non-nil; ensembles are summarised only.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.SaveAs
		if label == "" {
			label = fmt.Sprintf("%s#%d", step.Scene, i+1)
		}
		log.Printf("step %d/%d: %s", i+1, len(scenario.Steps), label)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		out := StepResult{Label: label, Config: cfg}

		if step.Trials > 1 {
			out.Trials, err = RunMonteCarlo(ctx, cfg, step.Trials)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			results = append(results, out)
			continue
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		out.Result, err = exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		if store != nil {
			out.RunID, err = store.Save(cfg, out.Result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, out)
	}

	return results, nil
}

// MonteCarloResult holds one ensemble member's outcome.
type MonteCarloResult struct {
	Seed      int64
	Stability float64
	Errors    int
	Stable    bool
}

// RunMonteCarlo runs the config once per seed in [cfg.Seed, cfg.Seed+trials)
// concurrently. A trial is stable when it never produced a non-finite state
// and every frame passed the stability check.
func RunMonteCarlo(ctx context.Context, cfg *config.Config, trials int) ([]MonteCarloResult, error) {
	if trials < 1 {
		return nil, fmt.Errorf("%w: trials must be at least 1, got %d", dynamo.ErrParameterBounds, trials)
	}
	runs, err := sim.NewEnsemble(experiment.Factory(cfg), trials, cfg.Seed).Run(ctx, cfg.RunConfig())
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		stability := r.Metrics["stability"]
		results[i] = MonteCarloResult{
			Seed:      cfg.Seed + int64(i),
			Stability: stability,
			Errors:    len(r.Errors),
			Stable:    len(r.Errors) == 0 && stability == 1,
		}
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
