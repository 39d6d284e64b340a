// Package optim sweeps physics settings over a grid and keeps the
// combination that minimises a run metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/experiment"
)

// Setters maps a tunable parameter name to the config field it writes.
var Setters = map[string]func(*config.Config, float64){
	"iterations":         func(c *config.Config, v float64) { c.Physics.Iterations = int(v) },
	"ideal_hz":           func(c *config.Config, v float64) { c.Physics.IdealHz = int(v) },
	"min_hz":             func(c *config.Config, v float64) { c.Physics.MinHz = int(v) },
	"persistence_frames": func(c *config.Config, v float64) { c.Physics.PersistenceFrames = int(v) },
	"linear_damping":     func(c *config.Config, v float64) { c.Physics.LinearDamping = v },
	"angular_damping":    func(c *config.Config, v float64) { c.Physics.AngularDamping = v },
	"tree_depth":         func(c *config.Config, v float64) { c.Physics.TreeDepth = int(v) },
	"tree_leaf_capacity": func(c *config.Config, v float64) { c.Physics.TreeLeafCapacity = int(v) },
	"count":              func(c *config.Config, v float64) { c.Count = int(v) },
}

// Params lists the tunable parameter names.
func Params() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trial is one evaluated grid point. Err is set when the point could not
// be built or run; Value is then +Inf.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrParameterBounds, len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := Setters[name]; !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: parameter %q has no values", dynamo.ErrParameterBounds, name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// ParseGrid reads "name=v1,v2,..." terms into a grid search.
func ParseGrid(terms []string) (*GridSearch, error) {
	var names []string
	var ranges [][]float64
	for _, term := range terms {
		name, list, ok := strings.Cut(term, "=")
		if !ok {
			return nil, fmt.Errorf("%w: grid term %q is not name=v1,v2", dynamo.ErrParameterBounds, term)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrParameterBounds, name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return NewGridSearch(names, ranges)
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point on a copy of base and returns the point
// with the lowest metric, its value and every trial in grid order. Points
// that fail validation or diverge are recorded but never chosen.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams, &trials)
	if err != nil {
		return nil, 0, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("%w: no grid point produced %q", dynamo.ErrInvalidState, metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
	}

	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		val, err := evaluate(ctx, base, point, metricName)
		*trials = append(*trials, Trial{Params: point, Value: val, Err: err})
		if err == nil && val < *best {
			*best = val
			*bestParams = point
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, base, metricName, best, bestParams, trials); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

func evaluate(ctx context.Context, base *config.Config, point map[string]float64, metricName string) (float64, error) {
	cfg := base.Clone()
	for name, v := range point {
		Setters[name](cfg, v)
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return math.Inf(1), err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return math.Inf(1), err
	}
	if len(result.Errors) > 0 {
		return math.Inf(1), result.Errors[0]
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return math.Inf(1), fmt.Errorf("%w: metric %q not reported", dynamo.ErrParameterBounds, metricName)
	}
	return val, nil
}
