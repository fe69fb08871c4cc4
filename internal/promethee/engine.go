package promethee

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const defaultTolerance = 1e-9

// Engine evaluates outranking relations. It holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	workers   int
	tolerance float64
}

type Option func(*Engine)

// WithWorkers bounds how many goroutines evaluate pairs concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithTolerance sets the slack allowed when checking that corrected
// preferences stay within [0,1].
func WithTolerance(t float64) Option {
	return func(e *Engine) {
		if t >= 0 {
			e.tolerance = t
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers:   runtime.GOMAXPROCS(0),
		tolerance: defaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pairs lists the ordered pairs compared under the inputs' topology.
// Alternatives are compared with each other only in the alternatives
// topology; otherwise they are compared with profiles in both directions and
// profiles are compared among themselves.
func Pairs(in *Inputs) []Pair {
	var pairs []Pair
	if !in.Topology.WithProfiles() {
		pairs = make([]Pair, 0, len(in.Alternatives)*len(in.Alternatives))
		for _, a := range in.Alternatives {
			for _, b := range in.Alternatives {
				pairs = append(pairs, Pair{A: a, B: b})
			}
		}
		return pairs
	}
	n := 2*len(in.Alternatives)*len(in.Profiles) + len(in.Profiles)*len(in.Profiles)
	pairs = make([]Pair, 0, n)
	for _, a := range in.Alternatives {
		for _, p := range in.Profiles {
			pairs = append(pairs, Pair{A: a, B: p}, Pair{A: p, B: a})
		}
	}
	for _, p := range in.Profiles {
		for _, q := range in.Profiles {
			pairs = append(pairs, Pair{A: p, B: q})
		}
	}
	return pairs
}

// criterionFunc computes one per-criterion value for the evaluations (ga, gb)
// of an ordered pair.
type criterionFunc func(c Criterion, ga, gb float64) (float64, error)

// evalPairs applies fn to every pair and criterion. Pairs are split into
// chunks evaluated on a bounded worker group; the result maps are built on
// the calling goroutine once all chunks are done.
func (e *Engine) evalPairs(in *Inputs, pairs []Pair, fn criterionFunc) (PartialMatrix, error) {
	values := make([][]float64, len(pairs))

	chunk := (len(pairs) + e.workers - 1) / e.workers
	if chunk < 1 {
		chunk = 1
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for start := 0; start < len(pairs); start += chunk {
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				pair := pairs[i]
				row := make([]float64, len(in.Criteria))
				for j, c := range in.Criteria {
					ga, okA := in.evaluation(pair.A, c.ID)
					gb, okB := in.evaluation(pair.B, c.ID)
					if !okA || !okB {
						return fmt.Errorf("%w: missing evaluation for pair (%s,%s) on criterion %s", ErrInvalidInputs, pair.A, pair.B, c.ID)
					}
					v, err := fn(c, ga, gb)
					if err != nil {
						return fmt.Errorf("criterion %s: %w", c.ID, err)
					}
					row[j] = v
				}
				values[i] = row
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(PartialMatrix)
	for i, pair := range pairs {
		for j, c := range in.Criteria {
			out.Set(pair.A, pair.B, c.ID, values[i][j])
		}
	}
	return out, nil
}

// PartialPreference computes the preference degree of ga over gb on c.
func PartialPreference(c Criterion, ga, gb float64) (float64, error) {
	diff, err := Difference(c.Direction, ga, gb)
	if err != nil {
		return 0, err
	}
	p, err := ResolveThreshold(c.Direction, ga, gb, c.Preference)
	if err != nil {
		return 0, err
	}
	q, err := ResolveThreshold(c.Direction, ga, gb, c.Indifference)
	if err != nil {
		return 0, err
	}
	s, err := ResolveThreshold(c.Direction, ga, gb, c.Sigma)
	if err != nil {
		return 0, err
	}
	return Evaluate(c.Shape, diff, p, q, s)
}

// PartialPreferences builds the per-criterion preference tensor for every
// pair of the topology.
func (e *Engine) PartialPreferences(in *Inputs) (PartialMatrix, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	return e.evalPairs(in, Pairs(in), PartialPreference)
}
