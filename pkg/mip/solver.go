package mip

import (
	"math"
	"time"
)

// Status reports how a solve run terminated.
type Status int

const (
	// StatusOptimal means the returned solution was proven optimal.
	StatusOptimal Status = iota
	// StatusFeasible means a solution was found but optimality was not
	// proven, typically because the time limit was reached first.
	StatusFeasible
	// StatusInfeasible means no assignment of the variables satisfies the
	// constraints.
	StatusInfeasible
	// StatusUnbounded means the objective can decrease without limit. A
	// well-formed model with bounded variables never reports it.
	StatusUnbounded
)

var statusNames = map[Status]string{
	StatusOptimal:    "optimal",
	StatusFeasible:   "feasible",
	StatusInfeasible: "infeasible",
	StatusUnbounded:  "unbounded",
}

func (status Status) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

// Solution holds the outcome of one solve run. Values is indexed by
// Var.Index() and is nil when Status is StatusInfeasible or
// StatusUnbounded.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	Runtime   time.Duration
}

func (solution *Solution) Value(v Var) float64 {
	return solution.Values[v.Index()]
}

// BoolValue reads a binary variable with the usual > 0.5 rounding, which
// absorbs the tolerance slack LP-based solvers leave on integer values.
func (solution *Solution) BoolValue(v Var) bool {
	return solution.Values[v.Index()] > 0.5
}

func (solution *Solution) IntValue(v Var) int64 {
	return int64(math.Round(solution.Values[v.Index()]))
}

// Solver solves a mixed-integer model. Infeasibility and unboundedness are
// reported through Solution.Status with a nil error; errors are reserved
// for failures of the solving machinery itself (missing executable,
// malformed solver output, unsupported model).
type Solver interface {
	Solve(model *Model) (*Solution, error)
}

type solverOptions struct {
	timeLimit      time.Duration
	objectiveScale int64
}

type SolverOption func(*solverOptions)

// WithTimeLimit bounds the solve wall time. When the limit is hit the
// backend reports its best feasible solution with StatusFeasible, or an
// error if none was found in time. Zero means no limit.
func WithTimeLimit(limit time.Duration) SolverOption {
	return func(options *solverOptions) {
		options.timeLimit = limit
	}
}

// WithObjectiveScale sets the factor by which the gokando backend scales
// float objective coefficients to integers. Other backends ignore it.
func WithObjectiveScale(scale int64) SolverOption {
	return func(options *solverOptions) {
		options.objectiveScale = scale
	}
}

func newSolverOptions(opts ...SolverOption) solverOptions {
	options := solverOptions{objectiveScale: 1000}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
