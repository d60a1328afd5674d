package mip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// maxEmbeddedTotal caps the value range of any finite-domain sum variable.
// Beyond it the bitset domains the search clones become too heavy, so the
// model is rejected instead.
const maxEmbeddedTotal = 1 << 22

type gokandoSolver struct {
	options solverOptions
}

// NewGokandoSolver runs the model on the pure-Go finite-domain
// branch-and-bound of gokanlogic. No external binary is involved, which
// makes it the test and fallback backend; it is intended for small models.
// Constraint coefficients must be integral; objective coefficients are
// scaled by WithObjectiveScale and rounded.
func NewGokandoSolver(opts ...SolverOption) Solver {
	return &gokandoSolver{options: newSolverOptions(opts...)}
}

type fdTerm struct {
	index       int
	coefficient int
}

func (solver *gokandoSolver) Solve(model *Model) (*Solution, error) {
	start := time.Now()

	fdModel := minikanren.NewModel()

	// Finite domains are 1-indexed, so a model value v is carried as the
	// domain value v+1 throughout.
	fdVars := make([]*minikanren.FDVariable, model.VariableCount())
	for i, v := range model.vars {
		if v.lb < 0 {
			return nil, fmt.Errorf("gokando backend supports non-negative variables only, %q has lower bound %d", v.name, v.lb)
		}
		domain := minikanren.NewBitSetDomain(int(v.ub) + 1).RemoveBelow(int(v.lb) + 1)
		fdVars[i] = fdModel.NewVariableWithName(domain, v.name)
	}

	var one *minikanren.FDVariable
	constantOne := func() *minikanren.FDVariable {
		if one == nil {
			one = fdModel.NewVariableWithName(minikanren.NewBitSetDomainFromValues(1, []int{1}), "const_one")
		}
		return one
	}

	for row, c := range model.constraints {
		terms, rhs, err := integralRowTerms(model, c)
		if err != nil {
			return nil, fmt.Errorf("constraint c%d: %v", row, err)
		}

		if len(terms) == 0 {
			if !senseHolds(0, c.sense, rhs) {
				return &Solution{Status: StatusInfeasible, Runtime: time.Since(start)}, nil
			}
			continue
		}

		feasible, err := postRow(fdModel, model, fdVars, constantOne, terms, c.sense, rhs)
		if err != nil {
			return nil, fmt.Errorf("constraint c%d: %v", row, err)
		}
		if !feasible {
			return &Solution{Status: StatusInfeasible, Runtime: time.Since(start)}, nil
		}
	}

	objVar, err := solver.postObjective(fdModel, model, fdVars, constantOne)
	if err != nil {
		return nil, err
	}

	fdOptions := []minikanren.OptimizeOption{}
	if solver.options.timeLimit > 0 {
		fdOptions = append(fdOptions, minikanren.WithTimeLimit(solver.options.timeLimit))
	}

	fdValues, _, err := minikanren.NewSolver(fdModel).
		SolveOptimalWithOptions(context.Background(), objVar, true, fdOptions...)
	switch {
	case err == nil && fdValues == nil:
		return &Solution{Status: StatusInfeasible, Runtime: time.Since(start)}, nil
	case errors.Is(err, context.DeadlineExceeded):
		if fdValues == nil {
			return nil, fmt.Errorf("gokando hit the time limit before finding a feasible solution")
		}
		return decodeFDSolution(model, fdVars, fdValues, StatusFeasible, start), nil
	case err != nil:
		return nil, fmt.Errorf("gokando solve failed: %v", err)
	default:
		return decodeFDSolution(model, fdVars, fdValues, StatusOptimal, start), nil
	}
}

func decodeFDSolution(model *Model, fdVars []*minikanren.FDVariable, fdValues []int, status Status, start time.Time) *Solution {
	values := make([]float64, len(fdVars))
	for i, fdVar := range fdVars {
		values[i] = float64(fdValues[fdVar.ID()] - 1)
	}
	return &Solution{
		Status:    status,
		Values:    values,
		Objective: model.evaluateObjective(values),
		Runtime:   time.Since(start),
	}
}

// integralRowTerms folds a constraint's terms per variable, drops zeros and
// rejects non-integral coefficients or right-hand sides.
func integralRowTerms(model *Model, c constraint) ([]fdTerm, int, error) {
	coefficients, rhs := c.rowCoefficients(model.VariableCount())
	rhsInt := int(math.Round(rhs))
	if math.Abs(rhs-float64(rhsInt)) > 1e-9 {
		return nil, 0, fmt.Errorf("gokando backend requires an integral right-hand side, got %v", rhs)
	}
	terms := make([]fdTerm, 0, len(c.expr.terms))
	for index, coefficient := range coefficients {
		if coefficient == 0 {
			continue
		}
		rounded := int(math.Round(coefficient))
		if math.Abs(coefficient-float64(rounded)) > 1e-9 {
			return nil, 0, fmt.Errorf("gokando backend requires integral constraint coefficients, %q has %v", model.vars[index].name, coefficient)
		}
		terms = append(terms, fdTerm{index: index, coefficient: rounded})
	}
	return terms, rhsInt, nil
}

// postRow posts one linear row. The row arrives over model values; with
// every domain shifted by one the sum over domain values differs by the
// coefficient total, so the target window shifts by it as well. Returns
// false when the window is empty, which proves the row unsatisfiable.
func postRow(fdModel *minikanren.Model, model *Model, fdVars []*minikanren.FDVariable, constantOne func() *minikanren.FDVariable, terms []fdTerm, sense ConstraintSense, rhs int) (bool, error) {
	coefficientTotal := 0
	sumMin, sumMax := 0, 0
	pureCount := true
	for _, term := range terms {
		v := model.vars[term.index]
		fdMin, fdMax := int(v.lb)+1, int(v.ub)+1
		coefficientTotal += term.coefficient
		if term.coefficient > 0 {
			sumMin += term.coefficient * fdMin
			sumMax += term.coefficient * fdMax
		} else {
			sumMin += term.coefficient * fdMax
			sumMax += term.coefficient * fdMin
		}
		if v.kind != BinaryVar || term.coefficient != 1 {
			pureCount = false
		}
	}

	shift := 0
	if sumMin < 1 {
		shift = 1 - sumMin
	}
	lo, hi := sumMin+shift, sumMax+shift
	target := rhs + coefficientTotal + shift
	switch sense {
	case LessOrEqual:
		hi = min(hi, target)
	case GreaterOrEqual:
		lo = max(lo, target)
	default:
		lo, hi = max(lo, target), min(hi, target)
	}
	if lo > hi {
		return false, nil
	}
	if hi > maxEmbeddedTotal {
		return false, fmt.Errorf("row range %d exceeds the gokando backend limit", hi)
	}

	vars := make([]*minikanren.FDVariable, 0, len(terms)+1)
	coefficients := make([]int, 0, len(terms)+1)
	for _, term := range terms {
		vars = append(vars, fdVars[term.index])
		coefficients = append(coefficients, term.coefficient)
	}

	if pureCount && shift == 0 {
		// Count rows propagate better through the dedicated constraint.
		// Its total carries count+1, i.e. the sum over domain values minus
		// the term count plus one.
		n := len(terms)
		total := fdModel.NewVariableWithName(
			minikanren.NewBitSetDomain(hi-n+1).RemoveBelow(lo-n+1), fmt.Sprintf("count_%d", fdModel.VariableCount()))
		boolSum, err := minikanren.NewBoolSum(vars, total)
		if err != nil {
			return false, err
		}
		fdModel.AddConstraint(boolSum)
		return true, nil
	}

	if shift > 0 {
		vars = append(vars, constantOne())
		coefficients = append(coefficients, shift)
	}
	total := fdModel.NewVariableWithName(
		minikanren.NewBitSetDomain(hi).RemoveBelow(lo), fmt.Sprintf("sum_%d", fdModel.VariableCount()))
	linearSum, err := minikanren.NewLinearSum(vars, coefficients, total)
	if err != nil {
		return false, err
	}
	fdModel.AddConstraint(linearSum)
	return true, nil
}

// postObjective scales the float objective coefficients to integers and
// posts the weighted sum whose variable the branch-and-bound minimizes.
func (solver *gokandoSolver) postObjective(fdModel *minikanren.Model, model *Model, fdVars []*minikanren.FDVariable, constantOne func() *minikanren.FDVariable) (*minikanren.FDVariable, error) {
	scale := solver.options.objectiveScale
	if scale < 1 {
		return nil, fmt.Errorf("objective scale must be positive, got %d", scale)
	}

	coefficients := model.objectiveCoefficients()
	vars := make([]*minikanren.FDVariable, 0, len(coefficients))
	scaled := make([]int, 0, len(coefficients))
	sumMin, sumMax := 0, 0
	for index, coefficient := range coefficients {
		rounded := int(math.Round(coefficient * float64(scale)))
		if rounded == 0 {
			continue
		}
		v := model.vars[index]
		fdMin, fdMax := int(v.lb)+1, int(v.ub)+1
		vars = append(vars, fdVars[index])
		scaled = append(scaled, rounded)
		if rounded > 0 {
			sumMin += rounded * fdMin
			sumMax += rounded * fdMax
		} else {
			sumMin += rounded * fdMax
			sumMax += rounded * fdMin
		}
	}

	if len(vars) == 0 {
		return constantOne(), nil
	}

	shift := 0
	if sumMin < 1 {
		shift = 1 - sumMin
	}
	if sumMax+shift > maxEmbeddedTotal {
		return nil, fmt.Errorf("objective range %d exceeds the gokando backend limit; lower the objective scale", sumMax+shift)
	}
	if shift > 0 {
		vars = append(vars, constantOne())
		scaled = append(scaled, shift)
	}

	objective := fdModel.NewVariableWithName(
		minikanren.NewBitSetDomain(sumMax+shift).RemoveBelow(sumMin+shift), "objective")
	linearSum, err := minikanren.NewLinearSum(vars, scaled, objective)
	if err != nil {
		return nil, err
	}
	fdModel.AddConstraint(linearSum)
	return objective, nil
}

func senseHolds(lhs int, sense ConstraintSense, rhs int) bool {
	switch sense {
	case LessOrEqual:
		return lhs <= rhs
	case GreaterOrEqual:
		return lhs >= rhs
	default:
		return lhs == rhs
	}
}
