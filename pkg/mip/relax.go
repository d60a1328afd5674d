package mip

import (
	"fmt"
	"math"

	"github.com/willauld/lpsimplex"
)

// RelaxationBound solves the linear relaxation of the model, integrality
// dropped, and returns its optimal objective. For a minimization model this
// is a lower bound on the integer optimum, useful to judge how far a
// feasible-but-not-proven-optimal assignment can sit from the true one.
func RelaxationBound(model *Model) (float64, error) {
	variables := model.VariableCount()
	if variables == 0 {
		return 0, fmt.Errorf("model has no variables")
	}

	c := model.objectiveCoefficients()

	var aUB, aEQ [][]float64
	var bUB, bEQ []float64
	for _, cons := range model.constraints {
		row, rhs := cons.rowCoefficients(variables)
		switch cons.sense {
		case LessOrEqual:
			aUB = append(aUB, row)
			bUB = append(bUB, rhs)
		case GreaterOrEqual:
			aUB = append(aUB, negatedRow(row))
			bUB = append(bUB, -rhs)
		default:
			aEQ = append(aEQ, row)
			bEQ = append(bEQ, rhs)
		}
	}

	// The simplex assumes x >= 0, so variable bounds become explicit rows.
	for i, v := range model.vars {
		if v.lb < 0 {
			return 0, fmt.Errorf("relaxation supports non-negative variables only, %q has lower bound %d", v.name, v.lb)
		}
		aUB = append(aUB, unitRow(variables, i, 1))
		bUB = append(bUB, float64(v.ub))
		if v.lb > 0 {
			aUB = append(aUB, unitRow(variables, i, -1))
			bUB = append(bUB, -float64(v.lb))
		}
	}

	result := lpsimplex.LPSimplex(c, aUB, bUB, aEQ, bEQ, nil,
		lpsimplex.Callbackfunc(nil), false, 4000, 1.0e-12, false)
	if len(result.X) != variables {
		return 0, fmt.Errorf("linear relaxation did not produce a solution")
	}

	bound := model.evaluateObjective(result.X)
	if math.IsNaN(bound) || math.IsInf(bound, 0) {
		return 0, fmt.Errorf("linear relaxation produced a non-finite objective")
	}
	return bound, nil
}

func negatedRow(row []float64) []float64 {
	negated := make([]float64, len(row))
	for i, value := range row {
		negated[i] = -value
	}
	return negated
}

func unitRow(length, index int, sign float64) []float64 {
	row := make([]float64, length)
	row[index] = sign
	return row
}
