package mip

import "math"

const assertTolerance = 1e-6

// BuildSampleModel returns a small assignment-flavored model with a unique
// optimum of 2.5 (pick x_b, count it in z). Every backend test solves it so
// the backends can be compared like for like.
func BuildSampleModel() (*Model, float64) {
	model := NewModel("sample")
	a := model.AddBinaryVar("x_a")
	b := model.AddBinaryVar("x_b")
	z := model.AddIntegerVar("z", 0, 2)

	model.AddGreaterOrEqual(NewLinearExpr().AddSum(a, b), 1)
	model.AddEquality(NewLinearExpr().AddTerm(z, 1).AddTerm(a, -1).AddTerm(b, -1), 0)
	model.AddLessOrEqual(NewLinearExpr().AddTerm(z, 1), 2)
	model.Minimize(NewLinearExpr().AddTerm(a, 3).AddTerm(b, 2).AddTerm(z, 0.5))

	return model, 2.5
}

// AssertMIPSolution checks that a solution is integral, within the variable
// bounds and satisfies every constraint of the model.
func AssertMIPSolution(model *Model, solution *Solution) bool {
	if solution == nil || len(solution.Values) != model.VariableCount() {
		return false
	}

	for i, v := range model.vars {
		value := solution.Values[i]
		if math.Abs(value-math.Round(value)) > assertTolerance {
			return false
		}
		if value < float64(v.lb)-assertTolerance || value > float64(v.ub)+assertTolerance {
			return false
		}
	}

	for _, c := range model.constraints {
		coefficients, rhs := c.rowCoefficients(model.VariableCount())
		lhs := 0.0
		for i, coefficient := range coefficients {
			lhs += coefficient * solution.Values[i]
		}
		switch c.sense {
		case LessOrEqual:
			if lhs > rhs+assertTolerance {
				return false
			}
		case GreaterOrEqual:
			if lhs < rhs-assertTolerance {
				return false
			}
		default:
			if math.Abs(lhs-rhs) > assertTolerance {
				return false
			}
		}
	}

	return true
}
