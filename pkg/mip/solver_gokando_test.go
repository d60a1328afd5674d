package mip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGokandoSolvesSampleModel(t *testing.T) {
	// Arrange
	model, optimum := BuildSampleModel()
	solver := NewGokandoSolver()

	// Act
	solution, err := solver.Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, optimum, solution.Objective, 1e-9)
	assert.True(t, AssertMIPSolution(model, solution))
}

func TestGokandoCoverSelection(t *testing.T) {
	// Arrange: three candidates, the two cheapest cover the demand.
	model := NewModel("cover")
	a := model.AddBinaryVar("a")
	b := model.AddBinaryVar("b")
	c := model.AddBinaryVar("c")
	model.AddGreaterOrEqual(NewLinearExpr().AddSum(a, b, c), 2)
	model.Minimize(NewLinearExpr().AddTerm(a, 2).AddTerm(b, 3).AddTerm(c, 4))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, 5.0, solution.Objective, 1e-9)
	assert.True(t, solution.BoolValue(a))
	assert.True(t, solution.BoolValue(b))
	assert.False(t, solution.BoolValue(c))
}

func TestGokandoWeightedCapacity(t *testing.T) {
	// Arrange: only the large room alone covers the demand.
	model := NewModel("capacity")
	large := model.AddBinaryVar("x_large")
	small := model.AddBinaryVar("x_small")
	model.AddGreaterOrEqual(NewLinearExpr().AddTerm(large, 50).AddTerm(small, 30), 40)
	model.Minimize(NewLinearExpr().AddSum(large, small))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, 1.0, solution.Objective, 1e-9)
	assert.True(t, solution.BoolValue(large))
	assert.False(t, solution.BoolValue(small))
}

func TestGokandoIntegerCounter(t *testing.T) {
	// Arrange: z counts the chosen binaries through an equality row.
	model := NewModel("counter")
	a := model.AddBinaryVar("a")
	b := model.AddBinaryVar("b")
	z := model.AddIntegerVar("z", 1, 5)
	model.AddEquality(NewLinearExpr().AddTerm(z, 1).AddTerm(a, -1).AddTerm(b, -1), 0)
	model.Minimize(NewLinearExpr().AddTerm(z, 1))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.Equal(t, int64(1), solution.IntValue(z))
	assert.InDelta(t, 1.0, solution.Objective, 1e-9)
}

func TestGokandoInfeasibleWindow(t *testing.T) {
	// Arrange: two binaries cannot sum to three.
	model := NewModel("window")
	a := model.AddBinaryVar("a")
	b := model.AddBinaryVar("b")
	model.AddGreaterOrEqual(NewLinearExpr().AddSum(a, b), 3)
	model.Minimize(NewLinearExpr().AddSum(a, b))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusInfeasible, solution.Status)
	assert.Nil(t, solution.Values)
}

func TestGokandoInfeasibleByPropagation(t *testing.T) {
	// Arrange: rows are individually satisfiable but jointly not.
	model := NewModel("conflict")
	a := model.AddBinaryVar("a")
	b := model.AddBinaryVar("b")
	model.AddGreaterOrEqual(NewLinearExpr().AddSum(a, b), 1)
	model.AddLessOrEqual(NewLinearExpr().AddTerm(a, 1), 0)
	model.AddLessOrEqual(NewLinearExpr().AddTerm(b, 1), 0)
	model.Minimize(NewLinearExpr().AddSum(a, b))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusInfeasible, solution.Status)
}

func TestGokandoFractionalObjective(t *testing.T) {
	// Arrange: scaled-to-integer coefficients must still rank correctly.
	model := NewModel("fractional")
	a := model.AddBinaryVar("a")
	b := model.AddBinaryVar("b")
	model.AddGreaterOrEqual(NewLinearExpr().AddSum(a, b), 1)
	model.Minimize(NewLinearExpr().AddTerm(a, 0.05).AddTerm(b, 0.03))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, 0.03, solution.Objective, 1e-9)
	assert.True(t, solution.BoolValue(b))
	assert.False(t, solution.BoolValue(a))
}

func TestGokandoConstantInConstraint(t *testing.T) {
	// Arrange: the expression constant folds into the right-hand side.
	model := NewModel("constant")
	a := model.AddBinaryVar("a")
	b := model.AddBinaryVar("b")
	model.AddEquality(NewLinearExpr().AddSum(a, b).AddConstant(1), 2)
	model.Minimize(NewLinearExpr().AddTerm(a, 1))

	// Act
	solution, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, 0.0, solution.Objective, 1e-9)
	assert.False(t, solution.BoolValue(a))
	assert.True(t, solution.BoolValue(b))
}

func TestGokandoGenerousTimeLimitStillOptimal(t *testing.T) {
	// Arrange
	model, optimum := BuildSampleModel()
	solver := NewGokandoSolver(WithTimeLimit(time.Minute))

	// Act
	solution, err := solver.Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, optimum, solution.Objective, 1e-9)
}

func TestGokandoRejectsFractionalConstraintCoefficients(t *testing.T) {
	// Arrange
	model := NewModel("bad")
	a := model.AddBinaryVar("a")
	model.AddLessOrEqual(NewLinearExpr().AddTerm(a, 0.5), 1)
	model.Minimize(NewLinearExpr().AddTerm(a, 1))

	// Act
	_, err := NewGokandoSolver().Solve(model)

	// Assert
	assert.NotNil(t, err)
}
