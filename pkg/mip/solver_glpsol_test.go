package mip

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGlpsolSolution(t *testing.T) {
	model, _ := BuildSampleModel()

	t.Run("optimal", func(t *testing.T) {
		// Arrange: columns are numbered by declaration order.
		output := `c Problem:    sample
c Rows:       3
c Columns:    3
s mip 3 3 o 2.5
j 1 0
j 2 1
j 3 1
e o f
`

		// Act
		solution, err := parseGlpsolSolution(model, output)

		// Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusOptimal, solution.Status)
		assert.InDelta(t, 2.5, solution.Objective, 1e-9)
		assert.Equal(t, []float64{0, 1, 1}, solution.Values)
	})

	t.Run("feasible", func(t *testing.T) {
		// Act
		solution, err := parseGlpsolSolution(model, "s mip 3 3 f 6\nj 1 1\nj 2 1\nj 3 2\n")

		// Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusFeasible, solution.Status)
		assert.InDelta(t, 6.0, solution.Objective, 1e-9)
	})

	t.Run("no feasible solution", func(t *testing.T) {
		// Act
		solution, err := parseGlpsolSolution(model, "s mip 3 3 n 0\n")

		// Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusInfeasible, solution.Status)
	})

	t.Run("undefined", func(t *testing.T) {
		// Act
		_, err := parseGlpsolSolution(model, "s mip 3 3 u 0\n")

		// Assert
		assert.NotNil(t, err)
	})

	t.Run("column ordinal out of range", func(t *testing.T) {
		// Act
		_, err := parseGlpsolSolution(model, "s mip 3 3 o 2.5\nj 4 1\n")

		// Assert
		assert.NotNil(t, err)
	})

	t.Run("missing descriptor", func(t *testing.T) {
		// Act
		_, err := parseGlpsolSolution(model, "j 1 1\n")

		// Assert
		assert.NotNil(t, err)
	})
}

func TestGlpsolSolver(t *testing.T) {
	if _, err := exec.LookPath("glpsol"); err != nil {
		t.Skip("glpsol executable not available")
	}

	// Arrange
	model, optimum := BuildSampleModel()
	solver := NewGlpsolSolver()

	// Act
	solution, err := solver.Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, optimum, solution.Objective, 1e-6)
	assert.True(t, AssertMIPSolution(model, solution))
}
