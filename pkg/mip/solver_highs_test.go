package mip

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHighsSolution(t *testing.T) {
	model, _ := BuildSampleModel()

	t.Run("optimal", func(t *testing.T) {
		// Arrange
		output := `Model status
Optimal

# Primal solution values
Feasible

# Objective 2.5
# Columns 3
x_a 0
x_b 1
z 1
# Rows 3
r0 1
r1 0
r2 1
`

		// Act
		solution, err := parseHighsSolution(model, output)

		// Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusOptimal, solution.Status)
		assert.InDelta(t, 2.5, solution.Objective, 1e-9)
		assert.Equal(t, []float64{0, 1, 1}, solution.Values)
	})

	t.Run("infeasible", func(t *testing.T) {
		// Arrange
		output := `Model status
Infeasible

# Primal solution values
None
`

		// Act
		solution, err := parseHighsSolution(model, output)

		// Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusInfeasible, solution.Status)
	})

	t.Run("time limit with incumbent", func(t *testing.T) {
		// Arrange
		output := `Model status
Time limit reached

# Primal solution values
Feasible

# Columns 3
x_a 1
x_b 1
z 2
`

		// Act
		solution, err := parseHighsSolution(model, output)

		// Assert
		assert.Nil(t, err)
		assert.Equal(t, StatusFeasible, solution.Status)
		assert.InDelta(t, 6.0, solution.Objective, 1e-9)
	})

	t.Run("time limit without incumbent", func(t *testing.T) {
		// Arrange
		output := `Model status
Time limit reached

# Primal solution values
None
`

		// Act
		_, err := parseHighsSolution(model, output)

		// Assert
		assert.NotNil(t, err)
	})

	t.Run("unknown status", func(t *testing.T) {
		// Act
		_, err := parseHighsSolution(model, "Model status\nBanana\n")

		// Assert
		assert.NotNil(t, err)
	})
}

func TestHighsSolver(t *testing.T) {
	if _, err := exec.LookPath("highs"); err != nil {
		t.Skip("highs executable not available")
	}

	// Arrange
	model, optimum := BuildSampleModel()
	solver := NewHighsSolver()

	// Act
	solution, err := solver.Solve(model)

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, StatusOptimal, solution.Status)
	assert.InDelta(t, optimum, solution.Objective, 1e-6)
	assert.True(t, AssertMIPSolution(model, solution))
}
