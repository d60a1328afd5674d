package mip

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type glpsolSolver struct {
	options solverOptions
}

// NewGlpsolSolver wraps the GLPK standalone solver (glpsol).
func NewGlpsolSolver(opts ...SolverOption) Solver {
	return &glpsolSolver{options: newSolverOptions(opts...)}
}

func (solver *glpsolSolver) Solve(model *Model) (*Solution, error) {
	start := time.Now()

	dir, modelPath, solutionPath, err := writeModelFile(model)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	args := []string{"--lp", modelPath, "--write", solutionPath}
	if solver.options.timeLimit > 0 {
		args = append(args, "--tmlim", strconv.Itoa(int(solver.options.timeLimit.Seconds())))
	}
	cmd := exec.Command(getExecutablePath("glpsol"), args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("an error occurred during glpsol execution: %v : %v", err.Error(), stderr.String())
	}

	output, err := os.ReadFile(solutionPath)
	if err != nil {
		return nil, fmt.Errorf("glpsol wrote no solution file: %v", err)
	}

	solution, err := parseGlpsolSolution(model, string(output))
	if err != nil {
		return nil, err
	}
	solution.Runtime = time.Since(start)
	return solution, nil
}

// parseGlpsolSolution reads the record-based solution files GLPK 4.65+
// emits: a descriptor "s mip <rows> <cols> <status> <objective>" and one
// "j <col> <value>" record per column. Column ordinals follow first
// appearance in the LP file, which WriteLP pins to declaration order.
func parseGlpsolSolution(model *Model, output string) (*Solution, error) {
	status := Status(-1)
	values := make([]float64, model.VariableCount())

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s":
			if len(fields) < 5 || fields[1] != "mip" {
				return nil, fmt.Errorf("unrecognized glpsol solution descriptor: %v", line)
			}
			switch fields[4] {
			case "o":
				status = StatusOptimal
			case "f":
				status = StatusFeasible
			case "n":
				return &Solution{Status: StatusInfeasible}, nil
			case "u":
				return nil, fmt.Errorf("glpsol terminated without a usable solution")
			default:
				return nil, fmt.Errorf("unrecognized glpsol solution status %q", fields[4])
			}
		case "j":
			if len(fields) < 3 {
				return nil, fmt.Errorf("unrecognized glpsol column record: %v", line)
			}
			column, err := strconv.Atoi(fields[1])
			if err != nil || column < 1 || column > len(values) {
				return nil, fmt.Errorf("glpsol column ordinal out of range: %v", line)
			}
			value, err := parseSolutionNumber(fields[2])
			if err != nil {
				return nil, err
			}
			values[column-1] = value
		}
	}

	if status == Status(-1) {
		return nil, fmt.Errorf("glpsol solution file carries no status descriptor")
	}
	return &Solution{
		Status:    status,
		Values:    values,
		Objective: model.evaluateObjective(values),
	}, nil
}
