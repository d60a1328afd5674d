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

type highsSolver struct {
	options solverOptions
}

// NewHighsSolver wraps the HiGHS standalone binary (highs).
func NewHighsSolver(opts ...SolverOption) Solver {
	return &highsSolver{options: newSolverOptions(opts...)}
}

func (solver *highsSolver) Solve(model *Model) (*Solution, error) {
	start := time.Now()

	dir, modelPath, solutionPath, err := writeModelFile(model)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	args := []string{"--solution_file", solutionPath}
	if solver.options.timeLimit > 0 {
		args = append(args, "--time_limit", strconv.Itoa(int(solver.options.timeLimit.Seconds())))
	}
	args = append(args, modelPath)
	cmd := exec.Command(getExecutablePath("highs"), args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("an error occurred during highs execution: %v : %v", err.Error(), stderr.String())
	}

	output, err := os.ReadFile(solutionPath)
	if err != nil {
		return nil, fmt.Errorf("highs wrote no solution file: %v", err)
	}

	solution, err := parseHighsSolution(model, string(output))
	if err != nil {
		return nil, err
	}
	solution.Runtime = time.Since(start)
	return solution, nil
}

// parseHighsSolution reads the raw solution style highs writes: a "Model
// status" header, a "# Primal solution values" section flagged Feasible or
// None, and a "# Columns <n>" block of "name value" lines.
func parseHighsSolution(model *Model, output string) (*Solution, error) {
	lines := strings.Split(output, "\n")

	statusText := ""
	primalText := ""
	values := make([]float64, model.VariableCount())

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "Model status":
			statusText = nextNonEmptyLine(lines, &i)
		case strings.HasPrefix(line, "# Primal solution values"):
			primalText = nextNonEmptyLine(lines, &i)
		case strings.HasPrefix(line, "# Columns"):
			for i++; i < len(lines); i++ {
				fields := strings.Fields(lines[i])
				if len(fields) != 2 {
					i--
					break
				}
				index, ok := model.varIndex(fields[0])
				if !ok {
					continue
				}
				value, err := parseSolutionNumber(fields[1])
				if err != nil {
					return nil, err
				}
				values[index] = value
			}
		}
	}

	switch statusText {
	case "Optimal":
		return &Solution{Status: StatusOptimal, Values: values, Objective: model.evaluateObjective(values)}, nil
	case "Infeasible":
		return &Solution{Status: StatusInfeasible}, nil
	case "Unbounded":
		return &Solution{Status: StatusUnbounded}, nil
	case "Time limit reached":
		if primalText != "Feasible" {
			return nil, fmt.Errorf("highs hit the time limit before finding a feasible solution")
		}
		return &Solution{Status: StatusFeasible, Values: values, Objective: model.evaluateObjective(values)}, nil
	default:
		return nil, fmt.Errorf("unrecognized highs model status %q", statusText)
	}
}

func nextNonEmptyLine(lines []string, i *int) string {
	for *i++; *i < len(lines); *i++ {
		if line := strings.TrimSpace(lines[*i]); line != "" {
			return line
		}
	}
	return ""
}
