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

// coinInfinity is the objective value cbc reports when it stopped without
// an integer solution.
const coinInfinity = 1e49

type cbcSolver struct {
	options solverOptions
}

// NewCbcSolver wraps the COIN-OR branch-and-cut binary (cbc).
func NewCbcSolver(opts ...SolverOption) Solver {
	return &cbcSolver{options: newSolverOptions(opts...)}
}

func (solver *cbcSolver) Solve(model *Model) (*Solution, error) {
	start := time.Now()

	dir, modelPath, solutionPath, err := writeModelFile(model)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	args := []string{modelPath}
	if solver.options.timeLimit > 0 {
		args = append(args, "sec", strconv.Itoa(int(solver.options.timeLimit.Seconds())))
	}
	args = append(args, "solve", "solution", solutionPath)
	cmd := exec.Command(getExecutablePath("cbc"), args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("an error occurred during cbc execution: %v : %v", err.Error(), stderr.String())
	}

	output, err := os.ReadFile(solutionPath)
	if err != nil {
		return nil, fmt.Errorf("cbc wrote no solution file: %v", err)
	}

	solution, err := parseCbcSolution(model, string(output))
	if err != nil {
		return nil, err
	}
	solution.Runtime = time.Since(start)
	return solution, nil
}

// parseCbcSolution reads cbc's solution file: a status line such as
// "Optimal - objective value 12.30000000" followed by one line per column
// with "index name value reduced-cost" fields.
func parseCbcSolution(model *Model, output string) (*Solution, error) {
	lines := strings.Split(output, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("empty cbc solution file")
	}
	statusLine := strings.TrimSpace(lines[0])

	switch {
	case strings.Contains(statusLine, "Infeasible") || strings.Contains(statusLine, "infeasible"):
		return &Solution{Status: StatusInfeasible}, nil
	case strings.HasPrefix(statusLine, "Unbounded"):
		return &Solution{Status: StatusUnbounded}, nil
	}

	status := StatusOptimal
	if strings.HasPrefix(statusLine, "Stopped") {
		status = StatusFeasible
		if reported, ok := cbcReportedObjective(statusLine); ok && reported >= coinInfinity {
			return nil, fmt.Errorf("cbc stopped before finding a feasible solution: %v", statusLine)
		}
	} else if !strings.HasPrefix(statusLine, "Optimal") {
		return nil, fmt.Errorf("unrecognized cbc status line: %v", statusLine)
	}

	values := make([]float64, model.VariableCount())
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		index, ok := model.varIndex(fields[1])
		if !ok {
			continue
		}
		value, err := parseSolutionNumber(fields[2])
		if err != nil {
			return nil, err
		}
		values[index] = value
	}

	return &Solution{
		Status:    status,
		Values:    values,
		Objective: model.evaluateObjective(values),
	}, nil
}

func cbcReportedObjective(statusLine string) (float64, bool) {
	const marker = "objective value"
	position := strings.Index(statusLine, marker)
	if position < 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(statusLine[position+len(marker):]), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
