package mip

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

type gurobiSolver struct {
	options solverOptions
}

// NewGurobiSolver wraps the Gurobi command-line runner (gurobi_cl), which
// reports its status on stdout and writes the solution to ResultFile.
func NewGurobiSolver(opts ...SolverOption) Solver {
	return &gurobiSolver{options: newSolverOptions(opts...)}
}

func (solver *gurobiSolver) Solve(model *Model) (*Solution, error) {
	start := time.Now()

	dir, modelPath, solutionPath, err := writeModelFile(model)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	args := []string{fmt.Sprintf("ResultFile=%s", solutionPath)}
	if solver.options.timeLimit > 0 {
		args = append(args, fmt.Sprintf("TimeLimit=%d", int(solver.options.timeLimit.Seconds())))
	}
	args = append(args, modelPath)
	cmd := exec.Command(getExecutablePath("gurobi_cl"), args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("an error occurred during gurobi_cl execution: %v : %v", err.Error(), stderr.String())
	}

	console := stdOut.String()
	switch {
	case strings.Contains(console, "Model is infeasible or unbounded"):
		return nil, fmt.Errorf("gurobi reports the model infeasible or unbounded; rerun with DualReductions=0 to distinguish")
	case strings.Contains(console, "Model is infeasible"):
		return &Solution{Status: StatusInfeasible, Runtime: time.Since(start)}, nil
	case strings.Contains(console, "Model is unbounded"):
		return &Solution{Status: StatusUnbounded, Runtime: time.Since(start)}, nil
	}

	status := StatusOptimal
	if strings.Contains(console, "Time limit reached") {
		status = StatusFeasible
	} else if !strings.Contains(console, "Optimal solution found") {
		return nil, fmt.Errorf("unrecognized gurobi_cl outcome: %v", lastConsoleLine(console))
	}

	output, err := os.ReadFile(solutionPath)
	if err != nil {
		if status == StatusFeasible {
			return nil, fmt.Errorf("gurobi hit the time limit before finding a feasible solution")
		}
		return nil, fmt.Errorf("gurobi_cl wrote no solution file: %v", err)
	}

	values := make([]float64, model.VariableCount())
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
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

	return &Solution{
		Status:    status,
		Values:    values,
		Objective: model.evaluateObjective(values),
		Runtime:   time.Since(start),
	}, nil
}

func lastConsoleLine(console string) string {
	lines := strings.Split(strings.TrimSpace(console), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
