package mip

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

var ConfigPath = "config.json"

// getExecutablePath resolves a solver binary through the optional
// config.json next to the working directory, e.g.
//
//	{ "cbcPath": "/opt/coin/bin/cbc" }
//
// Solvers missing from the config (or a missing config altogether) fall
// back to the bare name and the usual $PATH lookup.
func getExecutablePath(solver string) string {
	bytes, err := os.ReadFile(ConfigPath)
	if err != nil {
		return solver
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return solver
	}

	var config map[string]string
	mapstructure.Decode(inputJson, &config)

	if path, ok := config[solver+"Path"]; ok {
		return path
	}
	return solver
}

// writeModelFile writes the model's LP serialization into a fresh temp
// directory and returns the model path plus a companion path for the
// solution file. The caller removes the directory.
func writeModelFile(model *Model) (dir, modelPath, solutionPath string, err error) {
	dir, err = os.MkdirTemp("", "mip-*")
	if err != nil {
		return "", "", "", fmt.Errorf("failed to create temporary directory: %v", err)
	}
	modelPath = filepath.Join(dir, "model.lp")
	solutionPath = filepath.Join(dir, "solution.sol")
	if err := os.WriteFile(modelPath, []byte(model.WriteLP()), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", "", "", fmt.Errorf("failed to write model file: %v", err)
	}
	return dir, modelPath, solutionPath, nil
}

func parseSolutionNumber(field string) (float64, error) {
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q in solver output: %v", field, err)
	}
	return value, nil
}
