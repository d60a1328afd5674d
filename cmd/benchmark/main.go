package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/exam-scheduling/roomassign/pkg/assign"
	"github.com/exam-scheduling/roomassign/pkg/mip"
	"github.com/samber/lo"
)

const onlineShare = 0.1

type StrategyType int

const (
	ip StrategyType = iota
	matching
)

type SolverType int

const (
	none SolverType = iota
	gokando
	cbc
	glpsol
	highs
	gurobi
)

type ResultType int

const (
	assigned ResultType = iota
	infeasible
	unassignable
	failed
)

var (
	timeLimit time.Duration

	strategyTypes = map[StrategyType]string{
		ip:       "ip",
		matching: "matching",
	}
	solverTypes = map[SolverType]string{
		none:    "none",
		gokando: "gokando",
		cbc:     "cbc",
		glpsol:  "glpsol",
		highs:   "highs",
		gurobi:  "gurobi",
	}
	solverExecutables = map[SolverType]string{
		cbc:    "cbc",
		glpsol: "glpsol",
		highs:  "highs",
		gurobi: "gurobi_cl",
	}
	solverConstructors = map[SolverType]func(...mip.SolverOption) mip.Solver{
		gokando: mip.NewGokandoSolver,
		cbc:     mip.NewCbcSolver,
		glpsol:  mip.NewGlpsolSolver,
		highs:   mip.NewHighsSolver,
		gurobi:  mip.NewGurobiSolver,
	}
	resultTypes = map[ResultType]string{
		assigned:     "assigned",
		infeasible:   "infeasible",
		unassignable: "unassignable",
		failed:       "failed",
	}
)

type InstanceMetadata struct {
	Name     string
	Exams    int
	Rooms    int
	Instance *assign.Instance
}

type AssignerMetadata struct {
	Strategy StrategyType
	Solver   SolverType
}

type BenchmarkResult struct {
	Solver      SolverType
	Strategy    StrategyType
	Instance    InstanceMetadata
	Duration    int64
	Objective   float64
	Optimal     bool
	Variables   int
	Constraints int
	Result      ResultType
}

func main() {
	sizesPtr := flag.String("sizes", "5,10,20", "Comma-separated exam counts of the generated instances")
	seedPtr := flag.Int64("seed", 1, "Seed of the instance generator")
	timeLimitPtr := flag.Duration("time-limit", time.Minute, "Time limit per solve; 0 means no limit")
	flag.Parse()
	timeLimit = *timeLimitPtr

	instances := generateInstances(parseSizes(*sizesPtr), *seedPtr)
	assigners := getAssigners()
	results := make([]BenchmarkResult, 0, len(instances)*len(assigners))

	for _, instance := range instances {
		for _, assigner := range assigners {
			fmt.Printf("Benchmarking instance \"%v\" with strategy \"%v\" and solver \"%v\"\n", instance.Name, strategyTypes[assigner.Strategy], solverTypes[assigner.Solver])

			duration, result, outcome := measure(instance, assigner)

			benchmark := BenchmarkResult{
				Solver:   assigner.Solver,
				Strategy: assigner.Strategy,
				Instance: instance,
				Duration: duration,
				Result:   result,
			}
			if outcome != nil {
				benchmark.Objective = outcome.Objective
				benchmark.Optimal = outcome.Optimal
				benchmark.Variables = outcome.Variables
				benchmark.Constraints = outcome.Constraints
			}
			results = append(results, benchmark)
		}
	}

	toCsv(results)
}

func parseSizes(raw string) []int {
	return lo.Map(strings.Split(raw, ","), func(size string, _ int) int {
		return lo.Must(strconv.Atoi(strings.TrimSpace(size)))
	})
}

func generateInstances(sizes []int, seed int64) []InstanceMetadata {
	random := rand.New(rand.NewSource(seed))
	instances := make([]InstanceMetadata, 0, len(sizes))
	for _, size := range sizes {
		instance := generateInstance(random, size)
		instances = append(instances, InstanceMetadata{
			Name:     fmt.Sprintf("random-%v", size),
			Exams:    instance.ExamCount(),
			Rooms:    instance.RoomCount(),
			Instance: instance,
		})
	}
	return instances
}

// generateInstance draws a mostly feasible instance: room capacities tend to
// exceed enrollments and there are half again as many rooms as exams, so
// splitting stays possible without being forced.
func generateInstance(random *rand.Rand, examCount int) *assign.Instance {
	buildings := lo.Times(examCount/4+1, func(i int) string { return fmt.Sprintf("building-%v", i) })
	orgs := lo.Times(examCount/8+1, func(i int) string { return fmt.Sprintf("org-%v", i) })

	exams := lo.Times(examCount, func(i int) assign.Exam {
		exam := assign.Exam{
			ID:         fmt.Sprintf("exam-%v", i),
			Course:     fmt.Sprintf("course-%v", i),
			AcadOrg:    orgs[random.Intn(len(orgs))],
			Enrollment: 10 + random.Intn(51),
			Modality:   assign.InPerson,
			Day:        random.Intn(14),
			Block:      random.Intn(4),
		}
		if random.Float64() < onlineShare {
			exam.Modality = assign.Online
		}
		return exam
	})

	rooms := lo.Times(examCount+examCount/2+1, func(r int) assign.Room {
		return assign.Room{
			ID:       fmt.Sprintf("room-%v", r),
			Building: buildings[r%len(buildings)],
			RoomNum:  fmt.Sprint(100 + r),
			Capacity: 20 + random.Intn(61),
		}
	})

	orgDistances := make(map[string]map[string]float64, len(orgs))
	for _, org := range orgs {
		orgDistances[org] = make(map[string]float64, len(buildings))
		for _, building := range buildings {
			orgDistances[org][building] = float64(random.Intn(11))
		}
	}

	buildingDistances := make(map[string]map[string]float64, len(buildings))
	for _, building := range buildings {
		buildingDistances[building] = map[string]float64{building: 0}
	}
	for i, building := range buildings {
		for _, other := range buildings[i+1:] {
			distance := float64(1 + random.Intn(10))
			buildingDistances[building][other] = distance
			buildingDistances[other][building] = distance
		}
	}

	instance, err := assign.NewBuilder().
		WithExams(exams...).
		WithRooms(rooms...).
		WithOrgDistances(orgDistances).
		WithBuildingDistances(buildingDistances).
		Build()
	if err != nil {
		log.Fatalf("cannot build generated instance: %v", err)
	}
	return instance
}

func getAssigners() []AssignerMetadata {
	// The matching strategy never calls a solver, so it runs once per instance
	assigners := []AssignerMetadata{{Strategy: matching, Solver: none}}
	for _, solver := range getSolvers() {
		assigners = append(assigners, AssignerMetadata{Strategy: ip, Solver: solver})
	}
	return assigners
}

func getSolvers() []SolverType {
	// External solvers join the run only when their executable is reachable
	solvers := []SolverType{gokando}
	for _, solver := range []SolverType{cbc, glpsol, highs, gurobi} {
		if _, err := exec.LookPath(solverExecutables[solver]); err == nil {
			solvers = append(solvers, solver)
		}
	}
	return solvers
}

func buildAssigner(metadata AssignerMetadata) assign.Assigner {
	if metadata.Strategy == matching {
		return assign.NewMatchingAssigner()
	}

	options := make([]mip.SolverOption, 0, 1)
	if timeLimit > 0 {
		options = append(options, mip.WithTimeLimit(timeLimit))
	}
	return assign.NewIPAssigner(solverConstructors[metadata.Solver](options...))
}

func measure(instance InstanceMetadata, metadata AssignerMetadata) (duration int64, result ResultType, outcome *assign.Result) {
	assigner := buildAssigner(metadata)

	start := time.Now()
	outcome, err := assigner.Assign(instance.Instance)
	duration = time.Since(start).Milliseconds()

	if errors.Is(err, assign.InfeasibleError{}) {
		result = infeasible
	} else if errors.Is(err, assign.UnassignableError{}) {
		result = unassignable
	} else if err != nil {
		log.Printf("assignment failed on \"%v\" with strategy \"%v\" and solver \"%v\": %v", instance.Name, strategyTypes[metadata.Strategy], solverTypes[metadata.Solver], err)
		result = failed
	} else if !assigner.Verify(instance.Instance, outcome) {
		result = failed
	} else {
		result = assigned
	}

	return duration, result, outcome
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Solver", "Strategy", "Instance", "Exams", "Rooms", "Duration(ms)", "Objective", "Optimal", "Variables", "Constraints", "Result"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			solverTypes[result.Solver],
			strategyTypes[result.Strategy],
			result.Instance.Name,
			fmt.Sprintf("%d", result.Instance.Exams),
			fmt.Sprintf("%d", result.Instance.Rooms),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.4f", result.Objective),
			fmt.Sprintf("%v", result.Optimal),
			fmt.Sprintf("%d", result.Variables),
			fmt.Sprintf("%d", result.Constraints),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}
