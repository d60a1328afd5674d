package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/exam-scheduling/roomassign/internal/csvio"
	"github.com/exam-scheduling/roomassign/pkg/assign"
	"github.com/exam-scheduling/roomassign/pkg/mip"
	"github.com/samber/lo"
)

var (
	roomWeight float64
	orgWeight  float64
	maxRooms   int

	validStrategies = []string{"ip", "matching"}
	validSolvers    = []string{"cbc", "glpsol", "highs", "gurobi", "gokando"}
	validFormats    = []string{"csv", "json"}
	assigners       = map[string]func(mip.Solver) assign.Assigner{
		"ip": func(solver mip.Solver) assign.Assigner {
			return assign.NewIPAssigner(solver, assign.WithWeights(roomWeight, orgWeight), assign.WithRoomCap(maxRooms))
		},
		"matching": func(mip.Solver) assign.Assigner {
			return assign.NewMatchingAssigner()
		},
	}
	solvers = map[string]func(...mip.SolverOption) mip.Solver{
		"cbc":     mip.NewCbcSolver,
		"glpsol":  mip.NewGlpsolSolver,
		"highs":   mip.NewHighsSolver,
		"gurobi":  mip.NewGurobiSolver,
		"gokando": mip.NewGokandoSolver,
	}
)

func main() {
	setConfigPath()
	// Define arguments
	strategyPtr := flag.String("strategy", "ip", `Strategy to assign rooms. Allowed values are:
- "ip" (exams may be split across several rooms; the weighted cost is minimized and optimality is proven whenever the solver proves it) and
- "matching" (every exam is placed whole into a room of its own via bipartite matching; fast, but an instance that needs splitting is rejected), where "ip" is the default`)
	solverPtr := flag.String("solver", "cbc", "MIP-Solver to use. Allowed values are: \"cbc\", \"glpsol\", \"highs\", \"gurobi\", \"gokando\", where \"cbc\" is the default")
	filePathPtr := flag.String("file", "", "Path to the input JSON file; overrides the CSV table arguments")
	examsPtr := flag.String("exams", "", "Path to the exam table CSV (exam_id,enrollment,modality,course,acadorg,d,k)")
	roomsPtr := flag.String("rooms", "", "Path to the room table CSV (room_id,building,room_num,capacity)")
	orgDistancesPtr := flag.String("org-distances", "", "Path to the acadorg-to-building distance CSV (from,to,distance)")
	buildingDistancesPtr := flag.String("building-distances", "", "Path to the building-to-building distance CSV (from,to,distance)")
	datesPtr := flag.String("dates", "", "Path to the exam date table CSV (date,index); optional")
	groupingPtr := flag.String("grouping", "", "Path to the room grouping CSV (key,room_id); optional")
	roomWeightPtr := flag.Float64("wr", assign.DefaultRoomWeight, "Weight of every room an exam occupies")
	orgWeightPtr := flag.Float64("wac", assign.DefaultOrgWeight, "Weight of the acadorg-to-room distances")
	maxRoomsPtr := flag.Int("max-rooms", assign.DefaultMaxRoomsPerExam, "Maximum number of rooms an exam may be split across")
	timeLimitPtr := flag.Duration("time-limit", 0, "Time limit for the solver (e.g. 30s); 0 means no limit")
	relaxPtr := flag.Bool("relax", false, "Report the LP relaxation bound of the instance instead of solving it")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	formatPtr := flag.String("format", "csv", "Output format. Allowed values are: \"csv\" and \"json\", where \"csv\" is the default")
	flag.Parse()
	strategy := strings.ToLower(*strategyPtr)
	solverStr := strings.ToLower(*solverPtr)
	format := strings.ToLower(*formatPtr)
	filePath := *filePathPtr
	outFile := *outFilePathPtr
	roomWeight = *roomWeightPtr
	orgWeight = *orgWeightPtr
	maxRooms = *maxRoomsPtr

	// Validate arguments
	if !slices.Contains(validStrategies, strategy) {
		log.Fatalf("%v is not a valid strategy", strategy)
	} else if !slices.Contains(validSolvers, solverStr) {
		log.Fatalf("%v is not a valid solver", solverStr)
	} else if !slices.Contains(validFormats, format) {
		log.Fatalf("%v is not a valid output format", format)
	} else if filePath == "" && (*examsPtr == "" || *roomsPtr == "" || *orgDistancesPtr == "" || *buildingDistancesPtr == "") {
		log.Fatal("an input file or the exam, room and distance tables must be specified")
	} else if roomWeight < 0 || orgWeight < 0 {
		log.Fatalf("weights cannot be negative: wr=%v, wac=%v", roomWeight, orgWeight)
	} else if maxRooms < 1 {
		log.Fatalf("max-rooms must be at least 1: %v", maxRooms)
	}

	// Extract input
	var instance *assign.Instance
	var err error
	if filePath != "" {
		instance, err = assign.InstanceFromJson(filePath)
	} else {
		instance, err = instanceFromTables(*examsPtr, *roomsPtr, *orgDistancesPtr, *buildingDistancesPtr, *datesPtr, *groupingPtr)
	}
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}

	// Report the relaxation bound instead of solving when requested
	if *relaxPtr {
		model := assign.BuildModel(instance, assign.WithWeights(roomWeight, orgWeight), assign.WithRoomCap(maxRooms))
		bound, err := mip.RelaxationBound(model)
		if err != nil {
			log.Fatalf("cannot compute relaxation bound: %v", err)
		}
		fmt.Printf("Relaxation bound: %v\n", bound)
		fmt.Printf("Variables: %v\n", model.VariableCount())
		fmt.Printf("Constraints: %v\n", model.ConstraintCount())
		os.Exit(10)
	}

	// Initialize engines
	solverOptions := make([]mip.SolverOption, 0, 1)
	if *timeLimitPtr > 0 {
		solverOptions = append(solverOptions, mip.WithTimeLimit(*timeLimitPtr))
	}
	solver := solvers[solverStr](solverOptions...)
	assigner := assigners[strategy](solver)

	// Assign rooms
	result, err := assigner.Assign(instance)
	if errors.Is(err, assign.InfeasibleError{}) || errors.Is(err, assign.UnassignableError{}) {
		fmt.Println(err)
		os.Exit(20)
	} else if err != nil {
		log.Fatalf("an error occurred during room assignment: %v", err)
	}

	// Verify assignment correctness
	if !assigner.Verify(instance, result) {
		fmt.Printf("Variables: %v\n", result.Variables)
		fmt.Printf("Constraints: %v\n", result.Constraints)
		os.Exit(15)
	}

	// Export the assignment in the requested format
	if format == "json" {
		assignmentsJson, err := json.Marshal(result.Assignments)
		if err != nil {
			log.Fatalf("an error occurred while building output json: %v", err)
		}
		if outFile == "" {
			fmt.Println(string(assignmentsJson))
		} else if err := os.WriteFile(outFile, assignmentsJson, 0666); err != nil {
			log.Fatalf("an error occurred while writing to the output file: %v", err)
		}
	} else if outFile == "" {
		output, err := csvio.AssignmentsString(result.Assignments)
		if err != nil {
			log.Fatalf("an error occurred while building output csv: %v", err)
		}
		fmt.Print(output)
	} else if err := csvio.ExportAssignments(result.Assignments, outFile); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}

	fmt.Printf("Objective: %v\n", result.Objective)
	fmt.Printf("Optimal: %v\n", result.Optimal)
	fmt.Printf("Variables: %v\n", result.Variables)
	fmt.Printf("Constraints: %v\n", result.Constraints)
	os.Exit(10)
}

func instanceFromTables(examsPath, roomsPath, orgDistancesPath, buildingDistancesPath, datesPath, groupingPath string) (*assign.Instance, error) {
	exams, err := csvio.LoadExams(examsPath)
	if err != nil {
		return nil, err
	}
	rooms, err := csvio.LoadRooms(roomsPath)
	if err != nil {
		return nil, err
	}
	orgDistances, err := csvio.LoadDistances(orgDistancesPath)
	if err != nil {
		return nil, err
	}
	buildingDistances, err := csvio.LoadDistances(buildingDistancesPath)
	if err != nil {
		return nil, err
	}

	builder := assign.NewBuilder().
		WithExams(exams...).
		WithRooms(rooms...).
		WithOrgDistances(orgDistances).
		WithBuildingDistances(buildingDistances)

	if datesPath != "" {
		dates, err := csvio.LoadDates(datesPath)
		if err != nil {
			return nil, err
		}
		builder = builder.WithDates(dates)
	}
	if groupingPath != "" {
		grouping, err := csvio.LoadGrouping(groupingPath)
		if err != nil {
			return nil, err
		}
		builder = builder.WithGrouping(grouping)
	}

	return builder.Build()
}

// setConfigPath points the solver layer at a config.json living next to the
// executable when one exists; otherwise solver binaries resolve through $PATH.
func setConfigPath() {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("cannot determine executable path: %v", err)
	}
	execPath = path.Dir(execPath)

	// Verify config.json exists
	files, err := os.ReadDir(execPath)
	if err != nil {
		log.Fatalf("cannot read executable's directory: %v", err)
	}
	fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })

	if slices.Contains(fileNames, "config.json") {
		mip.ConfigPath = execPath + "/config.json"
	}
}
