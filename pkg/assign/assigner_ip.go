package assign

import (
	"fmt"
	"log"

	"github.com/exam-scheduling/roomassign/pkg/mip"
)

// Defaults of the formulation's tuning knobs.
const (
	DefaultRoomWeight      = 1.0
	DefaultOrgWeight       = 0.05
	DefaultMaxRoomsPerExam = 10
)

// AssignerOption tunes the integer-program formulation.
type AssignerOption func(*ipAssigner)

// WithWeights overrides the objective weights: roomWeight scales the
// rooms-per-exam cost and orgWeight the exam-to-department distance cost.
// The split-compactness cost carries no weight of its own.
func WithWeights(roomWeight, orgWeight float64) AssignerOption {
	return func(assigner *ipAssigner) {
		if roomWeight < 0 || orgWeight < 0 {
			log.Panicf("objective weights must be non-negative: wr=%v, wac=%v", roomWeight, orgWeight)
		}
		assigner.roomWeight = roomWeight
		assigner.orgWeight = orgWeight
	}
}

// WithRoomCap overrides the maximum number of rooms one exam may be split
// across.
func WithRoomCap(maxRooms int) AssignerOption {
	return func(assigner *ipAssigner) {
		if maxRooms < 1 {
			log.Panicf("room cap must be at least 1: %d", maxRooms)
		}
		assigner.maxRooms = maxRooms
	}
}

type ipAssigner struct {
	//** Dependencies
	solver mip.Solver

	//** Tuning knobs
	roomWeight float64
	orgWeight  float64
	maxRooms   int
}

// NewIPAssigner builds the integer-program strategy: exams may be split
// across several rooms, seat coverage and room exclusivity are hard
// constraints, and the solver minimizes the weighted sum of rooms used,
// department-to-room distance and squared distance between the rooms of a
// split exam.
func NewIPAssigner(solver mip.Solver, options ...AssignerOption) Assigner {
	assigner := &ipAssigner{
		solver:     solver,
		roomWeight: DefaultRoomWeight,
		orgWeight:  DefaultOrgWeight,
		maxRooms:   DefaultMaxRoomsPerExam,
	}
	for _, option := range options {
		option(assigner)
	}
	return assigner
}

// ipVariables holds the handles of the three decision-variable families.
type ipVariables struct {
	x [][]mip.Var // x[i][r] = 1 when exam i occupies room r
	z []mip.Var   // z[i] = number of rooms exam i occupies
	p [][]mip.Var // p[r][rPrime] = 1 when both rooms serve one common exam
}

func (assigner *ipAssigner) Assign(instance *Instance) (*Result, error) {
	if instance == nil {
		return nil, fmt.Errorf("instance must not be nil")
	}

	model, variables := assigner.buildModel(instance)

	solution, err := assigner.solver.Solve(model)
	if err != nil {
		return nil, err
	}
	switch solution.Status {
	case mip.StatusInfeasible:
		return nil, InfeasibleError{}
	case mip.StatusUnbounded:
		return nil, UnboundedError{}
	}

	return &Result{
		Assignments: extractAssignments(instance, solution, variables),
		Objective:   solution.Objective,
		Optimal:     solution.Status == mip.StatusOptimal,
		Variables:   model.VariableCount(),
		Constraints: model.ConstraintCount(),
		Runtime:     solution.Runtime,
	}, nil
}

func (assigner *ipAssigner) Verify(instance *Instance, result *Result) bool {
	return verify(instance, result, assigner.maxRooms)
}

// BuildModel constructs the integer program of an instance without solving
// it, for diagnostics such as LP serialization or relaxation bounds.
func BuildModel(instance *Instance, options ...AssignerOption) *mip.Model {
	if instance == nil {
		log.Panicf("instance must not be nil")
	}
	model, _ := NewIPAssigner(nil, options...).(*ipAssigner).buildModel(instance)
	return model
}

func (assigner *ipAssigner) buildModel(instance *Instance) (*mip.Model, ipVariables) {
	model := mip.NewModel("room_assignment")

	variables := assigner.addVariables(model, instance)

	//** Constraints
	assigner.addRoomCountConstraints(model, instance, variables)
	assigner.addRoomPairConstraints(model, instance, variables)
	assigner.addRoomExclusivityConstraints(model, instance, variables)
	assigner.addEnrollmentConstraints(model, instance, variables)

	//** Objective
	model.Minimize(assigner.objective(instance, variables))

	return model, variables
}

// addVariables declares the x, z and p families over dense exam and room
// indexes. The per-exam room cap and the at-least-one-room rule live on
// z's bounds rather than on separate constraint rows.
func (assigner *ipAssigner) addVariables(model *mip.Model, instance *Instance) ipVariables {
	exams, rooms := instance.ExamCount(), instance.RoomCount()

	variables := ipVariables{
		x: make([][]mip.Var, exams),
		z: make([]mip.Var, exams),
		p: make([][]mip.Var, rooms),
	}
	for i := 0; i < exams; i++ {
		variables.x[i] = make([]mip.Var, rooms)
		for r := 0; r < rooms; r++ {
			variables.x[i][r] = model.AddBinaryVar(fmt.Sprintf("x_%d_%d", i, r))
		}
		variables.z[i] = model.AddIntegerVar(fmt.Sprintf("z_%d", i), 1, int64(assigner.maxRooms))
	}
	for r := 0; r < rooms; r++ {
		variables.p[r] = make([]mip.Var, rooms)
		for rPrime := 0; rPrime < rooms; rPrime++ {
			variables.p[r][rPrime] = model.AddBinaryVar(fmt.Sprintf("p_%d_%d", r, rPrime))
		}
	}
	return variables
}

// addRoomCountConstraints ties each z[i] to the rooms actually assigned:
// z[i] = sum over r of x[i][r].
func (assigner *ipAssigner) addRoomCountConstraints(model *mip.Model, instance *Instance, variables ipVariables) {
	for i := 0; i < instance.ExamCount(); i++ {
		expr := mip.NewLinearExpr().AddSum(variables.x[i]...).AddTerm(variables.z[i], -1)
		model.AddEquality(expr, 0)
	}
}

// addRoomPairConstraints activates p[r][rPrime] whenever one exam occupies
// both rooms: p >= x[i][r] + x[i][rPrime] - 1 for every exam and every
// ordered room pair, the diagonal included. Only this lower bound is
// posted; with non-negative pair costs the minimization never raises an
// unforced p.
func (assigner *ipAssigner) addRoomPairConstraints(model *mip.Model, instance *Instance, variables ipVariables) {
	for i := 0; i < instance.ExamCount(); i++ {
		for r := 0; r < instance.RoomCount(); r++ {
			for rPrime := range instance.RoomCount() {
				expr := mip.NewLinearExpr().
					AddTerm(variables.x[i][r], 1).
					AddTerm(variables.x[i][rPrime], 1).
					AddTerm(variables.p[r][rPrime], -1)
				model.AddLessOrEqual(expr, 1)
			}
		}
	}
}

// addRoomExclusivityConstraints caps the exams sharing one room at the
// room's multiplicity: one for physical rooms, the exam count for the
// dummy room.
func (assigner *ipAssigner) addRoomExclusivityConstraints(model *mip.Model, instance *Instance, variables ipVariables) {
	for r, room := range instance.Rooms() {
		expr := mip.NewLinearExpr()
		for i := 0; i < instance.ExamCount(); i++ {
			expr.AddTerm(variables.x[i][r], 1)
		}
		model.AddLessOrEqual(expr, float64(room.Multiplicity))
	}
}

// addEnrollmentConstraints requires each exam's assigned seats to cover
// its enrollment: sum over r of capacity[r]*x[i][r] >= enrollment[i].
// Online exams are normalized to zero enrollment, so any single room, the
// zero-capacity dummy included, satisfies them.
func (assigner *ipAssigner) addEnrollmentConstraints(model *mip.Model, instance *Instance, variables ipVariables) {
	for i, exam := range instance.Exams() {
		expr := mip.NewLinearExpr()
		for r, room := range instance.Rooms() {
			expr.AddTerm(variables.x[i][r], float64(room.Capacity))
		}
		model.AddGreaterOrEqual(expr, float64(exam.Enrollment))
	}
}

// objective assembles the three cost terms: rooms used per exam, distance
// from each exam's academic organization to its rooms, and squared
// building distance over every ordered pair of rooms serving one exam.
// The dummy room contributes zero distance everywhere.
func (assigner *ipAssigner) objective(instance *Instance, variables ipVariables) *mip.LinearExpr {
	objective := mip.NewLinearExpr()

	for i := 0; i < instance.ExamCount(); i++ {
		objective.AddTerm(variables.z[i], assigner.roomWeight)
	}

	for i, exam := range instance.Exams() {
		for r := 0; r < instance.RoomCount(); r++ {
			objective.AddTerm(variables.x[i][r], assigner.orgWeight*instance.OrgDistance(exam.AcadOrg, r))
		}
	}

	for r := 0; r < instance.RoomCount(); r++ {
		for rPrime := range instance.RoomCount() {
			distance := instance.RoomDistance(r, rPrime)
			objective.AddTerm(variables.p[r][rPrime], distance*distance)
		}
	}

	return objective
}

// extractAssignments collects the (exam, room) pairs whose x the solver
// set to one, in exam then room index order.
func extractAssignments(instance *Instance, solution *mip.Solution, variables ipVariables) []Assignment {
	assignments := make([]Assignment, 0, instance.ExamCount())
	for i := 0; i < instance.ExamCount(); i++ {
		for r := 0; r < instance.RoomCount(); r++ {
			if solution.BoolValue(variables.x[i][r]) {
				assignments = append(assignments, Assignment{
					ExamID: instance.ExamID(i),
					RoomID: instance.RoomID(r),
				})
			}
		}
	}
	return assignments
}
