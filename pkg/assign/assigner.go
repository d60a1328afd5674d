package assign

import "time"

// Assignment is one realized (exam, room) pair.
type Assignment struct {
	ExamID string `json:"examId"`
	RoomID string `json:"roomId"`
}

// Result is the outcome of one assignment run. Assignments is ordered by
// exam index, then room index.
type Result struct {
	Assignments []Assignment
	Objective   float64
	Optimal     bool
	Variables   int
	Constraints int
	Runtime     time.Duration
}

// Assigner produces a room assignment for one instance and can verify an
// assignment against the instance's feasibility rules. Assign reports an
// infeasible instance through InfeasibleError, never through an empty
// result; errors are otherwise reserved for failures of the assignment
// machinery itself.
type Assigner interface {
	Assign(instance *Instance) (*Result, error)
	Verify(instance *Instance, result *Result) bool
}

// InfeasibleError reports that no assignment satisfies every hard
// constraint, e.g. a slot whose combined enrollment exceeds the seats of
// its room pool.
type InfeasibleError struct{}

func (err InfeasibleError) Error() string {
	return "no feasible room assignment exists"
}

// UnboundedError reports an unbounded objective. Every cost coefficient is
// non-negative and every variable is bounded, so seeing it means the model
// construction itself is broken.
type UnboundedError struct{}

func (err UnboundedError) Error() string {
	return "room assignment objective is unbounded"
}

// UnassignableError reports that the matching strategy could not place
// every exam whole into a room of its own. It does not prove the instance
// infeasible: the integer program may still cover the exams by splitting
// them across rooms.
type UnassignableError struct{}

func (err UnassignableError) Error() string {
	return "not all exams can be assigned a room"
}
