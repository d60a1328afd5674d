package assign

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type matchingAssigner struct {
}

// NewMatchingAssigner builds the bipartite-matching strategy: every exam
// takes exactly one room, so it is fast but cannot split a large exam
// across rooms and never proves optimality. Online exams go straight to
// the dummy room; the rest are matched against the physical rooms whose
// capacity covers them.
func NewMatchingAssigner() Assigner {
	return &matchingAssigner{}
}

func (assigner *matchingAssigner) Assign(instance *Instance) (*Result, error) {
	if instance == nil {
		return nil, fmt.Errorf("instance must not be nil")
	}
	start := time.Now()

	//** Split exams between the dummy room and the matching
	dummy := instance.DummyRoom()
	pending := make([]int, 0, instance.ExamCount())
	assignedRoom := make(map[int]int)
	for i, exam := range instance.Exams() {
		if exam.Enrollment == 0 {
			assignedRoom[i] = dummy
		} else {
			pending = append(pending, i)
		}
	}

	//** Match the remaining exams against the physical rooms
	rooms := make([]int, 0, instance.RoomCount())
	for r, room := range instance.Rooms() {
		if !room.Dummy {
			rooms = append(rooms, r)
		}
	}

	matched, err := matchRooms(instance, pending, rooms)
	if _, ok := err.(UnassignableError); ok {
		var builder strings.Builder
		for _, i := range pending {
			exam := instance.Exam(i)
			fmt.Fprintf(&builder, "\texam: %v -> { ", exam.ID)
			for _, r := range rooms {
				if instance.Room(r).Capacity >= exam.Enrollment {
					fmt.Fprintf(&builder, "%v, ", instance.RoomID(r))
				}
			}
			builder.WriteString("}\n")
		}
		log.Printf("cannot assign rooms: \n%v\t%v", builder.String(), err)
		return nil, err
	} else if err != nil {
		return nil, err
	}
	for i, r := range matched {
		assignedRoom[i] = r
	}

	//** Assemble the result in exam order
	assignments := make([]Assignment, 0, instance.ExamCount())
	for i := range instance.ExamCount() {
		assignments = append(assignments, Assignment{
			ExamID: instance.ExamID(i),
			RoomID: instance.RoomID(assignedRoom[i]),
		})
	}

	objective, err := EvaluateObjective(instance, assignments, DefaultRoomWeight, DefaultOrgWeight)
	if err != nil {
		return nil, err
	}

	return &Result{
		Assignments: assignments,
		Objective:   objective,
		Optimal:     false,
		Runtime:     time.Since(start),
	}, nil
}

// Verify checks against a room cap of one since the strategy never splits
// an exam.
func (assigner *matchingAssigner) Verify(instance *Instance, result *Result) bool {
	return verify(instance, result, 1)
}

// matchRooms computes a maximum matching between the pending exams and
// the candidate rooms, where an exam neighbors every room whose capacity
// covers its enrollment.
func matchRooms(instance *Instance, pending []int, rooms []int) (map[int]int, error) {
	neighbors := func(examAny any, roomAny any) (bool, error) {
		i := examAny.(int)
		r := roomAny.(int)

		return instance.Room(r).Capacity >= instance.Exam(i).Enrollment, nil
	}

	// Transform exams and rooms to slices of any
	examsAny, roomsAny := lo.Map(pending, func(i int, _ int) any { return i }), lo.Map(rooms, func(r int, _ int) any { return r })

	graph, err := bipartitegraph.NewBipartiteGraph(examsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(pending) {
		return nil, UnassignableError{}
	}

	matched := make(map[int]int, len(matching))
	for _, edge := range matching {
		examIndex, roomIndex := edge.Node1, edge.Node2-len(pending)
		matched[pending[examIndex]] = rooms[roomIndex]
	}

	return matched, nil
}
