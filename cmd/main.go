package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/exam-scheduling/roomassign/pkg/assign"
	"github.com/exam-scheduling/roomassign/pkg/mip"
)

func main() {
	const File string = "../test/instances/example.json"

	instance, err := assign.InstanceFromJson(File)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	// solver := mip.NewCbcSolver()
	// solver := mip.NewGlpsolSolver()
	// solver := mip.NewHighsSolver()
	// solver := mip.NewGurobiSolver()
	solver := mip.NewGokandoSolver()
	assigner := assign.NewIPAssigner(solver)
	// assigner := assign.NewMatchingAssigner()

	result, err := assigner.Assign(instance)
	if errors.Is(err, assign.InfeasibleError{}) {
		fmt.Println("Not feasible")
		return
	} else if err != nil {
		log.Fatal(err)
	}

	for _, assignment := range result.Assignments {
		examIndex, _ := instance.ExamIndex(assignment.ExamID)
		roomIndex, _ := instance.RoomIndex(assignment.RoomID)
		exam, room := instance.Exam(examIndex), instance.Room(roomIndex)

		fmt.Printf("Exam: %v, Course: %v, Enrollment: %v, Room: %v, Capacity: %v \n", exam.ID, exam.Course, exam.Enrollment, room.ID, room.Capacity)
	}
	fmt.Printf("Objective: %v, Optimal: %v \n", result.Objective, result.Optimal)

	if !assigner.Verify(instance, result) {
		log.Fatal("Verification failed")
	}

	fmt.Println("Well done!")
}
