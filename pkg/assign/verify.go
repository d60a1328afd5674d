package assign

import "fmt"

// verify checks a result against the hard rules of the problem
// independently of the solver that produced it.
func verify(instance *Instance, result *Result, maxRooms int) bool {
	if instance == nil || result == nil {
		return false
	}

	//** Collect exam-rooms and room-load
	examRooms := make(map[int][]int)
	roomLoad := make(map[int]int)
	seen := make(map[[2]int]bool)

	for _, assignment := range result.Assignments {
		i, ok := instance.ExamIndex(assignment.ExamID)
		if !ok {
			return false
		}
		r, ok := instance.RoomIndex(assignment.RoomID)
		if !ok {
			return false
		}

		// Check that an exam-room pair appears only once
		pair := [2]int{i, r}
		if seen[pair] {
			return false
		}
		seen[pair] = true

		examRooms[i] = append(examRooms[i], r)
		roomLoad[r]++
	}

	for i, exam := range instance.Exams() {
		rooms := examRooms[i]

		// Check that:
		// - Exam occupies at least one room and at most maxRooms rooms
		// - Assigned seats cover the exam's enrollment
		if len(rooms) < 1 || len(rooms) > maxRooms {
			return false
		}
		capacity := 0
		for _, r := range rooms {
			capacity += instance.Room(r).Capacity
		}
		if capacity < exam.Enrollment {
			return false
		}
	}

	// Check that no room serves more exams than its multiplicity
	for r, load := range roomLoad {
		if load > instance.Room(r).Multiplicity {
			return false
		}
	}

	return true
}

// EvaluateObjective recomputes the objective of an assignment from first
// principles: roomWeight per occupied room, orgWeight times the distance
// from each exam's academic organization to each of its rooms, and the
// squared building distance over every distinct ordered pair of rooms
// serving a common exam.
func EvaluateObjective(instance *Instance, assignments []Assignment, roomWeight, orgWeight float64) (float64, error) {
	if instance == nil {
		return 0, fmt.Errorf("instance must not be nil")
	}

	examRooms := make(map[int][]int)

	objective := 0.0
	for _, assignment := range assignments {
		i, ok := instance.ExamIndex(assignment.ExamID)
		if !ok {
			return 0, fmt.Errorf("unknown exam id %q", assignment.ExamID)
		}
		r, ok := instance.RoomIndex(assignment.RoomID)
		if !ok {
			return 0, fmt.Errorf("unknown room id %q", assignment.RoomID)
		}

		objective += roomWeight
		objective += orgWeight * instance.OrgDistance(instance.Exam(i).AcadOrg, r)

		examRooms[i] = append(examRooms[i], r)
	}

	//** Accumulate the distinct ordered room pairs sharing an exam
	sharedPairs := make(map[[2]int]bool)
	for _, rooms := range examRooms {
		for _, r := range rooms {
			for _, rPrime := range rooms {
				sharedPairs[[2]int{r, rPrime}] = true
			}
		}
	}
	for pair := range sharedPairs {
		distance := instance.RoomDistance(pair[0], pair[1])
		objective += distance * distance
	}

	return objective, nil
}
