package assign

import (
	"fmt"
	"slices"
)

// Instance is one immutable, validated room-assignment problem: the
// normalized exam and room tables, the dummy-extended distance tables and
// dense bidirectional indexes over exam and room identifiers. Instances
// are produced by Builder.Build, describe a single time slot, and are
// shared read-only by assigners; they are not reused across problems.
type Instance struct {
	exams             []Exam
	rooms             []Room
	orgDistances      map[string]map[string]float64
	buildingDistances map[string]map[string]float64
	grouping          map[string][]string
	dates             map[string]int
	examIndex         *identityIndex
	roomIndex         *identityIndex
	distanceKeys      []string
	dummy             int
}

func (instance *Instance) ExamCount() int {
	return len(instance.exams)
}

// RoomCount includes the dummy room.
func (instance *Instance) RoomCount() int {
	return len(instance.rooms)
}

// Exams returns the normalized exams in index order.
func (instance *Instance) Exams() []Exam {
	return slices.Clone(instance.exams)
}

// Rooms returns the normalized rooms in index order, the dummy room
// included.
func (instance *Instance) Rooms() []Room {
	return slices.Clone(instance.rooms)
}

func (instance *Instance) Exam(i int) Exam {
	return instance.exams[i]
}

func (instance *Instance) Room(r int) Room {
	return instance.rooms[r]
}

func (instance *Instance) ExamID(i int) string {
	return instance.examIndex.ID(i)
}

func (instance *Instance) RoomID(r int) string {
	return instance.roomIndex.ID(r)
}

// ExamIndex resolves an exam identifier to its dense index.
func (instance *Instance) ExamIndex(id string) (int, bool) {
	return instance.examIndex.Index(id)
}

// RoomIndex resolves a room identifier to its dense index.
func (instance *Instance) RoomIndex(id string) (int, bool) {
	return instance.roomIndex.Index(id)
}

// DummyRoom returns the index of the instance's dummy room.
func (instance *Instance) DummyRoom() int {
	return instance.dummy
}

// DistanceKey returns the distance-table key room r reads, resolved
// through the room-label grouping.
func (instance *Instance) DistanceKey(r int) string {
	return instance.distanceKeys[r]
}

// OrgDistance returns the distance from an academic organization to room
// r's building key. Build validates that every lookup an assigner can make
// resolves, so the accessor is total on built instances.
func (instance *Instance) OrgDistance(org string, r int) float64 {
	return instance.orgDistances[org][instance.distanceKeys[r]]
}

// RoomDistance returns the building distance between two rooms.
func (instance *Instance) RoomDistance(r, rPrime int) float64 {
	return instance.buildingDistances[instance.distanceKeys[r]][instance.distanceKeys[rPrime]]
}

// Grouping returns the resolved distance-table-key -> room-IDs map. Every
// room appears under exactly one key.
func (instance *Instance) Grouping() map[string][]string {
	grouping := make(map[string][]string, len(instance.grouping))
	for key, roomIDs := range instance.grouping {
		grouping[key] = slices.Clone(roomIDs)
	}
	return grouping
}

// Dates returns the date -> date-index mapping, carried through unchanged
// from the input tables.
func (instance *Instance) Dates() map[string]int {
	dates := make(map[string]int, len(instance.dates))
	for date, index := range instance.dates {
		dates[date] = index
	}
	return dates
}

// TotalCapacity sums the seats of the real rooms.
func (instance *Instance) TotalCapacity() int {
	capacity := 0
	for _, room := range instance.rooms {
		if !room.Dummy {
			capacity += room.Capacity
		}
	}
	return capacity
}

// TotalEnrollment sums the normalized enrollments, online exams counting
// as zero.
func (instance *Instance) TotalEnrollment() int {
	enrollment := 0
	for _, exam := range instance.exams {
		enrollment += exam.Enrollment
	}
	return enrollment
}

// validateDistances checks that every distance an assigner can read exists
// and is non-negative: one row per academic organization covering every
// room's building key, and one building-matrix entry per ordered pair of
// building keys.
func (instance *Instance) validateDistances() error {
	for _, exam := range instance.exams {
		row, ok := instance.orgDistances[exam.AcadOrg]
		if !ok {
			return fmt.Errorf("acadorg %q of exam %q has no distance row", exam.AcadOrg, exam.ID)
		}
		for r, key := range instance.distanceKeys {
			distance, ok := row[key]
			if !ok {
				return fmt.Errorf("acadorg %q has no distance entry for building key %q of room %q", exam.AcadOrg, key, instance.rooms[r].ID)
			}
			if distance < 0 {
				return fmt.Errorf("distance from acadorg %q to building key %q is negative: %v", exam.AcadOrg, key, distance)
			}
		}
	}

	for r, key := range instance.distanceKeys {
		row, ok := instance.buildingDistances[key]
		if !ok {
			return fmt.Errorf("building key %q of room %q has no distance row", key, instance.rooms[r].ID)
		}
		for _, otherKey := range instance.distanceKeys {
			distance, ok := row[otherKey]
			if !ok {
				return fmt.Errorf("building key %q has no distance entry for building key %q", key, otherKey)
			}
			if distance < 0 {
				return fmt.Errorf("distance between building keys %q and %q is negative: %v", key, otherKey, distance)
			}
		}
	}

	return nil
}
