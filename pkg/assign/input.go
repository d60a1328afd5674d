package assign

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type Modality string

const (
	InPerson Modality = "InPerson"
	Online   Modality = "Online"
)

// The synthetic room standing in for "no physical room". It exists exactly
// once per instance, carries zero capacity and may be shared by every exam.
const (
	DummyRoomID   = "dummy"
	DummyBuilding = "dummy"
)

// Exam is one exam to place. Day and Block identify the time slot the exam
// was already scheduled into; the caller builds one instance per slot, so
// they ride along without entering the formulation.
type Exam struct {
	ID         string
	Course     string
	AcadOrg    string
	Enrollment int
	Modality   Modality
	Day        int
	Block      int
}

// Room is one room that can host exams. Multiplicity is how many exams may
// use the room concurrently: 1 for physical rooms, the exam count for the
// dummy room.
type Room struct {
	ID           string
	Building     string
	RoomNum      string
	Capacity     int
	Multiplicity int
	Dummy        bool
}

// Builder accumulates the raw tables of one assignment problem. Build
// normalizes and validates them into an immutable Instance; the zero
// Builder is usable.
type Builder struct {
	exams             []Exam
	rooms             []Room
	orgDistances      map[string]map[string]float64
	buildingDistances map[string]map[string]float64
	grouping          map[string][]string
	dates             map[string]int
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (builder *Builder) WithExams(exams ...Exam) *Builder {
	builder.exams = append(builder.exams, exams...)
	return builder
}

func (builder *Builder) WithRooms(rooms ...Room) *Builder {
	builder.rooms = append(builder.rooms, rooms...)
	return builder
}

// WithOrgDistances sets the acadorg -> distance-table-key -> distance map.
func (builder *Builder) WithOrgDistances(distances map[string]map[string]float64) *Builder {
	builder.orgDistances = distances
	return builder
}

// WithBuildingDistances sets the square distance-table-key -> key map.
func (builder *Builder) WithBuildingDistances(distances map[string]map[string]float64) *Builder {
	builder.buildingDistances = distances
	return builder
}

// WithGrouping sets the distance-table-key -> room IDs map. Distance tables
// are keyed by building, not by room; the grouping says which table row
// each room reads. Rooms missing from every group fall back to their own
// building name, and a nil grouping means every room falls back.
func (builder *Builder) WithGrouping(grouping map[string][]string) *Builder {
	builder.grouping = grouping
	return builder
}

// WithDates sets the date -> date index map. It is validated lightly and
// carried through on the instance untouched.
func (builder *Builder) WithDates(dates map[string]int) *Builder {
	builder.dates = dates
	return builder
}

// Build normalizes the accumulated tables (online enrollments zeroed, dummy
// room injected, distance tables extended with zero-cost dummy entries) and
// validates them, failing fast with a descriptive error before any solver
// is involved.
func (builder *Builder) Build() (*Instance, error) {
	exams, err := normalizeExams(builder.exams)
	if err != nil {
		return nil, err
	}

	rooms, err := normalizeRooms(builder.rooms, len(exams))
	if err != nil {
		return nil, err
	}

	examIndex, err := newIdentityIndex("exam", lo.Map(exams, func(exam Exam, _ int) string { return exam.ID }))
	if err != nil {
		return nil, err
	}
	roomIndex, err := newIdentityIndex("room", lo.Map(rooms, func(room Room, _ int) string { return room.ID }))
	if err != nil {
		return nil, err
	}

	grouping, distanceKeys, err := resolveGrouping(builder.grouping, rooms, roomIndex)
	if err != nil {
		return nil, err
	}

	orgDistances := extendOrgDistances(builder.orgDistances)
	buildingDistances := extendBuildingDistances(builder.buildingDistances, distanceKeys)

	instance := &Instance{
		exams:             exams,
		rooms:             rooms,
		orgDistances:      orgDistances,
		buildingDistances: buildingDistances,
		grouping:          grouping,
		dates:             copyDates(builder.dates),
		examIndex:         examIndex,
		roomIndex:         roomIndex,
		distanceKeys:      distanceKeys,
		dummy:             lo.IndexOf(lo.Map(rooms, func(room Room, _ int) bool { return room.Dummy }), true),
	}

	if err := instance.validateDistances(); err != nil {
		return nil, err
	}
	return instance, nil
}

func normalizeExams(input []Exam) ([]Exam, error) {
	// The formulation forces at least one room per exam, so an empty exam
	// table has nothing to solve
	if len(input) == 0 {
		return nil, fmt.Errorf("instance must carry at least one exam")
	}

	exams := make([]Exam, len(input))
	for i, exam := range input {
		if exam.ID == "" {
			return nil, fmt.Errorf("exam at position %d has an empty id", i)
		}
		if exam.Enrollment < 0 {
			return nil, fmt.Errorf("exam %q has negative enrollment %d", exam.ID, exam.Enrollment)
		}
		if exam.Modality != InPerson && exam.Modality != Online {
			return nil, fmt.Errorf("exam %q has unknown modality %q", exam.ID, exam.Modality)
		}
		if exam.Modality == Online {
			exam.Enrollment = 0
		}
		exams[i] = exam
	}
	return exams, nil
}

func normalizeRooms(input []Room, examCount int) ([]Room, error) {
	rooms := make([]Room, 0, len(input)+1)
	dummies := 0
	for _, room := range input {
		if room.ID == "" {
			return nil, fmt.Errorf("room with building %q has an empty id", room.Building)
		}
		if room.Capacity < 0 {
			return nil, fmt.Errorf("room %q has negative capacity %d", room.ID, room.Capacity)
		}
		if room.Multiplicity < 0 {
			return nil, fmt.Errorf("room %q has negative multiplicity %d", room.ID, room.Multiplicity)
		}

		if room.Dummy {
			if room.Capacity != 0 {
				return nil, fmt.Errorf("dummy room %q must have zero capacity, got %d", room.ID, room.Capacity)
			}
			if room.Building == "" {
				room.Building = DummyBuilding
			}
			room.Multiplicity = examCount
			dummies++
		} else {
			if room.ID == DummyRoomID {
				return nil, fmt.Errorf("room id %q is reserved for the dummy room", DummyRoomID)
			}
			if room.Multiplicity == 0 {
				room.Multiplicity = 1
			}
		}
		rooms = append(rooms, room)
	}

	switch {
	case dummies == 0:
		rooms = append(rooms, Room{
			ID:           DummyRoomID,
			Building:     DummyBuilding,
			RoomNum:      DummyRoomID,
			Capacity:     0,
			Multiplicity: examCount,
			Dummy:        true,
		})
	case dummies > 1:
		return nil, fmt.Errorf("instance carries %d dummy rooms, want exactly one", dummies)
	}
	return rooms, nil
}

// resolveGrouping turns the grouping into one distance-table key per room.
// Rooms left out of every group read the table through their own building
// name; the dummy room always reads the zero-cost dummy row.
func resolveGrouping(grouping map[string][]string, rooms []Room, roomIndex *identityIndex) (map[string][]string, []string, error) {
	distanceKeys := make([]string, len(rooms))
	for r, room := range rooms {
		distanceKeys[r] = room.Building
		if room.Dummy {
			distanceKeys[r] = DummyBuilding
		}
	}

	grouped := make(map[string]string)
	for key, roomIDs := range grouping {
		for _, roomID := range roomIDs {
			r, ok := roomIndex.Index(roomID)
			if !ok {
				return nil, nil, fmt.Errorf("grouping key %q references unknown room %q", key, roomID)
			}
			if previous, ok := grouped[roomID]; ok {
				return nil, nil, fmt.Errorf("room %q appears under grouping keys %q and %q", roomID, previous, key)
			}
			grouped[roomID] = key
			if !rooms[r].Dummy {
				distanceKeys[r] = key
			}
		}
	}

	resolved := make(map[string][]string, len(grouping)+1)
	for r, room := range rooms {
		key := distanceKeys[r]
		resolved[key] = append(resolved[key], room.ID)
	}
	return resolved, distanceKeys, nil
}

func extendOrgDistances(distances map[string]map[string]float64) map[string]map[string]float64 {
	extended := make(map[string]map[string]float64, len(distances))
	for org, row := range distances {
		extendedRow := make(map[string]float64, len(row)+1)
		for key, distance := range row {
			extendedRow[key] = distance
		}
		extendedRow[DummyBuilding] = 0
		extended[org] = extendedRow
	}
	return extended
}

func extendBuildingDistances(distances map[string]map[string]float64, distanceKeys []string) map[string]map[string]float64 {
	extended := make(map[string]map[string]float64, len(distances)+1)
	for key, row := range distances {
		extendedRow := make(map[string]float64, len(row)+1)
		for other, distance := range row {
			extendedRow[other] = distance
		}
		extendedRow[DummyBuilding] = 0
		extended[key] = extendedRow
	}

	dummyRow := make(map[string]float64, len(distanceKeys)+1)
	for key := range distances {
		dummyRow[key] = 0
	}
	for _, key := range distanceKeys {
		dummyRow[key] = 0
	}
	dummyRow[DummyBuilding] = 0
	extended[DummyBuilding] = dummyRow
	return extended
}

func copyDates(dates map[string]int) map[string]int {
	copied := make(map[string]int, len(dates))
	for date, index := range dates {
		copied[date] = index
	}
	return copied
}

type instanceInput struct {
	Exams             []Exam
	Rooms             []Room
	OrgDistances      map[string]map[string]float64 `mapstructure:"orgDistances"`
	BuildingDistances map[string]map[string]float64 `mapstructure:"buildingDistances"`
	Grouping          map[string][]string
	Dates             map[string]int
}

// InstanceFromJson loads an instance from a JSON file holding the raw
// tables and runs it through the Builder.
func InstanceFromJson(file string) (*Instance, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, err
	}

	var input instanceInput
	mapstructure.Decode(inputJson, &input)

	return NewBuilder().
		WithExams(input.Exams...).
		WithRooms(input.Rooms...).
		WithOrgDistances(input.OrgDistances).
		WithBuildingDistances(input.BuildingDistances).
		WithGrouping(input.Grouping).
		WithDates(input.Dates).
		Build()
}
