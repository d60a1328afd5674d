package assign

import "log"

// Shared instance fixtures. Each one has a hand-computable optimum so the
// strategy tests can pin exact objective values.

// The optimal cover of splitInstance takes both rooms: 2 for the rooms,
// 0.05*(2+4) for the organization distances and 2*3^2 for the two ordered
// cross-building pairs.
const splitObjective = 20.3

// splitInstance is one 50-seat exam over two 30-seat rooms in different
// buildings, so no single room covers it.
func splitInstance() *Instance {
	instance, err := NewBuilder().
		WithExams(Exam{ID: "orie3300", Course: "ORIE 3300", AcadOrg: "ORIE", Enrollment: 50, Modality: InPerson, Day: 12, Block: 2}).
		WithRooms(
			Room{ID: "upson-101", Building: "upson", RoomNum: "101", Capacity: 30},
			Room{ID: "statler-196", Building: "statler", RoomNum: "196", Capacity: 30},
		).
		WithOrgDistances(map[string]map[string]float64{
			"ORIE": {"upson": 2, "statler": 4},
		}).
		WithBuildingDistances(map[string]map[string]float64{
			"upson":   {"upson": 0, "statler": 3},
			"statler": {"upson": 3, "statler": 0},
		}).
		Build()
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}
	return instance
}

// onlineInstance is one online exam next to one physical room. The dummy
// room zeroes every distance, so the optimum is a single room: exactly 1.
func onlineInstance() *Instance {
	instance, err := NewBuilder().
		WithExams(Exam{ID: "cs5780", Course: "CS 5780", AcadOrg: "CS", Enrollment: 500, Modality: Online}).
		WithRooms(Room{ID: "gates-g01", Building: "gates", RoomNum: "G01", Capacity: 30}).
		WithOrgDistances(map[string]map[string]float64{
			"CS": {"gates": 3},
		}).
		WithBuildingDistances(map[string]map[string]float64{
			"gates": {"gates": 0},
		}).
		Build()
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}
	return instance
}

// Each exam of competingInstance keeps the room near its organization:
// 2 for the rooms plus 0.05*(1+1) for the organization distances.
const competingObjective = 2.1

// competingInstance is two exams pulled toward opposite buildings, with
// one fitting room in each. Room exclusivity forbids sharing, so the only
// choice is which exam takes which room.
func competingInstance() *Instance {
	instance, err := NewBuilder().
		WithExams(
			Exam{ID: "orie3300", Course: "ORIE 3300", AcadOrg: "ORIE", Enrollment: 25, Modality: InPerson},
			Exam{ID: "cs2110", Course: "CS 2110", AcadOrg: "CS", Enrollment: 25, Modality: InPerson},
		).
		WithRooms(
			Room{ID: "upson-101", Building: "upson", RoomNum: "101", Capacity: 30},
			Room{ID: "gates-g01", Building: "gates", RoomNum: "G01", Capacity: 30},
		).
		WithOrgDistances(map[string]map[string]float64{
			"ORIE": {"upson": 1, "gates": 9},
			"CS":   {"upson": 9, "gates": 1},
		}).
		WithBuildingDistances(map[string]map[string]float64{
			"upson": {"upson": 0, "gates": 5},
			"gates": {"upson": 5, "gates": 0},
		}).
		Build()
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}
	return instance
}

// tradeoffInstance offers one far 60-seat hall against two near 30-seat
// rooms sharing a building. The default weights prefer the far hall
// (1 + 0.05*10 = 1.5 against 2 + 0.05*2 = 2.1); weighting distance up to
// 1 flips the choice to the near pair (2 + 2 = 4 against 11).
func tradeoffInstance() *Instance {
	instance, err := NewBuilder().
		WithExams(Exam{ID: "orie3300", Course: "ORIE 3300", AcadOrg: "ORIE", Enrollment: 50, Modality: InPerson}).
		WithRooms(
			Room{ID: "barton-hall", Building: "barton", RoomNum: "HALL", Capacity: 60},
			Room{ID: "hollister-110", Building: "hollister", RoomNum: "110", Capacity: 30},
			Room{ID: "hollister-120", Building: "hollister", RoomNum: "120", Capacity: 30},
		).
		WithOrgDistances(map[string]map[string]float64{
			"ORIE": {"barton": 10, "hollister": 1},
		}).
		WithBuildingDistances(map[string]map[string]float64{
			"barton":    {"barton": 0, "hollister": 7},
			"hollister": {"barton": 7, "hollister": 0},
		}).
		Build()
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}
	return instance
}

// infeasibleInstance asks for 100 seats with 30 available.
func infeasibleInstance() *Instance {
	instance, err := NewBuilder().
		WithExams(Exam{ID: "orie3300", Course: "ORIE 3300", AcadOrg: "ORIE", Enrollment: 100, Modality: InPerson}).
		WithRooms(Room{ID: "upson-101", Building: "upson", RoomNum: "101", Capacity: 30}).
		WithOrgDistances(map[string]map[string]float64{
			"ORIE": {"upson": 2},
		}).
		WithBuildingDistances(map[string]map[string]float64{
			"upson": {"upson": 0},
		}).
		Build()
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}
	return instance
}
