package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/exam-scheduling/roomassign/pkg/assign"
)

type assignmentRecord struct {
	ExamID string `csv:"exam_id"`
	RoomID string `csv:"room_id"`
}

// ExportAssignments writes the exam-to-room pairs of a result to a CSV
// file, replacing the file when it exists.
func ExportAssignments(assignments []assign.Assignment, path string) error {
	records := assignmentRecords(assignments)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %v: %v", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&records, out); err != nil {
		return fmt.Errorf("cannot write %v: %v", path, err)
	}
	return nil
}

// AssignmentsString renders the exam-to-room pairs as CSV text.
func AssignmentsString(assignments []assign.Assignment) (string, error) {
	records := assignmentRecords(assignments)
	return gocsv.MarshalString(&records)
}

func assignmentRecords(assignments []assign.Assignment) []*assignmentRecord {
	records := make([]*assignmentRecord, 0, len(assignments))
	for _, assignment := range assignments {
		records = append(records, &assignmentRecord{
			ExamID: assignment.ExamID,
			RoomID: assignment.RoomID,
		})
	}
	return records
}
