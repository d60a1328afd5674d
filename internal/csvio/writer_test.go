package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exam-scheduling/roomassign/pkg/assign"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentsString(t *testing.T) {
	// Act
	content, err := AssignmentsString([]assign.Assignment{
		{ExamID: "orie3300", RoomID: "upson-101"},
		{ExamID: "orie3300", RoomID: "statler-196"},
		{ExamID: "cs5780", RoomID: "dummy"},
	})

	// Assert
	assert.Nil(t, err)
	assert.Equal(t, "exam_id,room_id\norie3300,upson-101\norie3300,statler-196\ncs5780,dummy\n", content)
}

func TestAssignmentsStringEmpty(t *testing.T) {
	content, err := AssignmentsString(nil)

	assert.Nil(t, err)
	assert.Equal(t, "exam_id,room_id\n", content)
}

func TestExportAssignments(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "assignments.csv")

	// Act
	err := ExportAssignments([]assign.Assignment{
		{ExamID: "orie3300", RoomID: "upson-101"},
	}, path)

	// Assert
	assert.Nil(t, err)
	content, err := os.ReadFile(path)
	assert.Nil(t, err)
	assert.Equal(t, "exam_id,room_id\norie3300,upson-101\n", string(content))
}

func TestExportAssignmentsReplacesExistingFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "assignments.csv")
	assert.Nil(t, os.WriteFile(path, []byte("stale"), 0644))

	// Act
	err := ExportAssignments([]assign.Assignment{
		{ExamID: "cs5780", RoomID: "dummy"},
	}, path)

	// Assert
	assert.Nil(t, err)
	content, _ := os.ReadFile(path)
	assert.Equal(t, "exam_id,room_id\ncs5780,dummy\n", string(content))
}

func TestExportAssignmentsBadPath(t *testing.T) {
	err := ExportAssignments(nil, filepath.Join(t.TempDir(), "missing", "assignments.csv"))

	assert.ErrorContains(t, err, "cannot create")
}
