package csvio

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/exam-scheduling/roomassign/pkg/assign"
)

// Record layouts of the input tables. Distances travel in long form, one
// from,to,distance row per pair.

type examRecord struct {
	ExamID     string `csv:"exam_id"`
	Enrollment int    `csv:"enrollment"`
	Modality   string `csv:"modality"`
	Course     string `csv:"course"`
	AcadOrg    string `csv:"acadorg"`
	Day        int    `csv:"d"`
	Block      int    `csv:"k"`
}

type roomRecord struct {
	RoomID   string `csv:"room_id"`
	Building string `csv:"building"`
	RoomNum  string `csv:"room_num"`
	Capacity int    `csv:"capacity"`
}

type distanceRecord struct {
	From     string  `csv:"from"`
	To       string  `csv:"to"`
	Distance float64 `csv:"distance"`
}

type dateRecord struct {
	Date  string `csv:"date"`
	Index int    `csv:"index"`
}

type groupingRecord struct {
	Key    string `csv:"key"`
	RoomID string `csv:"room_id"`
}

// LoadExams reads the exam table of one time slot.
func LoadExams(path string) ([]assign.Exam, error) {
	records := []*examRecord{}
	if err := unmarshalFile(path, &records); err != nil {
		return nil, err
	}

	exams := make([]assign.Exam, 0, len(records))
	for _, record := range records {
		modality, err := parseModality(record.Modality)
		if err != nil {
			return nil, fmt.Errorf("exam %q: %v", record.ExamID, err)
		}
		exams = append(exams, assign.Exam{
			ID:         record.ExamID,
			Course:     record.Course,
			AcadOrg:    record.AcadOrg,
			Enrollment: record.Enrollment,
			Modality:   modality,
			Day:        record.Day,
			Block:      record.Block,
		})
	}
	return exams, nil
}

// LoadRooms reads the physical room table. The dummy room is not part of
// the table; the instance builder injects it.
func LoadRooms(path string) ([]assign.Room, error) {
	records := []*roomRecord{}
	if err := unmarshalFile(path, &records); err != nil {
		return nil, err
	}

	rooms := make([]assign.Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, assign.Room{
			ID:       record.RoomID,
			Building: record.Building,
			RoomNum:  record.RoomNum,
			Capacity: record.Capacity,
		})
	}
	return rooms, nil
}

// LoadDistances reads a long-form distance table into the nested
// from -> to -> distance map the instance builder takes. It serves both
// the organization-to-building and the building-to-building tables.
func LoadDistances(path string) (map[string]map[string]float64, error) {
	records := []*distanceRecord{}
	if err := unmarshalFile(path, &records); err != nil {
		return nil, err
	}

	distances := make(map[string]map[string]float64)
	for _, record := range records {
		row, ok := distances[record.From]
		if !ok {
			row = make(map[string]float64)
			distances[record.From] = row
		}
		if _, ok := row[record.To]; ok {
			return nil, fmt.Errorf("%v: duplicate distance entry from %q to %q", path, record.From, record.To)
		}
		row[record.To] = record.Distance
	}
	return distances, nil
}

// LoadDates reads the date -> date-index table.
func LoadDates(path string) (map[string]int, error) {
	records := []*dateRecord{}
	if err := unmarshalFile(path, &records); err != nil {
		return nil, err
	}

	dates := make(map[string]int, len(records))
	for _, record := range records {
		if _, ok := dates[record.Date]; ok {
			return nil, fmt.Errorf("%v: duplicate date entry %q", path, record.Date)
		}
		dates[record.Date] = record.Index
	}
	return dates, nil
}

// LoadGrouping reads the distance-table-key -> room table.
func LoadGrouping(path string) (map[string][]string, error) {
	records := []*groupingRecord{}
	if err := unmarshalFile(path, &records); err != nil {
		return nil, err
	}

	grouping := make(map[string][]string)
	for _, record := range records {
		grouping[record.Key] = append(grouping[record.Key], record.RoomID)
	}
	return grouping, nil
}

func unmarshalFile(path string, records any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %v: %v", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, records); err != nil {
		return fmt.Errorf("cannot parse %v: %v", path, err)
	}
	return nil
}

// parseModality accepts the modality spellings of the source data, case
// and inner spacing ignored.
func parseModality(raw string) (assign.Modality, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", "")) {
	case "inperson":
		return assign.InPerson, nil
	case "online":
		return assign.Online, nil
	}
	return "", fmt.Errorf("unknown modality %q", raw)
}
