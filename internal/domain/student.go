package domain

import "strings"

const studentCSVFields = 3

// ParseStudentsCSV reads lastname,firstname,email lines. Blank lines are
// skipped and do not count toward the reported line number.
func ParseStudentsCSV(csv string) (StudentRecords, error) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(csv), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	records := make(StudentRecords, 0, len(lines))
	for i, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) < studentCSVFields {
			return nil, &ValidationError{
				Field:   "students_csv",
				Line:    i + 1,
				Message: "expected lastname,firstname,email",
			}
		}
		records = append(records, StudentRecord{
			Lastname:  strings.TrimSpace(parts[0]),
			Firstname: strings.TrimSpace(parts[1]),
			Email:     strings.TrimSpace(parts[2]),
		})
	}
	return records, nil
}

type CreatedStudent struct {
	StudentID       int64  `json:"studentId"`
	Email           string `json:"email"`
	InitialPassword string `json:"initialPassword,omitempty"`
}

type CreateStudentsResponse struct {
	Students []CreatedStudent `json:"students"`
}

func (r CreateStudentsResponse) StudentIDs() []int64 {
	ids := make([]int64, 0, len(r.Students))
	for _, s := range r.Students {
		ids = append(ids, s.StudentID)
	}
	return ids
}
