package models

import "time"

// StudentAttendanceStatus enumerates student day statuses.
type StudentAttendanceStatus string

const (
	StudentPresent StudentAttendanceStatus = "present"
	StudentAbsent  StudentAttendanceStatus = "absent"
	StudentLate    StudentAttendanceStatus = "late"
	StudentLeave   StudentAttendanceStatus = "leave"
)

// Valid returns true when the status is a supported value.
func (s StudentAttendanceStatus) Valid() bool {
	switch s {
	case StudentPresent, StudentAbsent, StudentLate, StudentLeave:
		return true
	default:
		return false
	}
}

// StudentAttendance holds at most one status per student per calendar day;
// (student_id, date) is the natural key.
type StudentAttendance struct {
	ID        string                  `db:"id" json:"id"`
	StudentID string                  `db:"student_id" json:"student_id"`
	SectionID string                  `db:"section_id" json:"section_id"`
	Date      time.Time               `db:"date" json:"date"`
	Status    StudentAttendanceStatus `db:"status" json:"status"`
	Notes     *string                 `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt time.Time               `db:"updated_at" json:"updated_at"`
}

// StudentAttendanceRecord joins student metadata for register views.
type StudentAttendanceRecord struct {
	StudentAttendance
	StudentName string `db:"student_name" json:"student_name"`
	SectionName string `db:"section_name" json:"section_name"`
}

// TeacherAttendanceStatus enumerates teacher day statuses.
type TeacherAttendanceStatus string

const (
	TeacherPresent TeacherAttendanceStatus = "present"
	TeacherAbsent  TeacherAttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s TeacherAttendanceStatus) Valid() bool {
	return s == TeacherPresent || s == TeacherAbsent
}

// TeacherAttendance holds at most one row per teacher per day with optional
// check-in/out times ("HH:MM").
type TeacherAttendance struct {
	ID        string                  `db:"id" json:"id"`
	TeacherID string                  `db:"teacher_id" json:"teacher_id"`
	Date      time.Time               `db:"date" json:"date"`
	Status    TeacherAttendanceStatus `db:"status" json:"status"`
	CheckIn   *string                 `db:"check_in" json:"check_in,omitempty"`
	CheckOut  *string                 `db:"check_out" json:"check_out,omitempty"`
	CreatedAt time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt time.Time               `db:"updated_at" json:"updated_at"`
}

// StudentAttendanceSummary aggregates counts for one student.
type StudentAttendanceSummary struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Leave   int     `json:"leave"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}
