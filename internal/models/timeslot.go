package models

import "time"

// DayOfWeek enumerates timetable days.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Valid returns true when the day is a supported value.
func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// SlotType discriminates what a time slot carries: a subject lesson keyed by
// subject_id, or a titled break/event.
type SlotType string

const (
	SlotSubject SlotType = "subject"
	SlotBreak   SlotType = "break"
	SlotEvent   SlotType = "event"
)

// Valid returns true when the slot type is a supported value.
func (t SlotType) Valid() bool {
	switch t {
	case SlotSubject, SlotBreak, SlotEvent:
		return true
	default:
		return false
	}
}

// TimeSlot is one scheduled interval in a section's weekly timetable.
// EndTime is always derived from StartTime plus DurationMinutes and never
// accepted from callers. SubjectID is set iff Type is subject; Title is set
// iff Type is break or event.
type TimeSlot struct {
	ID              string    `db:"id" json:"id"`
	AcademicYearID  string    `db:"academic_year_id" json:"academic_year_id"`
	ClassID         string    `db:"class_id" json:"class_id"`
	SectionID       string    `db:"section_id" json:"section_id"`
	DayOfWeek       DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime       string    `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	EndTime         string    `db:"end_time" json:"end_time"`
	Type            SlotType  `db:"slot_type" json:"slot_type"`
	SubjectID       *string   `db:"subject_id" json:"subject_id,omitempty"`
	Title           *string   `db:"title" json:"title,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlotScope is the composite key a timetable day view is fetched by.
type TimeSlotScope struct {
	AcademicYearID string
	ClassID        string
	SectionID      string
	DayOfWeek      DayOfWeek
}
