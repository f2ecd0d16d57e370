package models

import (
	"time"

	"github.com/lib/pq"
)

// SchoolEvent is a dated calendar entry with optional reminder dates
// (ISO "2006-01-02" strings).
type SchoolEvent struct {
	ID            string         `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Description   *string        `db:"description" json:"description,omitempty"`
	Date          time.Time      `db:"date" json:"date"`
	StartTime     *string        `db:"start_time" json:"start_time,omitempty"`
	EndTime       *string        `db:"end_time" json:"end_time,omitempty"`
	ReminderDates pq.StringArray `db:"reminder_dates" json:"reminder_dates"`
	CreatedBy     string         `db:"created_by" json:"created_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// TaskAssigneeKind discriminates who a task is assigned to. Exactly one
// target kind applies per task.
type TaskAssigneeKind string

const (
	TaskAssigneeUser    TaskAssigneeKind = "user"
	TaskAssigneeSection TaskAssigneeKind = "section"
	TaskAssigneeClass   TaskAssigneeKind = "class"
)

// Valid returns true when the kind is a supported value.
func (k TaskAssigneeKind) Valid() bool {
	switch k {
	case TaskAssigneeUser, TaskAssigneeSection, TaskAssigneeClass:
		return true
	default:
		return false
	}
}

// TaskStatus enumerates task states.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

// Task is a dated to-do targeted at exactly one of a user, a section or a
// class, modeled as kind plus id rather than three sibling foreign keys.
type Task struct {
	ID            string           `db:"id" json:"id"`
	Title         string           `db:"title" json:"title"`
	Description   *string          `db:"description" json:"description,omitempty"`
	DueDate       time.Time        `db:"due_date" json:"due_date"`
	AssigneeKind  TaskAssigneeKind `db:"assignee_kind" json:"assignee_kind"`
	AssigneeID    string           `db:"assignee_id" json:"assignee_id"`
	Status        TaskStatus       `db:"status" json:"status"`
	ReminderDates pq.StringArray   `db:"reminder_dates" json:"reminder_dates"`
	CreatedBy     string           `db:"created_by" json:"created_by"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// DateRangeFilter scopes calendar listings.
type DateRangeFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
