package models

import "time"

// Student is a learner profile. The id doubles as the profile/user id.
type Student struct {
	ID             string     `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          *string    `db:"email" json:"email,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	GuardianName   *string    `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianPhone  *string    `db:"guardian_phone" json:"guardian_phone,omitempty"`
	EnrollmentDate *time.Time `db:"enrollment_date" json:"enrollment_date,omitempty"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures listing criteria.
type StudentFilter struct {
	SectionID string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail extends the student row with its current section, when any.
type StudentDetail struct {
	Student
	SectionID   *string `db:"section_id" json:"section_id,omitempty"`
	SectionName *string `db:"section_name" json:"section_name,omitempty"`
	ClassName   *string `db:"class_name" json:"class_name,omitempty"`
}
