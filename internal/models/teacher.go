package models

import "time"

// Teacher is a staff profile with professional, contact and emergency
// sub-records flattened onto the row.
type Teacher struct {
	ID        string  `db:"id" json:"id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     *string `db:"email" json:"email,omitempty"`
	Phone     *string `db:"phone" json:"phone,omitempty"`

	// Professional record.
	Qualification *string    `db:"qualification" json:"qualification,omitempty"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	HireDate      *time.Time `db:"hire_date" json:"hire_date,omitempty"`

	// Emergency contact.
	EmergencyContactName  *string `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures listing criteria.
type TeacherFilter struct {
	Search    string
	Active    *bool
	SubjectID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherSummary is the stable view-model shape for a teacher including its
// subject and section assignments, reshaped once instead of per screen.
type TeacherSummary struct {
	Teacher
	Subjects []Subject               `json:"subjects"`
	Sections []SubjectSectionTeacher `json:"section_assignments"`
	Homeroom []Section               `json:"homeroom_sections"`
}
