package models

import "time"

// Class is a grade level owned by an academic year.
type Class struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter narrows class listings.
type ClassFilter struct {
	AcademicYearID string
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// Section is a named subdivision of a class with an optional homeroom
// teacher. Its academic year is inherited through the class.
type Section struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	ClassID           string    `db:"class_id" json:"class_id"`
	HomeroomTeacherID *string   `db:"homeroom_teacher_id" json:"homeroom_teacher_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// SectionDetail joins the owning class and homeroom teacher names.
type SectionDetail struct {
	Section
	ClassName           string  `db:"class_name" json:"class_name"`
	AcademicYearID      string  `db:"academic_year_id" json:"academic_year_id"`
	HomeroomTeacherName *string `db:"homeroom_teacher_name" json:"homeroom_teacher_name,omitempty"`
	StudentCount        int     `db:"student_count" json:"student_count"`
}
