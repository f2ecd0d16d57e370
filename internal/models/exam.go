package models

import "time"

// Exam is defined independently of sections and linked to them afterwards.
type Exam struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Date      time.Time `db:"date" json:"date"`
	MaxScore  float64   `db:"max_score" json:"max_score"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ExamFilter captures listing criteria.
type ExamFilter struct {
	SubjectID string
	SectionID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ExamAssignment links an exam to a section for a year.
type ExamAssignment struct {
	ID             string    `db:"id" json:"id"`
	ExamID         string    `db:"exam_id" json:"exam_id"`
	SectionID      string    `db:"section_id" json:"section_id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ExamResult is one student's score for an exam; (exam_id, student_id) is
// the natural key and score is bounded by the exam's max_score.
type ExamResult struct {
	ID        string    `db:"id" json:"id"`
	ExamID    string    `db:"exam_id" json:"exam_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Score     float64   `db:"score" json:"score"`
	Feedback  *string   `db:"feedback" json:"feedback,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ExamResultDetail joins the student name for result sheets.
type ExamResultDetail struct {
	ExamResult
	StudentName string `db:"student_name" json:"student_name"`
}
