package models

import "time"

// IncidentStatus enumerates the incident lifecycle. The UI walks it forward
// only (reported → under_investigation → resolved/closed); the store accepts
// any valid status so mis-filed incidents can be corrected.
type IncidentStatus string

const (
	IncidentReported           IncidentStatus = "reported"
	IncidentUnderInvestigation IncidentStatus = "under_investigation"
	IncidentResolved           IncidentStatus = "resolved"
	IncidentClosed             IncidentStatus = "closed"
)

// Valid returns true when the status is a supported value.
func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentReported, IncidentUnderInvestigation, IncidentResolved, IncidentClosed:
		return true
	default:
		return false
	}
}

// Incident records a disciplinary or safety event. Investigation notes are
// meaningful from under_investigation on; resolution fields from
// resolved/closed on.
type Incident struct {
	ID                 string         `db:"id" json:"id"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description"`
	Date               time.Time      `db:"date" json:"date"`
	Status             IncidentStatus `db:"status" json:"status"`
	InvestigationNotes *string        `db:"investigation_notes" json:"investigation_notes,omitempty"`
	ResolutionDetails  *string        `db:"resolution_details" json:"resolution_details,omitempty"`
	ResolutionDate     *time.Time     `db:"resolution_date" json:"resolution_date,omitempty"`
	ReportedBy         string         `db:"reported_by" json:"reported_by"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// IncidentPerson is one (user, role) pair involved in an incident; the set
// is owned by the incident and replaced wholesale on update.
type IncidentPerson struct {
	ID         string    `db:"id" json:"id"`
	IncidentID string    `db:"incident_id" json:"incident_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IncidentDetail bundles the incident with its involved persons.
type IncidentDetail struct {
	Incident
	InvolvedPersons []IncidentPerson `json:"involved_persons"`
}

// IncidentFilter captures listing criteria.
type IncidentFilter struct {
	Status   *IncidentStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
