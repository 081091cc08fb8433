package domain

import "time"

// EnquiryStatus enumerates lifecycle states for enquiries.
type EnquiryStatus string

const (
	EnquiryStatusNew        EnquiryStatus = "new"
	EnquiryStatusInProgress EnquiryStatus = "in_progress"
	EnquiryStatusClosed     EnquiryStatus = "closed"
)

// Valid reports whether the status is a known value.
func (s EnquiryStatus) Valid() bool {
	return s == EnquiryStatusNew || s == EnquiryStatusInProgress || s == EnquiryStatusClosed
}

// Assignee is the public projection of the staff member an enquiry is
// assigned to, resolved at read time.
type Assignee struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Enquiry is the aggregate for customer contact records.
type Enquiry struct {
	ID           string
	CustomerName string
	Email        *string
	Phone        *string
	Message      *string
	Status       EnquiryStatus
	AssignedTo   *string
	Assignee     *Assignee
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PerformerStat is one row of the top-performers aggregate: a staff member
// and how many enquiries they closed inside the window.
type PerformerStat struct {
	UserID      string
	Name        string
	Email       string
	Role        Role
	ClosedCount int
}
