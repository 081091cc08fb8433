package events

import (
	"time"

	"github.com/spec-kit/enquiry-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEnquiryCreated       EventType = "enquiry_created"
	EventEnquiryStatusChanged EventType = "enquiry_status_changed"
	EventEnquiryAssigned      EventType = "enquiry_assigned"
	EventEnquiryDeleted       EventType = "enquiry_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EnquiryID string      `json:"enquiry_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EnquiryCreatedPayload payload.
type EnquiryCreatedPayload struct {
	CustomerName string  `json:"customer_name"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
}

// EnquiryStatusChangedPayload payload.
type EnquiryStatusChangedPayload struct {
	OldStatus domain.EnquiryStatus `json:"old_status"`
	NewStatus domain.EnquiryStatus `json:"new_status"`
}

// EnquiryAssignedPayload payload.
type EnquiryAssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}
