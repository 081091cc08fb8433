package dto

import (
	"time"

	"github.com/spec-kit/enquiry-service/internal/domain"
)

// EnquiryCreateRequest payload for enquiry creation.
type EnquiryCreateRequest struct {
	CustomerName string  `json:"customerName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Message      *string `json:"message"`
	AssignedTo   *string `json:"assignedTo"`
}

// EnquiryUpdateRequest payload for enquiry updates. Absent fields stay nil;
// the service decides which survive the role policy.
type EnquiryUpdateRequest struct {
	CustomerName *string `json:"customerName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Message      *string `json:"message"`
	Status       *string `json:"status"`
	AssignedTo   *string `json:"assignedTo"`
}

// AssigneeResponse is the resolved staff projection embedded in enquiry
// responses.
type AssigneeResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// EnquiryResponse is the wire shape of an enquiry.
type EnquiryResponse struct {
	ID           string               `json:"id"`
	CustomerName string               `json:"customerName"`
	Email        *string              `json:"email,omitempty"`
	Phone        *string              `json:"phone,omitempty"`
	Message      *string              `json:"message,omitempty"`
	Status       domain.EnquiryStatus `json:"status"`
	AssignedTo   *AssigneeResponse    `json:"assignedTo"`
	Deleted      bool                 `json:"deleted"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// EnquiryListResponse is the paginated listing envelope.
type EnquiryListResponse struct {
	Success bool              `json:"success"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Data    []EnquiryResponse `json:"data"`
}

// NewEnquiryResponse maps a domain enquiry to its wire shape.
func NewEnquiryResponse(enquiry *domain.Enquiry) EnquiryResponse {
	resp := EnquiryResponse{
		ID:           enquiry.ID,
		CustomerName: enquiry.CustomerName,
		Email:        enquiry.Email,
		Phone:        enquiry.Phone,
		Message:      enquiry.Message,
		Status:       enquiry.Status,
		Deleted:      enquiry.Deleted,
		CreatedAt:    enquiry.CreatedAt,
		UpdatedAt:    enquiry.UpdatedAt,
	}
	if enquiry.Assignee != nil {
		resp.AssignedTo = &AssigneeResponse{
			ID:    enquiry.Assignee.ID,
			Name:  enquiry.Assignee.Name,
			Email: enquiry.Assignee.Email,
			Role:  enquiry.Assignee.Role,
		}
	}
	return resp
}
