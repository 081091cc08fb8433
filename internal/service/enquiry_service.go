package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/enquiry-service/internal/domain"
	"github.com/spec-kit/enquiry-service/internal/events"
	"github.com/spec-kit/enquiry-service/internal/repository"
	apperrors "github.com/spec-kit/enquiry-service/pkg/util"
)

// EnquiryService coordinates enquiry workflows and owns the role-based
// field-update policy.
type EnquiryService struct {
	enquiries  repository.EnquiryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewEnquiryService constructs the service.
func NewEnquiryService(enquiries repository.EnquiryRepository, users repository.UserRepository, dispatcher events.Dispatcher) *EnquiryService {
	return &EnquiryService{enquiries: enquiries, users: users, dispatcher: dispatcher}
}

// EnquiryCreateInput describes enquiry creation payload.
type EnquiryCreateInput struct {
	CustomerName string
	Email        *string
	Phone        *string
	Message      *string
	AssignedTo   *string
}

// EnquiryListInput describes listing parameters as received from the caller.
type EnquiryListInput struct {
	Status     string
	AssignedTo string
	Search     string
	Page       int
	Limit      int
}

// EnquiryListResult bundles a page of enquiries with the total match count
// and the resolved pagination values.
type EnquiryListResult struct {
	Items []domain.Enquiry
	Total int
	Page  int
	Limit int
}

// EnquiryUpdateInput carries the submitted update fields. Nil means the
// field was not submitted.
type EnquiryUpdateInput struct {
	CustomerName *string
	Email        *string
	Phone        *string
	Message      *string
	Status       *string
	AssignedTo   *string
}

// allowedFields returns the update field names a role may change. Staff may
// only move an enquiry through its status lifecycle; admins may change
// everything. Submitted fields outside the set are dropped, not rejected.
func allowedFields(role domain.Role) map[string]struct{} {
	if role == domain.RoleAdmin {
		return map[string]struct{}{
			"customerName": {},
			"email":        {},
			"phone":        {},
			"message":      {},
			"status":       {},
			"assignedTo":   {},
		}
	}
	return map[string]struct{}{"status": {}}
}

// Create stores a new enquiry. Any authenticated caller may create one.
func (s *EnquiryService) Create(ctx context.Context, actor *domain.User, input EnquiryCreateInput) (*domain.Enquiry, error) {
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, apperrors.NewValidationError("customerName required")
	}

	assignedTo, err := s.resolveAssignee(ctx, input.AssignedTo)
	if err != nil {
		return nil, err
	}

	enquiry := &domain.Enquiry{
		CustomerName: customerName,
		Email:        input.Email,
		Phone:        input.Phone,
		Message:      input.Message,
		Status:       domain.EnquiryStatusNew,
		AssignedTo:   assignedTo,
	}
	if err := s.enquiries.Create(ctx, enquiry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventEnquiryCreated,
		EnquiryID: enquiry.ID,
		ActorID:   actor.ID,
		Payload: events.EnquiryCreatedPayload{
			CustomerName: enquiry.CustomerName,
			AssignedTo:   enquiry.AssignedTo,
		},
	})

	created, err := s.enquiries.GetByID(ctx, enquiry.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns a filtered, paginated page of non-deleted enquiries. Staff
// callers are always scoped to their own assignments, whatever filter they
// requested.
func (s *EnquiryService) List(ctx context.Context, requester *domain.User, input EnquiryListInput) (*EnquiryListResult, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	filter := repository.EnquiryFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if input.Status != "" && !strings.EqualFold(input.Status, "All") {
		status := domain.EnquiryStatus(input.Status)
		filter.Status = &status
	}
	if input.AssignedTo != "" {
		assignedTo := input.AssignedTo
		filter.AssignedTo = &assignedTo
	}
	if input.Search != "" {
		search := input.Search
		filter.SearchTerm = &search
	}
	if requester.Role == domain.RoleStaff {
		self := requester.ID
		filter.AssignedTo = &self
	}

	items, err := s.enquiries.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.enquiries.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &EnquiryListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID fetches a single non-deleted enquiry.
func (s *EnquiryService) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	enquiry, err := s.enquiries.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("enquiry")
		}
		return nil, err
	}
	return enquiry, nil
}

// Update applies the role-filtered field update policy and returns the
// updated record.
func (s *EnquiryService) Update(ctx context.Context, requester *domain.User, id string, input EnquiryUpdateInput) (*domain.Enquiry, error) {
	enquiry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester.Role == domain.RoleStaff {
		if enquiry.AssignedTo == nil || *enquiry.AssignedTo != requester.ID {
			return nil, apperrors.NewForbidden("not allowed")
		}
	}

	fields, err := s.buildUpdateSet(ctx, requester.Role, input)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("no valid fields")
	}

	if err := s.enquiries.UpdateFields(ctx, id, fields); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("enquiry")
		}
		return nil, err
	}

	updated, err := s.enquiries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if newStatus, ok := fields["status"]; ok && newStatus != any(enquiry.Status) {
		s.publish(ctx, events.Event{
			Type:      events.EventEnquiryStatusChanged,
			EnquiryID: id,
			ActorID:   requester.ID,
			Payload: events.EnquiryStatusChangedPayload{
				OldStatus: enquiry.Status,
				NewStatus: updated.Status,
			},
		})
	}
	if _, ok := fields["assignedTo"]; ok {
		s.publish(ctx, events.Event{
			Type:      events.EventEnquiryAssigned,
			EnquiryID: id,
			ActorID:   requester.ID,
			Payload: events.EnquiryAssignedPayload{
				OldAssignee: enquiry.AssignedTo,
				NewAssignee: updated.AssignedTo,
			},
		})
	}

	return updated, nil
}

// SoftDelete flags the enquiry as deleted. Admin only; a repeated delete on
// the same id is a not-found.
func (s *EnquiryService) SoftDelete(ctx context.Context, requester *domain.User, id string) error {
	if requester.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admin can delete")
	}

	if err := s.enquiries.SoftDelete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("enquiry")
		}
		return err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventEnquiryDeleted,
		EnquiryID: id,
		ActorID:   requester.ID,
	})
	return nil
}

// buildUpdateSet filters submitted fields through the role policy, then
// validates the surviving values. Disallowed fields are dropped before
// validation so a staff caller's extra fields cannot fail the request.
func (s *EnquiryService) buildUpdateSet(ctx context.Context, role domain.Role, input EnquiryUpdateInput) (map[string]any, error) {
	allowed := allowedFields(role)
	fields := map[string]any{}

	if _, ok := allowed["customerName"]; ok && input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, apperrors.NewValidationError("customerName cannot be empty")
		}
		fields["customerName"] = name
	}
	if _, ok := allowed["email"]; ok && input.Email != nil {
		fields["email"] = input.Email
	}
	if _, ok := allowed["phone"]; ok && input.Phone != nil {
		fields["phone"] = input.Phone
	}
	if _, ok := allowed["message"]; ok && input.Message != nil {
		fields["message"] = input.Message
	}
	if _, ok := allowed["status"]; ok && input.Status != nil {
		status := domain.EnquiryStatus(*input.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status")
		}
		fields["status"] = status
	}
	if _, ok := allowed["assignedTo"]; ok && input.AssignedTo != nil {
		assignedTo, err := s.resolveAssignee(ctx, input.AssignedTo)
		if err != nil {
			return nil, err
		}
		fields["assignedTo"] = assignedTo
	}
	return fields, nil
}

// resolveAssignee validates a submitted assignee reference. An empty string
// unassigns; a non-empty value must name an existing user.
func (s *EnquiryService) resolveAssignee(ctx context.Context, assignedTo *string) (*string, error) {
	if assignedTo == nil || strings.TrimSpace(*assignedTo) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*assignedTo)
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewValidationError("assigned user not found")
		}
		return nil, err
	}
	return &id, nil
}

func (s *EnquiryService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
