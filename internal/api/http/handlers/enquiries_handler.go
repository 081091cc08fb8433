package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enquiry-service/internal/api/dto"
	"github.com/spec-kit/enquiry-service/internal/auth"
	"github.com/spec-kit/enquiry-service/internal/service"
	apperrors "github.com/spec-kit/enquiry-service/pkg/util"
)

// EnquiriesHandler manages enquiry endpoints.
type EnquiriesHandler struct {
	service *service.EnquiryService
}

// NewEnquiriesHandler constructs handler.
func NewEnquiriesHandler(enquiryService *service.EnquiryService) *EnquiriesHandler {
	return &EnquiriesHandler{service: enquiryService}
}

// Create handles POST /enquiries.
func (h *EnquiriesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.EnquiryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	enquiry, err := h.service.Create(c.Context(), principal.User, service.EnquiryCreateInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewEnquiryResponse(enquiry))
}

// List handles GET /enquiries.
func (h *EnquiriesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	result, err := h.service.List(c.Context(), principal.User, service.EnquiryListInput{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assignedTo"),
		Search:     c.Query("search"),
		Page:       parseIntQuery(c, "page", 1),
		Limit:      parseIntQuery(c, "limit", 10),
	})
	if err != nil {
		return err
	}

	items := make([]dto.EnquiryResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, dto.NewEnquiryResponse(&result.Items[i]))
	}
	return c.JSON(dto.EnquiryListResponse{
		Success: true,
		Total:   result.Total,
		Page:    result.Page,
		Limit:   result.Limit,
		Data:    items,
	})
}

// GetByID handles GET /enquiries/:id.
func (h *EnquiriesHandler) GetByID(c *fiber.Ctx) error {
	enquiry, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEnquiryResponse(enquiry))
}

// Update handles PUT /enquiries/:id.
func (h *EnquiriesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.EnquiryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	enquiry, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.EnquiryUpdateInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		Status:       req.Status,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEnquiryResponse(enquiry))
}

// Delete handles DELETE /enquiries/:id.
func (h *EnquiriesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.SoftDelete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
