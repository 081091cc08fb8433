package dto

import "github.com/spec-kit/enquiry-service/internal/domain"

// PerformerResponse is one top-performers row.
type PerformerResponse struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	ClosedCount int         `json:"closedCount"`
}

// TopPerformersResponse is the analytics envelope.
type TopPerformersResponse struct {
	Success bool                `json:"success"`
	Data    []PerformerResponse `json:"data"`
}
