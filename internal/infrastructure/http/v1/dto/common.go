// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"dice/internal/domain/filter"
)

// MaxPageSize bounds pageSize.
const MaxPageSize = 500

// MaxPage bounds page so that Offset cannot overflow.
const MaxPage = 1_000_000

// --- Pagination ---

// PaginationRequest contains pagination parameters.
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1,max=1000000"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=500"`
}

// Defaults sets default pagination values.
func (p *PaginationRequest) Defaults(pageSize int) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = pageSize
	}
}

// Offset calculates the item offset of the page.
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginationResponse contains pagination metadata.
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginationResponse creates pagination response.
func NewPaginationResponse(page, pageSize int, totalItems int64) PaginationResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalItems) / pageSize
		if int(totalItems)%pageSize > 0 {
			totalPages++
		}
	}
	return PaginationResponse{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// --- List Response ---

// DiagnosticResponse describes a record left out because of bad data.
type DiagnosticResponse struct {
	RecordID string `json:"recordId"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// FromDiagnostics converts engine diagnostics.
func FromDiagnostics(diags []filter.Diagnostic) []DiagnosticResponse {
	out := make([]DiagnosticResponse, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticResponse{
			RecordID: d.RecordID,
			Field:    d.Field,
			Message:  d.Message(),
		})
	}
	return out
}

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Data        []T                  `json:"data"`
	Pagination  PaginationResponse   `json:"pagination"`
	Diagnostics []DiagnosticResponse `json:"diagnostics"`
}

// DataResponse wraps a non-paginated payload.
type DataResponse[T any] struct {
	Data T `json:"data"`
}
