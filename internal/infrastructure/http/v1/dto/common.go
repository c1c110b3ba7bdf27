// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps a domain page with fn.
func NewListResponse[E, T any](res domain.ListResult[E], fn func(E) T) ListResponse[T] {
	items := make([]T, len(res.Items))
	for i, item := range res.Items {
		items[i] = fn(item)
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// --- Common Filters ---

// PageQuery contains pagination and ordering parameters.
type PageQuery struct {
	Search         string `form:"search"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
	OrderBy        string `form:"orderBy"`
	IncludeDeleted bool   `form:"includeDeleted"`
}

// ToFilter converts query parameters to a domain filter.
func (q PageQuery) ToFilter() domain.ListFilter {
	f := domain.ListFilter{
		Search:         q.Search,
		Limit:          q.Limit,
		Offset:         q.Offset,
		OrderBy:        q.OrderBy,
		IncludeDeleted: q.IncludeDeleted,
	}
	f.Normalize()
	return f
}

// --- Base DTOs ---

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID           string     `json:"id"`
	DeletionMark bool       `json:"deletionMark"`
	Version      int        `json:"version"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
}

// FromBaseCatalog creates BaseResponse from entity.BaseCatalog.
func FromBaseCatalog(b entity.BaseCatalog) BaseResponse {
	return BaseResponse{
		ID:           b.ID.String(),
		DeletionMark: b.DeletionMark,
		Version:      b.Version,
	}
}

// FromBaseDocument creates BaseResponse from entity.BaseDocument.
func FromBaseDocument(b entity.BaseDocument) BaseResponse {
	created, updated := b.CreatedAt, b.UpdatedAt
	return BaseResponse{
		ID:           b.ID.String(),
		DeletionMark: b.DeletionMark,
		Version:      b.Version,
		CreatedAt:    &created,
		UpdatedAt:    &updated,
		CreatedBy:    b.CreatedBy,
		UpdatedBy:    b.UpdatedBy,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParseOptionalID parses a nullable id string. Empty means nil.
func ParseOptionalID(s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := id.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
