package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/audit"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/infrastructure/http/v1/dto"
)

// DocumentService is implemented by the purchase order and invoice services.
type DocumentService[T any] interface {
	GetByID(ctx context.Context, docID id.ID) (T, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error)
	Create(ctx context.Context, doc T) error
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, docID id.ID) error
	Transition(ctx context.Context, req lifecycle.Request) (T, error)
	History(ctx context.Context, docID id.ID) ([]audit.StatusHistoryEntry, error)
}

// DocumentHandler provides generic HTTP handlers for document entities.
type DocumentHandler[T any, CreateDTO any, UpdateDTO any, Resp any] struct {
	*BaseHandler
	service DocumentService[T]
	machine *lifecycle.Machine

	// Mapper functions
	mapCreateDTO func(dto *CreateDTO) (T, error)
	mapUpdateDTO func(dto *UpdateDTO, existing T) error
	mapToDTO     func(doc T, machine *lifecycle.Machine) Resp
}

// DocumentHandlerConfig configures the document handler.
type DocumentHandlerConfig[T any, CreateDTO any, UpdateDTO any, Resp any] struct {
	Service      DocumentService[T]
	Machine      *lifecycle.Machine
	MapCreateDTO func(dto *CreateDTO) (T, error)
	MapUpdateDTO func(dto *UpdateDTO, existing T) error
	MapToDTO     func(doc T, machine *lifecycle.Machine) Resp
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler[T any, CreateDTO any, UpdateDTO any, Resp any](
	base *BaseHandler,
	cfg DocumentHandlerConfig[T, CreateDTO, UpdateDTO, Resp],
) *DocumentHandler[T, CreateDTO, UpdateDTO, Resp] {
	return &DocumentHandler[T, CreateDTO, UpdateDTO, Resp]{
		BaseHandler:  base,
		service:      cfg.Service,
		machine:      cfg.Machine,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) toDTO(doc T) Resp {
	return h.mapToDTO(doc, h.machine)
}

// List handles GET /{kind}
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) List(c *gin.Context) {
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter(h.machine)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, h.toDTO))
}

// Get handles GET /{kind}/:id
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) Get(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.toDTO(doc))
}

// Create handles POST /{kind}
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}
	doc, err := h.mapCreateDTO(&req)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.toDTO(doc))
}

// Update handles PUT /{kind}/:id
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) Update(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.mapUpdateDTO(&req, doc); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.toDTO(doc))
}

// Delete handles DELETE /{kind}/:id
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) Delete(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Transition handles POST /{kind}/:id/transition
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) Transition(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Transition(c.Request.Context(), req.ToRequest(docID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.toDTO(doc))
}

// History handles GET /{kind}/:id/history
func (h *DocumentHandler[T, CreateDTO, UpdateDTO, Resp]) History(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromHistory(entries)})
}
