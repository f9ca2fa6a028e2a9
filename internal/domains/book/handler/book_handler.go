package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type BookHandler struct {
	service service.ServiceInterface
}

func NewBookHandler(svc service.ServiceInterface) *BookHandler {
	return &BookHandler{service: svc}
}

// Create - POST /v1/books
func (h *BookHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateBookRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	b, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusCreated, b.ToResponse())
}

// GetByID - GET /v1/books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, b.ToResponse())
}

// List - GET /v1/books
func (h *BookHandler) List(c *gin.Context) {
	var filter model.BookFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}

	books, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	resp := make([]*model.BookResponse, 0, len(books))
	for i := range books {
		resp = append(resp, books[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, resp, &response.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  total,
	})
}

// Update - PUT /v1/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	var req model.UpdateBookRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	b, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, b.ToResponse())
}

// Delete - DELETE /v1/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AvailableCopies - GET /v1/books/:id/available_copies
func (h *BookHandler) AvailableCopies(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	available, err := h.service.AvailableCopies(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"available_copies": available})
}
