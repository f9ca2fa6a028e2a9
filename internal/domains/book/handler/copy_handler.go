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

type CopyHandler struct {
	service service.ServiceInterface
}

func NewCopyHandler(svc service.ServiceInterface) *CopyHandler {
	return &CopyHandler{service: svc}
}

// Create - POST /v1/books/:id/copies
func (h *CopyHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateCopyRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.BookID = c.Param("id")

	copy, err := h.service.AddCopy(c.Request.Context(), actor, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusCreated, copy)
}

// GetByID - GET /v1/copies/:id
func (h *CopyHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid copy id")
		return
	}

	copy, err := h.service.GetCopy(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, copy)
}

// ListByBook - GET /v1/books/:id/copies
func (h *CopyHandler) ListByBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	copies, err := h.service.ListCopies(c.Request.Context(), bookID)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, copies)
}

// UpdateStatus - PATCH /v1/copies/:id
func (h *CopyHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid copy id")
		return
	}

	var req model.UpdateCopyStatusRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	copy, err := h.service.UpdateCopyStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, copy)
}

// Delete - DELETE /v1/copies/:id
func (h *CopyHandler) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid copy id")
		return
	}

	if err := h.service.DeleteCopy(c.Request.Context(), actor, id); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
