package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/domains/author/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{service: svc}
}

// Create - POST /v1/authors
func (h *AuthorHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateAuthorRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusCreated, a.ToResponse())
}

// GetByID - GET /v1/authors/:id
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, a.ToResponse())
}

// List - GET /v1/authors?search=&limit=&offset=
func (h *AuthorHandler) List(c *gin.Context) {
	filter := model.AuthorFilter{
		Search: c.Query("search"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	authors, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	resp := make([]*model.AuthorResponse, 0, len(authors))
	for i := range authors {
		resp = append(resp, authors[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, resp, &response.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  total,
	})
}

// Update - PUT /v1/authors/:id
func (h *AuthorHandler) Update(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	var req model.UpdateAuthorRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, a.ToResponse())
}

// Delete - DELETE /v1/authors/:id
func (h *AuthorHandler) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
