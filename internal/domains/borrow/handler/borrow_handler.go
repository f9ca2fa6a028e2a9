package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/borrow/model"
	"library-backend/internal/domains/borrow/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type BorrowHandler struct {
	service service.ServiceInterface
}

func NewBorrowHandler(svc service.ServiceInterface) *BorrowHandler {
	return &BorrowHandler{service: svc}
}

// Borrow - POST /v1/borrows
func (h *BorrowHandler) Borrow(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.BorrowRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	record, err := h.service.Borrow(c.Request.Context(), actor, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusCreated, record.ToResponse(time.Now()))
}

// Return - POST /v1/borrows/:id/return
func (h *BorrowHandler) Return(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid borrow record id")
		return
	}

	record, err := h.service.Return(c.Request.Context(), actor, id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, record.ToResponse(time.Now()))
}

// MarkFeePaid - POST /v1/borrows/:id/fee-paid
func (h *BorrowHandler) MarkFeePaid(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid borrow record id")
		return
	}

	record, err := h.service.MarkFeePaid(c.Request.Context(), actor, id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, record.ToResponse(time.Now()))
}

// GetByID - GET /v1/borrows/:id
func (h *BorrowHandler) GetByID(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid borrow record id")
		return
	}

	record, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, record.ToResponse(time.Now()))
}

// ListMine - GET /v1/borrows/me
func (h *BorrowHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var filter model.RecordFilter
	if err := c.BindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	records, total, err := h.service.ListMine(c.Request.Context(), actor, &filter)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, toResponses(records), &response.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  int(total),
	})
}

// List - GET /v1/borrows (staff)
func (h *BorrowHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var filter model.RecordFilter
	if err := c.BindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	records, total, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, toResponses(records), &response.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  int(total),
	})
}

// ListOverdue - GET /v1/borrows/overdue (staff)
func (h *BorrowHandler) ListOverdue(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	records, err := h.service.ListOverdue(c.Request.Context(), actor)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, toResponses(records))
}

func toResponses(records []model.BorrowRecord) []*model.BorrowRecordResponse {
	now := time.Now()
	resp := make([]*model.BorrowRecordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, records[i].ToResponse(now))
	}
	return resp
}
