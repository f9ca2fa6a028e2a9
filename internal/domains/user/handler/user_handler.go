package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type UserHandler struct {
	service service.ServiceInterface
}

func NewUserHandler(svc service.ServiceInterface) *UserHandler {
	return &UserHandler{service: svc}
}

// Register - POST /v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusCreated, user.ToResponse())
}

// ResendActivation - POST /v1/auth/resend-activation
func (h *UserHandler) ResendActivation(c *gin.Context) {
	var req model.ResendOTPRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ResendActivation(c.Request.Context(), &req); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

// VerifyActivation - POST /v1/auth/verify-activation
func (h *UserHandler) VerifyActivation(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.VerifyActivation(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// Login - POST /v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Refresh - POST /v1/auth/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Logout - POST /v1/auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.Logout(c.Request.Context(), &req); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// ForgotPassword - POST /v1/auth/forgot-password
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req model.ResendOTPRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

// ResetPassword - POST /v1/auth/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// SendPhoneVerification - POST /v1/users/me/phone/send-code
func (h *UserHandler) SendPhoneVerification(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.service.SendPhoneVerification(c.Request.Context(), actor); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

// VerifyPhone - POST /v1/users/me/phone/verify
func (h *UserHandler) VerifyPhone(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.VerifyPhoneRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.VerifyPhone(c.Request.Context(), actor, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// Me - GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// GetByID - GET /v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// List - GET /v1/users (staff)
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var filter model.UserFilter
	if err := c.BindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	users, total, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	resp := make([]*model.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, users[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, resp, &response.Meta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  int(total),
	})
}

// UpdateRole - PATCH /v1/users/:id/role (admin)
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.UpdateRoleRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.UpdateRole(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// UpdateBorrowLimit - PATCH /v1/users/:id/borrow-limit (staff)
func (h *UserHandler) UpdateBorrowLimit(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.UpdateBorrowLimitRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.UpdateBorrowLimit(c.Request.Context(), actor, id, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), model.ToErrorCode(err), err.Error())
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}
