package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/service"
	"github.com/akhan280/doy-backend/pkg/response"
)

// UserHandler 用户与提醒偏好模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
	prefSvc service.PreferenceService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, prefSvc service.PreferenceService) *UserHandler {
	return &UserHandler{userSvc: userSvc, prefSvc: prefSvc}
}

// GetUser 获取用户信息
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 20001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// UpdateUser 更新用户资料（姓名 / 时区 / 订阅状态）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 20001, "用户不存在")
		case errors.Is(err, service.ErrInvalidTimeZone):
			response.BadRequest(c, 20002, "时区标识非法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, user)
}

// GetPreferences 获取提醒节奏
// GET /api/v1/users/:id/preferences
func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	prefs, err := h.prefSvc.Get(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, prefs)
}

// UpdatePreferences 重设提醒节奏（全量覆盖五个档位）
// PUT /api/v1/users/:id/preferences
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	prefs, err := h.prefSvc.Update(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 20001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, prefs)
}
