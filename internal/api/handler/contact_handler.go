package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/service"
	"github.com/akhan280/doy-backend/pkg/response"
)

// ContactHandler 联系人模块 HTTP 处理器
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler 创建 ContactHandler
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// CreateContact 新增联系人
// POST /api/v1/users/:id/contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	contact, err := h.contactSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 20001, "用户不存在")
		case errors.Is(err, service.ErrInvalidBirthday):
			response.BadRequest(c, 30001, "生日格式非法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, contact)
}

// ListContacts 联系人列表
// GET /api/v1/users/:id/contacts
func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	contacts, err := h.contactSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, contacts)
}

// UpdateContact 更新联系人
// PUT /api/v1/users/:id/contacts/:contactID
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	contactID, ok := mustGetContactID(c)
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	contact, err := h.contactSvc.Update(c.Request.Context(), userID, contactID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactNotFound):
			response.NotFound(c, 30002, "联系人不存在")
		case errors.Is(err, service.ErrInvalidBirthday):
			response.BadRequest(c, 30001, "生日格式非法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, contact)
}

// DeleteContact 删除联系人
// DELETE /api/v1/users/:id/contacts/:contactID
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	contactID, ok := mustGetContactID(c)
	if !ok {
		return
	}

	if err := h.contactSvc.Delete(c.Request.Context(), userID, contactID); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			response.NotFound(c, 30002, "联系人不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ImportContacts 从 iCalendar 文件批量导入生日
// POST /api/v1/users/:id/contacts/import
func (h *ContactHandler) ImportContacts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ImportContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.contactSvc.ImportICS(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 20001, "用户不存在")
		case errors.Is(err, service.ErrImportNoSource):
			response.BadRequest(c, 30003, "需提供日历 URL 或文件内容")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// mustGetContactID 从路径参数中提取联系人 ID
func mustGetContactID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("contactID"))
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "联系人 ID 格式非法")
		return 0, false
	}
	return id, true
}
