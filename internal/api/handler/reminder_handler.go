package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/akhan280/doy-backend/internal/service"
	"github.com/akhan280/doy-backend/pkg/response"
)

// ReminderHandler 提醒批次 HTTP 处理器
type ReminderHandler struct {
	reminderSvc service.ReminderService
}

// NewReminderHandler 创建 ReminderHandler
func NewReminderHandler(reminderSvc service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderSvc: reminderSvc}
}

// Trigger 手动触发一次提醒批次（运维排障用，与定时调度走同一路径）
// POST /api/v1/reminders/trigger
func (h *ReminderHandler) Trigger(c *gin.Context) {
	stats, err := h.reminderSvc.ProcessBirthdayMessages(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}
