package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/service"
	"github.com/akhan280/doy-backend/pkg/response"
)

// AgentHandler 对话代理 HTTP 处理器
type AgentHandler struct {
	agentSvc service.AgentService
}

// NewAgentHandler 创建 AgentHandler
func NewAgentHandler(agentSvc service.AgentService) *AgentHandler {
	return &AgentHandler{agentSvc: agentSvc}
}

// HandleMessage 处理一条用户自然语言消息
// POST /api/v1/agent
func (h *AgentHandler) HandleMessage(c *gin.Context) {
	var req dto.AgentMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reply, err := h.agentSvc.ProcessUserMessage(c.Request.Context(), req.Query, req.UserID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.AgentMessageResponse{Reply: reply})
}
