package handler

import "github.com/akhan280/doy-backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	User     *UserHandler
	Contact  *ContactHandler
	Agent    *AgentHandler
	Reminder *ReminderHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		User:     NewUserHandler(svc.User, svc.Preference),
		Contact:  NewContactHandler(svc.Contact),
		Agent:    NewAgentHandler(svc.Agent),
		Reminder: NewReminderHandler(svc.Reminder),
	}
}
