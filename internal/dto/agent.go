package dto

// ── 会话代理模块 ──

// AgentMessageRequest 自然语言请求
type AgentMessageRequest struct {
	Query  string `json:"query"  binding:"required"`
	UserID string `json:"userId" binding:"required,uuid"`
}

// AgentMessageResponse 代理回复（自由文本或序列化的工具执行结果）
type AgentMessageResponse struct {
	Reply string `json:"reply"`
}
