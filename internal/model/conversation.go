package model

import "time"

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation 会话表 — 对应 conversations（每个用户一个打开的会话）
type Conversation struct {
	ConversationID int       `gorm:"primaryKey;autoIncrement" json:"conversation_id"`
	UserID         string    `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	User     *User     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []Message `gorm:"foreignKey:ConversationID;references:ConversationID" json:"messages,omitempty"`
}

// TableName 指定表名
func (Conversation) TableName() string { return "conversations" }

// Message 消息表 — 对应 messages
// FunctionCalled/FunctionResult 仅在助手消息触发工具调用时填写，
// CreatedAt 用于历史排序与上下文窗口截断
type Message struct {
	MessageID      int       `gorm:"primaryKey;autoIncrement"           json:"message_id"`
	ConversationID int       `gorm:"not null;index"                     json:"conversation_id"`
	Role           string    `gorm:"type:varchar(16);not null"          json:"role"`
	Content        string    `gorm:"type:text;not null"                 json:"content"`
	IsUserMessage  bool      `gorm:"not null;default:false"             json:"is_user_message"`
	FunctionCalled *string   `gorm:"type:varchar(64)"                   json:"function_called,omitempty"`
	FunctionResult *string   `gorm:"type:text"                          json:"function_result,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Conversation *Conversation `gorm:"foreignKey:ConversationID;references:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }
