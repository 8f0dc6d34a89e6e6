package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
)

// ConversationRepository 会话与消息历史数据访问接口
type ConversationRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Conversation, error)
	Create(ctx context.Context, conv *model.Conversation) error
	// LastToolCallMessage 返回该用户最近一条记录了工具调用的消息
	LastToolCallMessage(ctx context.Context, userID string) (*model.Message, error)
	// ListMessagesSince 按创建时间倒序返回自 since 起（含该时刻）的消息；since 为 nil 时不过滤
	ListMessagesSince(ctx context.Context, conversationID int, since *time.Time) ([]model.Message, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	UpdateMessage(ctx context.Context, msg *model.Message) error
}

// conversationRepo ConversationRepository 的 GORM 实现
type conversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo 创建 ConversationRepository 实例
func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) GetByUserID(ctx context.Context, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *conversationRepo) LastToolCallMessage(ctx context.Context, userID string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN conversations ON conversations.conversation_id = messages.conversation_id").
		Where("conversations.user_id = ? AND messages.function_called IS NOT NULL", userID).
		Order("messages.created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *conversationRepo) ListMessagesSince(ctx context.Context, conversationID int, since *time.Time) ([]model.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	var messages []model.Message
	err := q.Order("created_at DESC, message_id DESC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *conversationRepo) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *conversationRepo) UpdateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}
