package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
	"github.com/akhan280/doy-backend/internal/repository"
)

// maxContextMessages 上下文窗口最多携带的历史消息条数（不含本轮用户消息）
const maxContextMessages = 3

// AgentService 会话代理业务接口
type AgentService interface {
	// ProcessUserMessage 处理一条自然语言消息，返回自由文本回复或序列化的工具结果
	ProcessUserMessage(ctx context.Context, query, userID string) (string, error)
}

type agentService struct {
	repo     *repository.Repository
	chat     ChatClient
	tools    []openai.Tool
	handlers map[string]toolHandler
	logger   *zap.Logger
}

// NewAgentService 创建 AgentService 实例
// 启动期校验工具目录与调度表一致，脱节直接 panic
func NewAgentService(repo *repository.Repository, chat ChatClient, logger *zap.Logger) AgentService {
	s := &agentService{
		repo:   repo,
		chat:   chat,
		tools:  buildTools(),
		logger: logger,
	}
	s.handlers = s.buildToolHandlers()
	assertToolRegistry(s.handlers)
	return s
}

// ────────────────────── ProcessUserMessage ──────────────────────

func (s *agentService) ProcessUserMessage(ctx context.Context, query, userID string) (string, error) {
	// 1. 定位最近一次工具调用，自该条消息起的历史才进入上下文
	cutover, err := s.findCutover(ctx, userID)
	if err != nil {
		return "", err
	}

	// 2. 加载（或创建）用户会话及候选历史
	conv, history, err := s.loadConversation(ctx, userID, cutover)
	if err != nil {
		return "", err
	}

	// 3. 构造严格交替的上下文窗口
	window := buildContextWindow(history)

	window = append(window, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	// 4. 持久化本轮用户消息
	userMsg := &model.Message{
		ConversationID: conv.ConversationID,
		Role:           model.RoleUser,
		Content:        query,
		IsUserMessage:  true,
	}
	if err := s.repo.Conversation.CreateMessage(ctx, userMsg); err != nil {
		return "", err
	}

	// 5. 调用模型
	messages := make([]openai.ChatCompletionMessage, 0, len(window)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, window...)

	choice, err := s.chat.Chat(ctx, messages, s.tools)
	if err != nil {
		return "", err
	}
	s.logger.Debug("模型停止原因", zap.String("finish_reason", string(choice.FinishReason)))

	// 6. 持久化助手回复；工具调用时内容为序列化的调用对象
	isToolCall := choice.FinishReason == openai.FinishReasonToolCalls && len(choice.Message.ToolCalls) > 0

	assistantContent := choice.Message.Content
	if isToolCall {
		raw, err := json.Marshal(choice.Message.ToolCalls)
		if err != nil {
			return "", fmt.Errorf("序列化工具调用失败: %w", err)
		}
		assistantContent = string(raw)
	}

	assistantMsg := &model.Message{
		ConversationID: conv.ConversationID,
		Role:           model.RoleAssistant,
		Content:        assistantContent,
		IsUserMessage:  false,
	}
	if err := s.repo.Conversation.CreateMessage(ctx, assistantMsg); err != nil {
		return "", err
	}

	// 7. 工具调用：调度执行并回写结果
	if isToolCall {
		return s.handleToolCall(ctx, choice.Message.ToolCalls[0], assistantMsg, userID)
	}

	// 8. 自由文本原样返回；两者皆无时给出诊断串
	if choice.Message.Content != "" {
		return choice.Message.Content, nil
	}
	return fmt.Sprintf("Unexpected response format %s", choice.FinishReason), nil
}

// handleToolCall 调度工具并更新助手消息行
func (s *agentService) handleToolCall(ctx context.Context, call openai.ToolCall, assistantMsg *model.Message, userID string) (string, error) {
	name := call.Function.Name
	s.logger.Info("执行工具调用",
		zap.String("tool", name),
		zap.String("user_id", userID),
	)

	result, err := s.executeTool(ctx, name, json.RawMessage(call.Function.Arguments), userID)
	if err != nil {
		// 数据层错误按约定向上传播
		return "", err
	}

	raw, err := json.Marshal(call)
	if err != nil {
		return "", fmt.Errorf("序列化工具调用失败: %w", err)
	}
	assistantMsg.Content = string(raw)
	assistantMsg.FunctionCalled = &name
	assistantMsg.FunctionResult = &result.Output
	if err := s.repo.Conversation.UpdateMessage(ctx, assistantMsg); err != nil {
		return "", err
	}

	reply, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("序列化工具结果失败: %w", err)
	}
	return string(reply), nil
}

// executeTool 按名称调度工具，未知工具名返回固定结果而非错误
func (s *agentService) executeTool(ctx context.Context, name string, args json.RawMessage, userID string) (toolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return toolResult{Type: "tool_result", Output: unknownToolOutput}, nil
	}
	output, err := handler(ctx, args, userID)
	if err != nil {
		return toolResult{}, err
	}
	return toolResult{Type: "tool_result", Output: output}, nil
}

// ── 历史加载 ──

// findCutover 返回该用户最近一次工具调用的时间；无记录时返回 nil
func (s *agentService) findCutover(ctx context.Context, userID string) (*time.Time, error) {
	last, err := s.repo.Conversation.LastToolCallMessage(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	t := last.CreatedAt
	return &t, nil
}

// loadConversation 加载用户会话及自 cutover 起（含）的历史（倒序）；会话不存在时创建
func (s *agentService) loadConversation(ctx context.Context, userID string, cutover *time.Time) (*model.Conversation, []model.Message, error) {
	conv, err := s.repo.Conversation.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		conv = &model.Conversation{UserID: userID}
		if err := s.repo.Conversation.Create(ctx, conv); err != nil {
			return nil, nil, err
		}
		return conv, nil, nil
	}

	history, err := s.repo.Conversation.ListMessagesSince(ctx, conv.ConversationID, cutover)
	if err != nil {
		return nil, nil, err
	}
	return conv, history, nil
}

// buildContextWindow 从倒序历史构造严格交替的上下文窗口
//
// 新的用户消息将排在窗口末尾，因此从"助手"开始向前交替；
// 不满足交替槽位的消息直接丢弃（窗口是压缩启发，不是完整账本），
// 最多保留 maxContextMessages 条，最终按时间正序返回。
// 若最旧一条是助手消息，补一个占位用户轮，保证发给模型的序列不以助手开头。
func buildContextWindow(newestFirst []model.Message) []openai.ChatCompletionMessage {
	var window []openai.ChatCompletionMessage

	expected := model.RoleAssistant
	for _, msg := range newestFirst {
		if len(window) >= maxContextMessages {
			break
		}
		if msg.Role != expected {
			continue
		}
		// 头插，保持时间正序
		window = append([]openai.ChatCompletionMessage{{
			Role:    msg.Role,
			Content: msg.Content,
		}}, window...)

		if expected == model.RoleAssistant {
			expected = model.RoleUser
		} else {
			expected = model.RoleAssistant
		}
	}

	if len(window) > 0 && window[0].Role == openai.ChatMessageRoleAssistant {
		window = append([]openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: "Hello",
		}}, window...)
	}

	return window
}
