package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/config"
)

// Client 大模型聊天客户端封装
// 固定使用 chat-completion 接口，模型名由配置决定
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient 创建 LLM 客户端
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) *Client {
	return &Client{
		api:    openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger,
	}
}

// Chat 发送一轮对话并返回首个候选
// messages 须已满足严格交替约束，tools 为固定工具目录
func (c *Client) Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionChoice, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return openai.ChatCompletionChoice{}, fmt.Errorf("LLM 请求失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionChoice{}, fmt.Errorf("LLM 返回空候选列表")
	}

	choice := resp.Choices[0]
	c.logger.Debug("LLM 响应",
		zap.String("finish_reason", string(choice.FinishReason)),
		zap.Int("tool_calls", len(choice.Message.ToolCalls)),
	)
	return choice, nil
}
