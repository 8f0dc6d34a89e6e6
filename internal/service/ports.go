package service

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ── 外部依赖端口 ──
// Service 层只依赖这些小接口；pkg 下的 redis/llm/texter/mailer 客户端分别实现它们

// Cache 键值缓存端口（实现：pkg/redis.Client）
// 注入 nil 表示缓存不可用，调用方必须降级为直连主存储
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ChatClient 大模型聊天端口（实现：pkg/llm.Client）
type ChatClient interface {
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionChoice, error)
}

// TextSender 短信网关端口（实现：pkg/texter.Texter）
type TextSender interface {
	Send(ctx context.Context, addresses []string, message string) error
}

// AlertMailer 运维告警邮件端口（实现：pkg/mailer.Mailer）
type AlertMailer interface {
	SendAlert(subject, htmlBody string) error
}
