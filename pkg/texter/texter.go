package texter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/config"
)

// Texter 短信网关客户端
// 网关为内部 message-server，接口固定为 POST {addresses, message}
type Texter struct {
	endpoint string
	password string
	client   *http.Client
	logger   *zap.Logger
}

// sendPayload 发送接口请求体
type sendPayload struct {
	Addresses []string `json:"addresses"`
	Message   string   `json:"message"`
}

// NewTexter 创建短信网关客户端
func NewTexter(cfg *config.MessagingConfig, logger *zap.Logger) *Texter {
	return &Texter{
		endpoint: cfg.Endpoint,
		password: cfg.Password,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Send 向目标号码发送一条文本消息
// 非 2xx 响应视为发送失败
func (t *Texter) Send(ctx context.Context, addresses []string, message string) error {
	body, err := json.Marshal(sendPayload{Addresses: addresses, Message: message})
	if err != nil {
		return fmt.Errorf("序列化短信请求失败: %w", err)
	}

	url := t.endpoint
	if t.password != "" {
		url = fmt.Sprintf("%s?password=%s", t.endpoint, t.password)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造短信请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("短信网关请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("短信网关返回 HTTP %d: %s", resp.StatusCode, string(detail))
	}

	t.logger.Debug("短信已提交网关", zap.Int("addresses", len(addresses)))
	return nil
}
