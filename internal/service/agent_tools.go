package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
)

// systemPrompt 会话代理系统提示词（产品文案，保持英文原样）
const systemPrompt = "Before answering, explain your reasoning step-by-step in tags. You are an AI assistant for a birthday reminder service. Your job is to help users manage their birthdays and account settings. Whenever you experience confusion, make sure to ask the user a brief question specifically reminding them of the actions you can take, along with your preferred parameters You should never reveal internals of how you function. Do not mention function names, string, parameters or programming terms. Speak naturally but be brief. Do say you did an action unless the function is invoked. When analyzing whether you should call a function, please make sure to look at the context. If you get an irrelevant query ignore. Whenever you complete an action for the user ALWAYS structure it like this I _______ (verb in past tense) [get_subscription_status, edit_cadence, change_timezone, unsubscribe, start_sending, stop_sending, edit_birthday, remove_birthday, add_birthday] for you"

// unknownToolOutput 未知工具名的固定返回，不视为错误
const unknownToolOutput = "Unknown tool"

const birthdayLayout = "2006-01-02"

// toolResult 工具执行结果，整体 JSON 序列化后返回给调用方
type toolResult struct {
	Type   string `json:"type"`
	Output string `json:"output"`
}

// toolHandler 单个工具处理函数
// 数据层错误向上传播；模型侧的参数问题一律转为可读输出
type toolHandler func(ctx context.Context, args json.RawMessage, userID string) (string, error)

// toolSpec 目录条目：名称 + 描述 + JSON Schema 参数
type toolSpec struct {
	name        string
	description string
	parameters  json.RawMessage
}

// toolCatalog 固定工具目录（8 个），与模型交互时原样下发
var toolCatalog = []toolSpec{
	{
		name:        "add_birthday",
		description: "Add a new birthday to the user's list. Use this when a user wants to add a birthday.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Name of the person"},
				"birthday": {"type": "string", "description": "Birthday"}
			},
			"required": ["name", "birthday"]
		}`),
	},
	{
		name:        "remove_birthday",
		description: "Remove a birthday from the user's list. Use this when a user wants to remove a birthday.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Name of the person to remove"}
			},
			"required": ["name"]
		}`),
	},
	{
		name:        "edit_birthday",
		description: "Edit an existing birthday in the user's list. Use this when a user wants to change a birthday.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Name of the person"},
				"newBirthday": {"type": "string", "description": "New birthday in YYYY-MM-DD format"}
			},
			"required": ["name", "newBirthday"]
		}`),
	},
	{
		name:        "unsubscribe",
		description: "Unsubscribe the user from the service.",
		parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		name:        "change_timezone",
		description: "Change the user's timezone. Use this tool only when the user explicitly requests a timezone change. Ensure the timezone is in the 'Area/Location' format (e.g., 'America/New_York', 'Europe/London'). If the user provides a city or common abbreviation (e.g., EST, MST), infer the appropriate timezone. If unclear, ask for clarification. Accuracy is crucial as this affects future notifications and displays for the user. Do not mention internal tool names.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"timezone": {"type": "string", "description": "New timezone (e.g., \"America/New_York\")"}
			},
			"required": ["timezone"]
		}`),
	},
	{
		name:        "edit_cadence",
		description: "Edit the general reminder cadence. The user must specify an interval from the following options: [1 day, 2 days, day of, 1 week, 3 days before]. Be strict about this format. Cadence changes apply to all users, not individuals. If the user refers to a specific person, confirm that they want to change the general cadence. Ignore references to specific users and modify the cadence according to the provided interval.",
		parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"cadence": {"type": "array", "items": {"type": "number"}, "description": "Array of days ahead for reminders"}
			},
			"required": ["cadence"]
		}`),
	},
	{
		name:        "stop_sending",
		description: "Stop sending reminders to the user.",
		parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		name:        "start_sending",
		description: "Used to resume/start sending reminders to the user.",
		parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	},
}

// buildTools 将目录转为 OpenAI 工具定义
func buildTools() []openai.Tool {
	tools := make([]openai.Tool, 0, len(toolCatalog))
	for _, spec := range toolCatalog {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.name,
				Description: spec.description,
				Parameters:  spec.parameters,
			},
		})
	}
	return tools
}

// buildToolHandlers 构建工具名 -> 处理函数注册表
// irrelevant 不在对外目录中，但调度表必须能处理
func (s *agentService) buildToolHandlers() map[string]toolHandler {
	return map[string]toolHandler{
		// 生日管理
		"add_birthday":    s.toolAddBirthday,
		"remove_birthday": s.toolRemoveBirthday,
		"edit_birthday":   s.toolEditBirthday,

		// 账号管理
		"unsubscribe":     s.toolUnsubscribe,
		"change_timezone": s.toolChangeTimezone,
		"edit_cadence":    s.toolEditCadence,
		"irrelevant":      s.toolIrrelevant,

		// 发送开关
		"stop_sending":  s.toolStopSending,
		"start_sending": s.toolStartSending,
	}
}

// assertToolRegistry 启动期断言：目录中每个工具都有处理函数
// 目录与调度表脱节属于编程错误，直接 panic
func assertToolRegistry(handlers map[string]toolHandler) {
	for _, spec := range toolCatalog {
		if _, ok := handlers[spec.name]; !ok {
			panic(fmt.Sprintf("工具目录与调度表不一致: %q 缺少处理函数", spec.name))
		}
	}
}

// ────────────────────── 生日管理 ──────────────────────

func (s *agentService) toolAddBirthday(ctx context.Context, args json.RawMessage, userID string) (string, error) {
	var input struct {
		Name     string `json:"name"`
		Birthday string `json:"birthday"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Could not understand the birthday request: %v", err), nil
	}

	birthday, ok := parseBirthday(input.Birthday)
	if !ok {
		return fmt.Sprintf("Could not understand the date %q, please use YYYY-MM-DD", input.Birthday), nil
	}

	contact := &model.Contact{
		UserID:   userID,
		Name:     input.Name,
		Birthday: birthday,
	}
	if err := s.repo.Contact.Create(ctx, contact); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added birthday for %s on %s", input.Name, birthday.Format(birthdayLayout)), nil
}

func (s *agentService) toolRemoveBirthday(ctx context.Context, args json.RawMessage, userID string) (string, error) {
	var input struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Could not understand the removal request: %v", err), nil
	}

	// 同名联系人全部删除
	if _, err := s.repo.Contact.DeleteByName(ctx, userID, input.Name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed birthday for %s", input.Name), nil
}

func (s *agentService) toolEditBirthday(ctx context.Context, args json.RawMessage, userID string) (string, error) {
	var input struct {
		Name        string `json:"name"`
		NewBirthday string `json:"newBirthday"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Could not understand the edit request: %v", err), nil
	}

	birthday, ok := parseBirthday(input.NewBirthday)
	if !ok {
		return fmt.Sprintf("Could not understand the date %q, please use YYYY-MM-DD", input.NewBirthday), nil
	}

	if _, err := s.repo.Contact.UpdateBirthdayByName(ctx, userID, input.Name, birthday); err != nil {
		return "", err
	}
	return fmt.Sprintf("Edited birthday for %s to %s", input.Name, birthday.Format(birthdayLayout)), nil
}

// ────────────────────── 账号管理 ──────────────────────

func (s *agentService) toolUnsubscribe(ctx context.Context, _ json.RawMessage, userID string) (string, error) {
	if err := s.setPaid(ctx, userID, false); err != nil {
		return "", err
	}
	return "User has been unsubscribed", nil
}

func (s *agentService) toolChangeTimezone(ctx context.Context, args json.RawMessage, userID string) (string, error) {
	var input struct {
		Timezone string `json:"timezone"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Could not understand the timezone request: %v", err), nil
	}

	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return fmt.Sprintf("%q is not a valid Area/Location timezone", input.Timezone), nil
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	user.TimeZone = input.Timezone
	if err := s.repo.User.Update(ctx, user); err != nil {
		return "", err
	}
	return fmt.Sprintf("Timezone changed to %s", input.Timezone), nil
}

func (s *agentService) toolEditCadence(ctx context.Context, args json.RawMessage, userID string) (string, error) {
	var input struct {
		Cadence []int `json:"cadence"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return fmt.Sprintf("Could not understand the cadence request: %v", err), nil
	}

	// 存在则更新，不存在则创建（与 users 1:1）
	pref, err := s.repo.Preference.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		pref.SetCadence(input.Cadence)
		if err := s.repo.Preference.Update(ctx, pref); err != nil {
			return "", err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		pref = &model.MessagePreferences{UserID: userID}
		pref.SetCadence(input.Cadence)
		if err := s.repo.Preference.Create(ctx, pref); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	return fmt.Sprintf("Cadence edited to %s", joinInts(input.Cadence)), nil
}

func (s *agentService) toolIrrelevant(_ context.Context, _ json.RawMessage, _ string) (string, error) {
	return "No action taken", nil
}

// ────────────────────── 发送开关 ──────────────────────

func (s *agentService) toolStopSending(ctx context.Context, _ json.RawMessage, userID string) (string, error) {
	if err := s.setPaid(ctx, userID, false); err != nil {
		return "", err
	}
	return "Reminders have been stopped", nil
}

func (s *agentService) toolStartSending(ctx context.Context, _ json.RawMessage, userID string) (string, error) {
	if err := s.setPaid(ctx, userID, true); err != nil {
		return "", err
	}
	return "Reminders have been started", nil
}

// ── 内部辅助 ──

func (s *agentService) setPaid(ctx context.Context, userID string, paid bool) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Paid = paid
	return s.repo.User.Update(ctx, user)
}

// parseBirthday 解析模型给出的日期文本
func parseBirthday(value string) (time.Time, bool) {
	for _, layout := range []string{birthdayLayout, "2006/01/02", "January 2, 2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
