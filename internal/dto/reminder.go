package dto

// ── 提醒任务模块 ──

// TriggerReminderResponse 手动触发每小时批次的执行结果
type TriggerReminderResponse struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
