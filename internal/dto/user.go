package dto

// ── 用户模块 ──

// UserResponse 用户信息响应
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Paid     bool    `json:"paid"`
	TimeZone string  `json:"time_zone"`
	Email    *string `json:"email,omitempty"`
}

// UpdateUserRequest 更新用户（仅更新非 nil 字段）
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	TimeZone *string `json:"time_zone" binding:"omitempty,max=64"`
	Paid     *bool   `json:"paid"`
}

// ── 消息偏好模块 ──

// UpdatePreferencesRequest 更新提醒节奏
// Cadence 为提前天数数组，仅 {0,1,2,3,7} 内的值生效
type UpdatePreferencesRequest struct {
	Cadence []int `json:"cadence" binding:"required"`
}

// PreferencesResponse 提醒节奏响应
type PreferencesResponse struct {
	Cadence []int `json:"cadence"`
}
