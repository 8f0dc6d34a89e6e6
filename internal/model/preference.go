package model

// SupportedLeadDays 支持的提前提醒天数（顺序即每小时任务的处理顺序）
var SupportedLeadDays = []int{0, 1, 2, 3, 7}

// MessagePreferences 消息偏好表 — 对应 message_preferences（与 users 1:1）
// 五个开关相互独立，用户可同时启用多个提前档位
type MessagePreferences struct {
	PreferenceID int    `gorm:"primaryKey;autoIncrement"      json:"preference_id"`
	UserID       string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DaysAhead0   bool   `gorm:"not null;default:false"        json:"days_ahead_0"`
	DaysAhead1   bool   `gorm:"not null;default:false"        json:"days_ahead_1"`
	DaysAhead2   bool   `gorm:"not null;default:false"        json:"days_ahead_2"`
	DaysAhead3   bool   `gorm:"not null;default:false"        json:"days_ahead_3"`
	DaysAhead7   bool   `gorm:"not null;default:false"        json:"days_ahead_7"`
}

// TableName 指定表名
func (MessagePreferences) TableName() string { return "message_preferences" }

// SetCadence 按 cadence 数组成员关系重置五个开关
func (p *MessagePreferences) SetCadence(cadence []int) {
	has := func(n int) bool {
		for _, c := range cadence {
			if c == n {
				return true
			}
		}
		return false
	}
	p.DaysAhead0 = has(0)
	p.DaysAhead1 = has(1)
	p.DaysAhead2 = has(2)
	p.DaysAhead3 = has(3)
	p.DaysAhead7 = has(7)
}

// Cadence 导出当前启用的提前天数列表
func (p *MessagePreferences) Cadence() []int {
	cadence := make([]int, 0, 5)
	flags := []struct {
		days int
		on   bool
	}{
		{0, p.DaysAhead0},
		{1, p.DaysAhead1},
		{2, p.DaysAhead2},
		{3, p.DaysAhead3},
		{7, p.DaysAhead7},
	}
	for _, f := range flags {
		if f.on {
			cadence = append(cadence, f.days)
		}
	}
	return cadence
}
