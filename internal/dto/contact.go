package dto

// ── 联系人模块 ──

// CreateContactRequest 创建联系人
type CreateContactRequest struct {
	Name        string  `json:"name"         binding:"required,max=100"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
	Birthday    string  `json:"birthday"     binding:"required"` // YYYY-MM-DD
}

// UpdateContactRequest 更新联系人（仅更新非 nil 字段）
type UpdateContactRequest struct {
	Name        *string `json:"name"         binding:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
	Birthday    *string `json:"birthday"     binding:"omitempty"` // YYYY-MM-DD
}

// ContactResponse 联系人信息响应
type ContactResponse struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Birthday    string  `json:"birthday"` // YYYY-MM-DD
}

// ImportContactsRequest 从 iCalendar 导入生日
// URL 与 Content 二选一：URL 拉取远端日历，Content 直接提交 ICS 文本
type ImportContactsRequest struct {
	URL     string `json:"url"     binding:"omitempty,max=2048"`
	Content string `json:"content" binding:"omitempty"`
}

// ImportContactsResponse 导入结果
type ImportContactsResponse struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
