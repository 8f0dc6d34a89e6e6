package model

// User 用户表 — 对应 users
// 用户由计费侧（Stripe Webhook）开通，服务内部不做账号认证
type User struct {
	UserID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone       string  `gorm:"type:varchar(32);not null"                      json:"phone"`
	Paid        bool    `gorm:"not null;default:false"                         json:"paid"`
	TimeZone    string  `gorm:"type:varchar(64);not null;default:'America/New_York'" json:"time_zone"`
	StripeID    *string `gorm:"type:varchar(64)"                               json:"stripe_id,omitempty"`
	Email       *string `gorm:"type:varchar(255)"                              json:"email,omitempty"`

	// 关联
	Contacts    []Contact           `gorm:"foreignKey:UserID;references:UserID" json:"contacts,omitempty"`
	Preferences *MessagePreferences `gorm:"foreignKey:UserID;references:UserID" json:"preferences,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
