package model

import "time"

// Contact 联系人表 — 对应 contacts
// Birthday 仅取日历日期部分，月/日匹配时忽略出生年份
type Contact struct {
	ContactID   int       `gorm:"primaryKey;autoIncrement"            json:"contact_id"`
	UserID      string    `gorm:"type:uuid;not null;index"            json:"user_id"`
	Name        string    `gorm:"type:varchar(100);not null"          json:"name"`
	PhoneNumber *string   `gorm:"type:varchar(32)"                    json:"phone_number,omitempty"`
	Birthday    time.Time `gorm:"type:date;not null"                  json:"birthday"`

	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Contact) TableName() string { return "contacts" }
