package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
)

// UpcomingUser 一条即将到来的生日查询结果：用户及其当日命中的联系人
// 用户字段完整返回（含时区），发送决策依赖它
type UpcomingUser struct {
	User     model.User      `json:"user"`
	Contacts []model.Contact `json:"contacts"`
}

// ReminderRepository 生日提醒查询接口
type ReminderRepository interface {
	// FindUpcoming 查询偏好开启了 leadDays 档位、且有联系人生日落在
	// 指定月/日（忽略出生年份）的用户
	FindUpcoming(ctx context.Context, month, day, leadDays int) ([]UpcomingUser, error)
}

// reminderRepo ReminderRepository 的 GORM 实现
type reminderRepo struct {
	db *gorm.DB
}

// NewReminderRepo 创建 ReminderRepository 实例
func NewReminderRepo(db *gorm.DB) ReminderRepository {
	return &reminderRepo{db: db}
}

// upcomingRow 原生查询的扫描结构，联系人以 json_agg 聚合
type upcomingRow struct {
	UserID   string         `gorm:"column:user_id"`
	Name     string         `gorm:"column:name"`
	Phone    string         `gorm:"column:phone"`
	Paid     bool           `gorm:"column:paid"`
	TimeZone string         `gorm:"column:time_zone"`
	StripeID *string        `gorm:"column:stripe_id"`
	Email    *string        `gorm:"column:email"`
	Contacts datatypes.JSON `gorm:"column:contacts"`
}

// upcomingSQL 单条参数化查询：月/日过滤联系人 + 偏好档位过滤用户 + json_agg 聚合
// 生日以 RFC3339 文本输出，便于直接反序列化为 time.Time
const upcomingSQL = `
WITH filtered_contacts AS (
    SELECT *
    FROM contacts
    WHERE EXTRACT(MONTH FROM birthday) = @month
      AND EXTRACT(DAY FROM birthday) = @day
)
SELECT
    u.user_id, u.name, u.phone, u.paid, u.time_zone, u.stripe_id, u.email,
    COALESCE(
        json_agg(
            json_build_object(
                'contact_id', fc.contact_id,
                'user_id', fc.user_id,
                'name', fc.name,
                'phone_number', fc.phone_number,
                'birthday', to_char(fc.birthday, 'YYYY-MM-DD') || 'T00:00:00Z'
            )
        ) FILTER (WHERE fc.contact_id IS NOT NULL),
        '[]'
    ) AS contacts
FROM users u
JOIN message_preferences mp ON mp.user_id = u.user_id
LEFT JOIN filtered_contacts fc ON fc.user_id = u.user_id
WHERE (
    (@lead = 0 AND mp.days_ahead_0) OR
    (@lead = 1 AND mp.days_ahead_1) OR
    (@lead = 2 AND mp.days_ahead_2) OR
    (@lead = 3 AND mp.days_ahead_3) OR
    (@lead = 7 AND mp.days_ahead_7)
)
GROUP BY u.user_id
`

func (r *reminderRepo) FindUpcoming(ctx context.Context, month, day, leadDays int) ([]UpcomingUser, error) {
	var rows []upcomingRow
	err := r.db.WithContext(ctx).
		Raw(upcomingSQL,
			map[string]interface{}{"month": month, "day": day, "lead": leadDays},
		).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询生日提醒失败: %w", err)
	}

	result := make([]UpcomingUser, 0, len(rows))
	for _, row := range rows {
		var contacts []model.Contact
		if err := json.Unmarshal(row.Contacts, &contacts); err != nil {
			return nil, fmt.Errorf("解析联系人聚合失败 user=%s: %w", row.UserID, err)
		}
		result = append(result, UpcomingUser{
			User: model.User{
				UserID:   row.UserID,
				Name:     row.Name,
				Phone:    row.Phone,
				Paid:     row.Paid,
				TimeZone: row.TimeZone,
				StripeID: row.StripeID,
				Email:    row.Email,
			},
			Contacts: contacts,
		})
	}
	return result, nil
}
