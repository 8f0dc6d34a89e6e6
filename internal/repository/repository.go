package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Contact      ContactRepository
	Preference   PreferenceRepository
	Conversation ConversationRepository
	Reminder     ReminderRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Contact:      NewContactRepo(db),
		Preference:   NewPreferenceRepo(db),
		Conversation: NewConversationRepo(db),
		Reminder:     NewReminderRepo(db),
	}
}
