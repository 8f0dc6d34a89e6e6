package service

import (
	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/config"
	"github.com/akhan280/doy-backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	User       UserService
	Contact    ContactService
	Preference PreferenceService
	Reminder   ReminderService
	Agent      AgentService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	chat ChatClient,
	texter TextSender,
	mailer AlertMailer,
	logger *zap.Logger,
) *Service {
	return &Service{
		User:       NewUserService(repo, logger),
		Contact:    NewContactService(repo, logger),
		Preference: NewPreferenceService(repo, logger),
		Reminder:   NewReminderService(repo, cache, texter, mailer, cfg.Reminder.SendHour, logger),
		Agent:      NewAgentService(repo, chat, logger),
	}
}
