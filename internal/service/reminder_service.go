package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/model"
	"github.com/akhan280/doy-backend/internal/repository"
)

const (
	// birthdayCachePrefix 生日查询缓存键前缀，后接目标日期 ISO 格式
	birthdayCachePrefix = "birthdays:"
	// birthdayCacheTTL 查询结果缓存 24 小时
	birthdayCacheTTL = 24 * time.Hour
	// sentMarkerTTL 重复发送标记保留 24 小时，覆盖同一天内的重复触发
	sentMarkerTTL = 24 * time.Hour
)

// messageTemplates 各提前档位的短信文案
var messageTemplates = map[int]string{
	0: "Hey, there. Just a reminder that today is %s's birthday.",
	1: "Hey, there. Just a reminder that tomorrow is %s's birthday.",
	2: "Hey, there. Just a reminder that in 2 days it's %s's birthday.",
	3: "Hey, there. Just a reminder that in 3 days it's %s's birthday.",
	7: "Hey, there. Just a reminder that in a week it's %s's birthday.",
}

// ReminderService 生日提醒业务接口
type ReminderService interface {
	// FindUpcoming 查询 leadDays 天后过生日、且开启了对应提醒档位的用户及联系人
	FindUpcoming(ctx context.Context, leadDays int) ([]repository.UpcomingUser, error)
	// ProcessBirthdayMessages 执行一次每小时提醒批次
	ProcessBirthdayMessages(ctx context.Context) (*dto.TriggerReminderResponse, error)
}

type reminderService struct {
	repo     *repository.Repository
	cache    Cache
	texter   TextSender
	mailer   AlertMailer
	sendHour int
	logger   *zap.Logger
	now      func() time.Time // 注入时钟，测试用
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(
	repo *repository.Repository,
	cache Cache,
	texter TextSender,
	mailer AlertMailer,
	sendHour int,
	logger *zap.Logger,
) ReminderService {
	return &reminderService{
		repo:     repo,
		cache:    cache,
		texter:   texter,
		mailer:   mailer,
		sendHour: sendHour,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── FindUpcoming ──────────────────────

func (s *reminderService) FindUpcoming(ctx context.Context, leadDays int) ([]repository.UpcomingUser, error) {
	targetDate := s.now().AddDate(0, 0, leadDays)
	key := birthdayCachePrefix + targetDate.Format("2006-01-02")

	return s.loadThroughCache(ctx, key, func() ([]repository.UpcomingUser, error) {
		return s.repo.Reminder.FindUpcoming(ctx, int(targetDate.Month()), targetDate.Day(), leadDays)
	})
}

// loadThroughCache cache-aside：先查缓存，未命中或缓存故障时回源后回填
// 缓存只是优化，任何缓存错误都不得影响查询结果
func (s *reminderService) loadThroughCache(
	ctx context.Context,
	key string,
	loader func() ([]repository.UpcomingUser, error),
) ([]repository.UpcomingUser, error) {
	if s.cache != nil {
		var cached []repository.UpcomingUser
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("读取生日缓存失败，回退数据库", zap.String("key", key), zap.Error(err))
		} else if found {
			s.logger.Debug("生日缓存命中", zap.String("key", key))
			return cached, nil
		}
	}

	result, err := loader()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, result, birthdayCacheTTL); err != nil {
			s.logger.Warn("写入生日缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

// ────────────────────── ProcessBirthdayMessages ──────────────────────

func (s *reminderService) ProcessBirthdayMessages(ctx context.Context) (*dto.TriggerReminderResponse, error) {
	started := s.now()
	s.logger.Info("生日提醒批次开始", zap.Time("at", started))

	stats := &dto.TriggerReminderResponse{}
	for _, leadDays := range model.SupportedLeadDays {
		users, err := s.FindUpcoming(ctx, leadDays)
		if err != nil {
			return nil, fmt.Errorf("查询 %d 天档位失败: %w", leadDays, err)
		}
		s.dispatchLead(ctx, leadDays, users, stats)
	}

	s.logger.Info("生日提醒批次完成",
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// dispatchLead 处理单个提前档位的全部用户
func (s *reminderService) dispatchLead(ctx context.Context, leadDays int, users []repository.UpcomingUser, stats *dto.TriggerReminderResponse) {
	for _, uu := range users {
		user := uu.User

		if !user.Paid {
			stats.Skipped += len(uu.Contacts)
			continue
		}

		loc, err := time.LoadLocation(user.TimeZone)
		if err != nil {
			s.logger.Warn("用户时区无效，跳过",
				zap.String("user_id", user.UserID),
				zap.String("time_zone", user.TimeZone),
			)
			stats.Skipped += len(uu.Contacts)
			continue
		}

		// 仅在用户本地时间等于配置的发送小时才投递
		if s.now().In(loc).Hour() != s.sendHour {
			continue
		}

		for _, contact := range uu.Contacts {
			if !s.claimSendMarker(ctx, leadDays, user.UserID, contact.ContactID) {
				stats.Skipped++
				continue
			}

			content := fmt.Sprintf(messageTemplates[leadDays], contact.Name)
			s.logger.Info("发送生日提醒",
				zap.String("user", user.Name),
				zap.String("contact", contact.Name),
				zap.Int("lead_days", leadDays),
			)

			if err := s.texter.Send(ctx, []string{user.Phone}, content); err != nil {
				// 单条失败只告警，不中断批次
				stats.Failed++
				s.logger.Error("短信发送失败",
					zap.String("user", user.Name),
					zap.String("contact", contact.Name),
					zap.Error(err),
				)
				s.sendFailureAlert(user.Name, contact.Name, err)
				continue
			}
			stats.Sent++
		}
	}
}

// claimSendMarker 尝试占用当日该联系人的发送标记
// 返回 true 表示应当发送；缓存不可用时放行（宁可多发不漏发）
func (s *reminderService) claimSendMarker(ctx context.Context, leadDays int, userID string, contactID int) bool {
	if s.cache == nil {
		return true
	}
	key := fmt.Sprintf("reminder:sent:%s:%s:%d:%d",
		s.now().Format("2006-01-02"), userID, contactID, leadDays)
	first, err := s.cache.MarkOnce(ctx, key, sentMarkerTTL)
	if err != nil {
		s.logger.Warn("写入发送标记失败，按可发送处理", zap.String("key", key), zap.Error(err))
		return true
	}
	return first
}

// sendFailureAlert 短信失败时给运维发告警邮件，邮件即全部补救动作
func (s *reminderService) sendFailureAlert(userName, contactName string, sendErr error) {
	body := fmt.Sprintf(
		"<p>Error: daysoftheyear didn't send a birthday message to <strong>%s for user %s</strong>!</p><p>Error details: %s</p>",
		contactName, userName, sendErr.Error(),
	)
	if err := s.mailer.SendAlert("Message failed to send!", body); err != nil {
		s.logger.Error("告警邮件发送失败", zap.Error(err))
	}
}
