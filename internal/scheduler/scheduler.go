package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/internal/dto"
)

// Dispatcher 调度器触发的批处理入口（由 service.ReminderService 实现）
type Dispatcher interface {
	ProcessBirthdayMessages(ctx context.Context) (*dto.TriggerReminderResponse, error)
}

// Scheduler 每小时触发一次生日提醒批次
// 不做并发去重：假定单实例部署、触发间隔固定为一小时
type Scheduler struct {
	dispatcher Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

// New 创建 Scheduler，触发间隔固定为一小时
func New(dispatcher Dispatcher, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		interval:   time.Hour,
		logger:     logger,
	}
}

// Run 阻塞运行直到 ctx 取消
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("提醒调度器已启动", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("提醒调度器停止")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick 执行一次批处理
func (s *Scheduler) tick(ctx context.Context) {
	stats, err := s.dispatcher.ProcessBirthdayMessages(ctx)
	if err != nil {
		s.logger.Error("生日提醒批次执行失败", zap.Error(err))
		return
	}
	s.logger.Info("生日提醒批次执行完毕",
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
}
