package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/model"
	"github.com/akhan280/doy-backend/internal/repository"
)

// PreferenceService 消息偏好业务接口
type PreferenceService interface {
	// Get 返回用户当前启用的提前天数；无记录时返回空节奏
	Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error)
	// Update 按 cadence 数组成员关系重置五个档位（upsert）
	Update(ctx context.Context, userID string, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
}

type preferenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
func NewPreferenceService(repo *repository.Repository, logger *zap.Logger) PreferenceService {
	return &preferenceService{repo: repo, logger: logger}
}

func (s *preferenceService) Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error) {
	pref, err := s.repo.Preference.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.PreferencesResponse{Cadence: []int{}}, nil
		}
		s.logger.Error("查询消息偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.PreferencesResponse{Cadence: pref.Cadence()}, nil
}

func (s *preferenceService) Update(ctx context.Context, userID string, req *dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	// 先确认用户存在，偏好与 users 1:1
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	pref, err := s.repo.Preference.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		pref.SetCadence(req.Cadence)
		if err := s.repo.Preference.Update(ctx, pref); err != nil {
			s.logger.Error("更新消息偏好失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		pref = &model.MessagePreferences{UserID: userID}
		pref.SetCadence(req.Cadence)
		if err := s.repo.Preference.Create(ctx, pref); err != nil {
			s.logger.Error("创建消息偏好失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
	default:
		return nil, err
	}

	return &dto.PreferencesResponse{Cadence: pref.Cadence()}, nil
}
