package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
)

// PreferenceRepository 消息偏好数据访问接口
type PreferenceRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.MessagePreferences, error)
	Create(ctx context.Context, pref *model.MessagePreferences) error
	Update(ctx context.Context, pref *model.MessagePreferences) error
}

// preferenceRepo PreferenceRepository 的 GORM 实现
type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo 创建 PreferenceRepository 实例
func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) GetByUserID(ctx context.Context, userID string) (*model.MessagePreferences, error) {
	var pref model.MessagePreferences
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepo) Create(ctx context.Context, pref *model.MessagePreferences) error {
	return r.db.WithContext(ctx).Create(pref).Error
}

func (r *preferenceRepo) Update(ctx context.Context, pref *model.MessagePreferences) error {
	return r.db.WithContext(ctx).Save(pref).Error
}
