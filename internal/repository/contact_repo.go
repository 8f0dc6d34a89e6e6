package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
)

// ContactRepository 联系人数据访问接口
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	CreateBatch(ctx context.Context, contacts []model.Contact) error
	GetByID(ctx context.Context, userID string, contactID int) (*model.Contact, error)
	ListByUser(ctx context.Context, userID string) ([]model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, userID string, contactID int) error
	// DeleteByName 删除该用户名下所有同名联系人，返回删除条数
	DeleteByName(ctx context.Context, userID, name string) (int64, error)
	// UpdateBirthdayByName 更新该用户名下所有同名联系人的生日，返回更新条数
	UpdateBirthdayByName(ctx context.Context, userID, name string, birthday time.Time) (int64, error)
}

// contactRepo ContactRepository 的 GORM 实现
type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo 创建 ContactRepository 实例
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepo) CreateBatch(ctx context.Context, contacts []model.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&contacts).Error
}

func (r *contactRepo) GetByID(ctx context.Context, userID string, contactID int) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) ListByUser(ctx context.Context, userID string) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *contactRepo) Delete(ctx context.Context, userID string, contactID int) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Delete(&model.Contact{}).Error
}

func (r *contactRepo) DeleteByName(ctx context.Context, userID, name string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Delete(&model.Contact{})
	return res.RowsAffected, res.Error
}

func (r *contactRepo) UpdateBirthdayByName(ctx context.Context, userID, name string, birthday time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("user_id = ? AND name = ?", userID, name).
		Update("birthday", birthday)
	return res.RowsAffected, res.Error
}
