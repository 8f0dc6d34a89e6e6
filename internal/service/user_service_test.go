package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/model"
)

// ── 测试辅助 ──

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func setupTestUserService() (UserService, *mockUserRepo) {
	repo, userRepo, _, _, _, _ := newMockRepository()
	svc := NewUserService(repo, zap.NewNop())
	return svc, userRepo
}

// ── GetByID 测试 ──

func TestUserService_GetByID_Success(t *testing.T) {
	svc, userRepo := setupTestUserService()
	userRepo.users["uid-001"] = &model.User{
		UserID:   "uid-001",
		Name:     "Alice",
		Phone:    "+15550001",
		Paid:     true,
		TimeZone: "America/New_York",
	}

	result, err := svc.GetByID(context.Background(), "uid-001")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if result.Name != "Alice" || result.TimeZone != "America/New_York" {
		t.Errorf("返回字段不符: %+v", result)
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestUserService_Update_PartialFields(t *testing.T) {
	svc, userRepo := setupTestUserService()
	userRepo.users["uid-001"] = &model.User{
		UserID:   "uid-001",
		Name:     "Alice",
		Phone:    "+15550001",
		Paid:     true,
		TimeZone: "America/New_York",
	}

	result, err := svc.Update(context.Background(), "uid-001", &dto.UpdateUserRequest{
		TimeZone: strPtr("Europe/London"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.TimeZone != "Europe/London" {
		t.Errorf("时区应更新: %s", result.TimeZone)
	}
	if result.Name != "Alice" || !result.Paid {
		t.Errorf("未提供的字段不应变化: %+v", result)
	}
}

func TestUserService_Update_InvalidTimeZone(t *testing.T) {
	svc, userRepo := setupTestUserService()
	userRepo.users["uid-001"] = &model.User{UserID: "uid-001", TimeZone: "UTC"}

	_, err := svc.Update(context.Background(), "uid-001", &dto.UpdateUserRequest{
		TimeZone: strPtr("Not/AZone"),
	})
	if !errors.Is(err, ErrInvalidTimeZone) {
		t.Errorf("期望 ErrInvalidTimeZone，实际: %v", err)
	}
	if userRepo.users["uid-001"].TimeZone != "UTC" {
		t.Error("非法时区不应落库")
	}
}

func TestUserService_Update_Paid(t *testing.T) {
	svc, userRepo := setupTestUserService()
	userRepo.users["uid-001"] = &model.User{UserID: "uid-001", Paid: true, TimeZone: "UTC"}

	result, err := svc.Update(context.Background(), "uid-001", &dto.UpdateUserRequest{
		Paid: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Paid {
		t.Error("paid 应被关闭")
	}
}
