//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akhan280/doy-backend/internal/model"
	"github.com/akhan280/doy-backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=doy password=doy_password dbname=doy_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.User{},
		&model.Contact{},
		&model.MessagePreferences{},
		&model.Conversation{},
		&model.Message{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupReminderUser 创建一个付费用户、其提醒档位及若干联系人生日，返回清理函数
func setupReminderUser(t *testing.T, cadence []int, birthdays ...time.Time) (*model.User, func()) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{
		UserID:   uuid.NewString(),
		Name:     "测试用户",
		Phone:    "+15550001",
		Paid:     true,
		TimeZone: "UTC",
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	pref := &model.MessagePreferences{UserID: user.UserID}
	pref.SetCadence(cadence)
	if err := testDB.WithContext(ctx).Create(pref).Error; err != nil {
		t.Fatalf("创建消息偏好失败: %v", err)
	}

	for i, birthday := range birthdays {
		contact := &model.Contact{
			UserID:   user.UserID,
			Name:     fmt.Sprintf("联系人-%d", i+1),
			Birthday: birthday,
		}
		if err := testDB.WithContext(ctx).Create(contact).Error; err != nil {
			t.Fatalf("创建联系人失败: %v", err)
		}
	}

	cleanup := func() {
		testDB.Where("user_id = ?", user.UserID).Delete(&model.Contact{})
		testDB.Where("user_id = ?", user.UserID).Delete(&model.MessagePreferences{})
		testDB.Where("user_id = ?", user.UserID).Delete(&model.User{})
	}
	return user, cleanup
}

// findUser 在查询结果中按 userID 定位一行
func findUser(rows []repository.UpcomingUser, userID string) (repository.UpcomingUser, bool) {
	for _, row := range rows {
		if row.User.UserID == userID {
			return row, true
		}
	}
	return repository.UpcomingUser{}, false
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ═══════════════════════════════════════════════════════════
// Test: FindUpcoming 原生查询
// ═══════════════════════════════════════════════════════════

func TestReminderRepo_FindUpcoming_MatchesMonthDayIgnoringYear(t *testing.T) {
	// 出生年份不同但月/日相同的两个联系人都应命中；别的月/日不命中
	user, cleanup := setupReminderUser(t, []int{0},
		date(1990, 5, 4),
		date(1985, 5, 4),
		date(1990, 6, 1),
	)
	defer cleanup()

	repo := repository.NewReminderRepo(testDB)
	rows, err := repo.FindUpcoming(context.Background(), 5, 4, 0)
	if err != nil {
		t.Fatalf("FindUpcoming 应成功: %v", err)
	}

	row, ok := findUser(rows, user.UserID)
	if !ok {
		t.Fatalf("期望命中用户 %s，实际结果: %+v", user.UserID, rows)
	}
	if len(row.Contacts) != 2 {
		t.Fatalf("期望命中 2 个联系人，实际=%d: %+v", len(row.Contacts), row.Contacts)
	}
	for _, c := range row.Contacts {
		if c.Birthday.Month() != time.May || c.Birthday.Day() != 4 {
			t.Errorf("命中联系人的月/日不符: %v", c.Birthday)
		}
	}
}

func TestReminderRepo_FindUpcoming_PreferenceFlagFilter(t *testing.T) {
	// 只开了 7 天档位的用户不该出现在当天档位的结果里
	user, cleanup := setupReminderUser(t, []int{7}, date(1990, 5, 4))
	defer cleanup()

	repo := repository.NewReminderRepo(testDB)

	rows, err := repo.FindUpcoming(context.Background(), 5, 4, 0)
	if err != nil {
		t.Fatalf("FindUpcoming 应成功: %v", err)
	}
	if _, ok := findUser(rows, user.UserID); ok {
		t.Error("未开启当天档位的用户不应命中 leadDays=0")
	}

	rows, err = repo.FindUpcoming(context.Background(), 5, 4, 7)
	if err != nil {
		t.Fatalf("FindUpcoming 应成功: %v", err)
	}
	if _, ok := findUser(rows, user.UserID); !ok {
		t.Error("开启 7 天档位的用户应命中 leadDays=7")
	}
}

func TestReminderRepo_FindUpcoming_UnsupportedLeadReturnsEmpty(t *testing.T) {
	// 全档位开启也命中不了不支持的 leadDays
	user, cleanup := setupReminderUser(t, []int{0, 1, 2, 3, 7}, date(1990, 5, 4))
	defer cleanup()

	repo := repository.NewReminderRepo(testDB)
	rows, err := repo.FindUpcoming(context.Background(), 5, 4, 5)
	if err != nil {
		t.Fatalf("不支持的档位应返回空结果而非错误: %v", err)
	}
	if _, ok := findUser(rows, user.UserID); ok {
		t.Error("leadDays=5 不在支持档位内，不应命中任何用户")
	}
}

func TestReminderRepo_FindUpcoming_ContactAggScan(t *testing.T) {
	// json_agg 聚合的联系人字段应完整反序列化
	user, cleanup := setupReminderUser(t, []int{0})
	defer cleanup()

	phone := "+15559999"
	contact := &model.Contact{
		UserID:      user.UserID,
		Name:        "Sam",
		PhoneNumber: &phone,
		Birthday:    date(1990, 5, 4),
	}
	if err := testDB.Create(contact).Error; err != nil {
		t.Fatalf("创建联系人失败: %v", err)
	}

	repo := repository.NewReminderRepo(testDB)
	rows, err := repo.FindUpcoming(context.Background(), 5, 4, 0)
	if err != nil {
		t.Fatalf("FindUpcoming 应成功: %v", err)
	}

	row, ok := findUser(rows, user.UserID)
	if !ok {
		t.Fatalf("期望命中用户 %s", user.UserID)
	}
	if row.User.Phone != "+15550001" || !row.User.Paid || row.User.TimeZone != "UTC" {
		t.Errorf("用户字段应完整返回: %+v", row.User)
	}

	c := row.Contacts[0]
	if c.ContactID != contact.ContactID || c.UserID != user.UserID || c.Name != "Sam" {
		t.Errorf("联系人字段不符: %+v", c)
	}
	if c.PhoneNumber == nil || *c.PhoneNumber != phone {
		t.Errorf("联系人电话不符: %+v", c.PhoneNumber)
	}
	if c.Birthday.Format("2006-01-02") != "1990-05-04" {
		t.Errorf("生日应解析为日期: %v", c.Birthday)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 会话历史查询边界
// ═══════════════════════════════════════════════════════════

func TestConversationRepo_ListMessagesSince_InclusiveBoundary(t *testing.T) {
	ctx := context.Background()
	user, cleanup := setupReminderUser(t, nil)
	defer cleanup()

	repo := repository.NewConversationRepo(testDB)
	conv := &model.Conversation{UserID: user.UserID}
	if err := repo.Create(ctx, conv); err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	defer func() {
		testDB.Where("conversation_id = ?", conv.ConversationID).Delete(&model.Message{})
		testDB.Where("conversation_id = ?", conv.ConversationID).Delete(&model.Conversation{})
	}()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fn := "add_birthday"
	msgs := []*model.Message{
		{ConversationID: conv.ConversationID, Role: model.RoleUser, Content: "before", IsUserMessage: true, CreatedAt: base.Add(-time.Minute)},
		{ConversationID: conv.ConversationID, Role: model.RoleAssistant, Content: "at-cutover", FunctionCalled: &fn, CreatedAt: base},
		{ConversationID: conv.ConversationID, Role: model.RoleUser, Content: "after", IsUserMessage: true, CreatedAt: base.Add(time.Minute)},
	}
	for _, msg := range msgs {
		if err := repo.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("创建消息失败: %v", err)
		}
	}

	last, err := repo.LastToolCallMessage(ctx, user.UserID)
	if err != nil {
		t.Fatalf("LastToolCallMessage 应成功: %v", err)
	}
	if last.Content != "at-cutover" {
		t.Fatalf("最近工具调用定位错误: %+v", last)
	}

	history, err := repo.ListMessagesSince(ctx, conv.ConversationID, &last.CreatedAt)
	if err != nil {
		t.Fatalf("ListMessagesSince 应成功: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("期望返回 2 条（截断点自含），实际=%d: %+v", len(history), history)
	}
	// 倒序：最新在前
	if history[0].Content != "after" || history[1].Content != "at-cutover" {
		t.Errorf("返回内容或排序不符: %+v", history)
	}
}
