package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/dto"
	"github.com/akhan280/doy-backend/internal/model"
	"github.com/akhan280/doy-backend/internal/repository"
)

// ── 联系人模块业务错误 ──

var (
	ErrContactNotFound = errors.New("联系人不存在")
	ErrInvalidBirthday = errors.New("生日格式无效，应为 YYYY-MM-DD")
	ErrImportNoSource  = errors.New("必须提供 url 或 content 之一")
)

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

// ContactService 联系人业务接口
type ContactService interface {
	Create(ctx context.Context, userID string, req *dto.CreateContactRequest) (*dto.ContactResponse, error)
	List(ctx context.Context, userID string) ([]dto.ContactResponse, error)
	Update(ctx context.Context, userID string, contactID int, req *dto.UpdateContactRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, userID string, contactID int) error
	// ImportICS 从 iCalendar 日历批量导入生日（联系人 App 导出的常见格式）
	ImportICS(ctx context.Context, userID string, req *dto.ImportContactsRequest) (*dto.ImportContactsResponse, error)
}

type contactService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContactService 创建 ContactService 实例
func NewContactService(repo *repository.Repository, logger *zap.Logger) ContactService {
	return &contactService{repo: repo, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *contactService) Create(ctx context.Context, userID string, req *dto.CreateContactRequest) (*dto.ContactResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	birthday, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		return nil, ErrInvalidBirthday
	}

	contact := &model.Contact{
		UserID:      userID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Birthday:    birthday,
	}
	if err := s.repo.Contact.Create(ctx, contact); err != nil {
		s.logger.Error("创建联系人失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return toContactResponse(contact), nil
}

func (s *contactService) List(ctx context.Context, userID string) ([]dto.ContactResponse, error) {
	contacts, err := s.repo.Contact.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出联系人失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		result = append(result, *toContactResponse(&contacts[i]))
	}
	return result, nil
}

func (s *contactService) Update(ctx context.Context, userID string, contactID int, req *dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	contact, err := s.repo.Contact.GetByID(ctx, userID, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	// 仅更新非 nil 字段
	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		contact.PhoneNumber = req.PhoneNumber
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			return nil, ErrInvalidBirthday
		}
		contact.Birthday = birthday
	}

	if err := s.repo.Contact.Update(ctx, contact); err != nil {
		s.logger.Error("更新联系人失败", zap.Int("contact_id", contactID), zap.Error(err))
		return nil, err
	}
	return toContactResponse(contact), nil
}

func (s *contactService) Delete(ctx context.Context, userID string, contactID int) error {
	if _, err := s.repo.Contact.GetByID(ctx, userID, contactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return s.repo.Contact.Delete(ctx, userID, contactID)
}

// ────────────────────── ICS 导入 ──────────────────────

func (s *contactService) ImportICS(ctx context.Context, userID string, req *dto.ImportContactsRequest) (*dto.ImportContactsResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var reader io.Reader
	switch {
	case req.Content != "":
		reader = strings.NewReader(req.Content)
	case req.URL != "":
		body, err := fetchICSContent(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		reader = body
	default:
		return nil, ErrImportNoSource
	}

	contacts, resp, err := parseBirthdayCalendar(reader, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Contact.CreateBatch(ctx, contacts); err != nil {
		s.logger.Error("批量创建联系人失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp.Created = len(contacts)

	s.logger.Info("生日日历导入完成",
		zap.String("user_id", userID),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// fetchICSContent 从 URL 获取 ICS 内容，限制大小防止超大响应
func fetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 ICS 请求失败: %w", err)
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// parseBirthdayCalendar 将日历中的 VEVENT 解析为联系人
// SUMMARY 为人名（允许 “Xxx's birthday” 形式），DTSTART 取日期部分；
// 年度重复事件与单次事件都接受，月/日相同的重复事件只取第一条
func parseBirthdayCalendar(reader io.Reader, userID string) ([]model.Contact, *dto.ImportContactsResponse, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	resp := &dto.ImportContactsResponse{}
	seen := make(map[string]bool)
	var contacts []model.Contact

	for _, evt := range cal.Events() {
		resp.Total++

		summary := evt.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || strings.TrimSpace(summary.Value) == "" {
			resp.Skipped++
			resp.Errors = append(resp.Errors, "事件缺少 SUMMARY，已跳过")
			continue
		}
		name := normalizeBirthdayName(summary.Value)

		birthday, ok := parseICSDate(evt)
		if !ok {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("事件 %q 缺少有效 DTSTART，已跳过", name))
			continue
		}

		dedupKey := fmt.Sprintf("%s|%s", name, birthday.Format("01-02"))
		if seen[dedupKey] {
			resp.Skipped++
			continue
		}
		seen[dedupKey] = true

		contacts = append(contacts, model.Contact{
			UserID:   userID,
			Name:     name,
			Birthday: birthday,
		})
	}

	return contacts, resp, nil
}

// parseICSDate 解析 VEVENT 的 DTSTART 为日期
func parseICSDate(evt *ics.VEvent) (time.Time, bool) {
	prop := evt.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil || prop.Value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"20060102", "20060102T150405", "20060102T150405Z"} {
		if t, err := time.Parse(layout, prop.Value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// normalizeBirthdayName 去掉日历导出时常见的 “'s birthday” 后缀
func normalizeBirthdayName(summary string) string {
	name := strings.TrimSpace(summary)
	for _, suffix := range []string{"'s birthday", "'s Birthday", "’s birthday", "’s Birthday"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// toContactResponse 将 model.Contact 转换为 dto.ContactResponse
func toContactResponse(contact *model.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:          contact.ContactID,
		Name:        contact.Name,
		PhoneNumber: contact.PhoneNumber,
		Birthday:    contact.Birthday.Format(birthdayLayout),
	}
}
