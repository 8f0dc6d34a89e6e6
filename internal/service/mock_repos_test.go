package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/akhan280/doy-backend/internal/model"
	"github.com/akhan280/doy-backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock ContactRepository ──

type mockContactRepo struct {
	contacts map[int]*model.Contact
	nextID   int
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[int]*model.Contact), nextID: 1}
}

func (m *mockContactRepo) Create(_ context.Context, contact *model.Contact) error {
	contact.ContactID = m.nextID
	m.nextID++
	c := *contact
	m.contacts[contact.ContactID] = &c
	return nil
}

func (m *mockContactRepo) CreateBatch(ctx context.Context, contacts []model.Contact) error {
	for i := range contacts {
		if err := m.Create(ctx, &contacts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, userID string, contactID int) (*model.Contact, error) {
	if c, ok := m.contacts[contactID]; ok && c.UserID == userID {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContactRepo) ListByUser(_ context.Context, userID string) ([]model.Contact, error) {
	var result []model.Contact
	for _, c := range m.contacts {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockContactRepo) Update(_ context.Context, contact *model.Contact) error {
	c := *contact
	m.contacts[contact.ContactID] = &c
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, userID string, contactID int) error {
	if c, ok := m.contacts[contactID]; ok && c.UserID == userID {
		delete(m.contacts, contactID)
	}
	return nil
}

func (m *mockContactRepo) DeleteByName(_ context.Context, userID, name string) (int64, error) {
	var n int64
	for id, c := range m.contacts {
		if c.UserID == userID && c.Name == name {
			delete(m.contacts, id)
			n++
		}
	}
	return n, nil
}

func (m *mockContactRepo) UpdateBirthdayByName(_ context.Context, userID, name string, birthday time.Time) (int64, error) {
	var n int64
	for _, c := range m.contacts {
		if c.UserID == userID && c.Name == name {
			c.Birthday = birthday
			n++
		}
	}
	return n, nil
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	prefs map[string]*model.MessagePreferences
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[string]*model.MessagePreferences)}
}

func (m *mockPreferenceRepo) GetByUserID(_ context.Context, userID string) (*model.MessagePreferences, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) Create(_ context.Context, pref *model.MessagePreferences) error {
	pref.PreferenceID = len(m.prefs) + 1
	m.prefs[pref.UserID] = pref
	return nil
}

func (m *mockPreferenceRepo) Update(_ context.Context, pref *model.MessagePreferences) error {
	m.prefs[pref.UserID] = pref
	return nil
}

// ── Mock ConversationRepository ──

type mockConversationRepo struct {
	conversations map[string]*model.Conversation
	messages      []*model.Message
	nextConvID    int
	nextMsgID     int
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{
		conversations: make(map[string]*model.Conversation),
		nextConvID:    1,
		nextMsgID:     1,
	}
}

func (m *mockConversationRepo) GetByUserID(_ context.Context, userID string) (*model.Conversation, error) {
	if c, ok := m.conversations[userID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConversationRepo) Create(_ context.Context, conv *model.Conversation) error {
	conv.ConversationID = m.nextConvID
	m.nextConvID++
	m.conversations[conv.UserID] = conv
	return nil
}

func (m *mockConversationRepo) LastToolCallMessage(_ context.Context, userID string) (*model.Message, error) {
	conv, ok := m.conversations[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var last *model.Message
	for _, msg := range m.messages {
		if msg.ConversationID != conv.ConversationID || msg.FunctionCalled == nil {
			continue
		}
		if last == nil || msg.CreatedAt.After(last.CreatedAt) {
			last = msg
		}
	}
	if last == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return last, nil
}

func (m *mockConversationRepo) ListMessagesSince(_ context.Context, conversationID int, since *time.Time) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if since != nil && msg.CreatedAt.Before(*since) {
			continue
		}
		result = append(result, *msg)
	}
	// 倒序，与真实实现一致
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].MessageID > result[j].MessageID
	})
	return result, nil
}

func (m *mockConversationRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	msg.MessageID = m.nextMsgID
	m.nextMsgID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	copied := *msg
	m.messages = append(m.messages, &copied)
	return nil
}

func (m *mockConversationRepo) UpdateMessage(_ context.Context, msg *model.Message) error {
	for i, existing := range m.messages {
		if existing.MessageID == msg.MessageID {
			copied := *msg
			m.messages[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock ReminderRepository ──

type mockReminderRepo struct {
	// results 按 leadDays 档位返回
	results map[int][]repository.UpcomingUser
	calls   int
	err     error
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{results: make(map[int][]repository.UpcomingUser)}
}

func (m *mockReminderRepo) FindUpcoming(_ context.Context, _, _, leadDays int) ([]repository.UpcomingUser, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results[leadDays], nil
}

// ── Mock Cache ──

type mockCache struct {
	store   map[string][]byte
	markers map[string]bool
	getErr  error
	setErr  error
	markErr error
}

func newMockCache() *mockCache {
	return &mockCache{
		store:   make(map[string][]byte),
		markers: make(map[string]bool),
	}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	raw, ok := m.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, val interface{}, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCache) MarkOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.markErr != nil {
		return false, m.markErr
	}
	if m.markers[key] {
		return false, nil
	}
	m.markers[key] = true
	return true, nil
}

// ── Mock TextSender ──

type sentText struct {
	addresses []string
	message   string
}

type mockTexter struct {
	sent []sentText
	err  error
}

func (m *mockTexter) Send(_ context.Context, addresses []string, message string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentText{addresses: addresses, message: message})
	return nil
}

// ── Mock AlertMailer ──

type sentAlert struct {
	subject string
	body    string
}

type mockMailer struct {
	alerts []sentAlert
}

func (m *mockMailer) SendAlert(subject, htmlBody string) error {
	m.alerts = append(m.alerts, sentAlert{subject: subject, body: htmlBody})
	return nil
}

// ── Mock ChatClient ──

type mockChat struct {
	// 每次调用依次弹出一个 choice
	choices  []openai.ChatCompletionChoice
	requests [][]openai.ChatCompletionMessage
	err      error
}

func (m *mockChat) Chat(_ context.Context, messages []openai.ChatCompletionMessage, _ []openai.Tool) (openai.ChatCompletionChoice, error) {
	m.requests = append(m.requests, messages)
	if m.err != nil {
		return openai.ChatCompletionChoice{}, m.err
	}
	if len(m.choices) == 0 {
		return openai.ChatCompletionChoice{}, errors.New("mockChat: 没有预置的回复")
	}
	choice := m.choices[0]
	m.choices = m.choices[1:]
	return choice, nil
}

// newMockRepository 组装全量 mock 聚合
func newMockRepository() (*repository.Repository, *mockUserRepo, *mockContactRepo, *mockPreferenceRepo, *mockConversationRepo, *mockReminderRepo) {
	userRepo := newMockUserRepo()
	contactRepo := newMockContactRepo()
	prefRepo := newMockPreferenceRepo()
	convRepo := newMockConversationRepo()
	reminderRepo := newMockReminderRepo()
	repo := &repository.Repository{
		User:         userRepo,
		Contact:      contactRepo,
		Preference:   prefRepo,
		Conversation: convRepo,
		Reminder:     reminderRepo,
	}
	return repo, userRepo, contactRepo, prefRepo, convRepo, reminderRepo
}
