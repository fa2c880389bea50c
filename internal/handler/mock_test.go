package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/mo"
	"github.com/slack-go/slack"
	"github.com/zime/janushbot/internal/domain"
)

// MockSlack은 테스트용 Slack 클라이언트입니다.
type MockSlack struct {
	mu sync.Mutex

	failPost    bool
	failOpen    bool
	failProfile bool
	profiles    map[string]domain.UserProfile

	posted      []domain.OutboundMessage
	openedViews []slack.ModalViewRequest
	triggerIDs  []string
}

func newMockSlack() *MockSlack {
	return &MockSlack{
		profiles: map[string]domain.UserProfile{
			"U123": {UserID: "U123", DisplayName: "janek", RealName: "Jan Kowalski"},
		},
	}
}

func (m *MockSlack) PostMessage(ctx context.Context, msg domain.OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPost {
		return errors.New("mock post error")
	}
	m.posted = append(m.posted, msg)
	return nil
}

func (m *MockSlack) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOpen {
		return errors.New("mock open error")
	}
	m.triggerIDs = append(m.triggerIDs, triggerID)
	m.openedViews = append(m.openedViews, view)
	return nil
}

func (m *MockSlack) GetUserProfile(ctx context.Context, userID string) (mo.Option[domain.UserProfile], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile {
		return mo.None[domain.UserProfile](), errors.New("mock profile error")
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return mo.None[domain.UserProfile](), nil
	}
	return mo.Some(profile), nil
}

func (m *MockSlack) Posted() []domain.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutboundMessage(nil), m.posted...)
}

// MockQuestionLog는 테스트용 질문 로그입니다.
type MockQuestionLog struct {
	fail    bool
	records []domain.QuestionRecord
}

func (m *MockQuestionLog) SaveQuestion(ctx context.Context, record domain.QuestionRecord) (int64, error) {
	if m.fail {
		return 0, errors.New("mock save error")
	}
	m.records = append(m.records, record)
	return int64(len(m.records)), nil
}
