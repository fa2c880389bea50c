package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/mo"
	"github.com/slack-go/slack"
	"github.com/zime/janushbot/internal/domain"
)

// Client는 Slack API와 상호작용하는 인터페이스입니다.
// 테스트 시 모킹이 가능하도록 인터페이스로 정의합니다.
type Client interface {
	// PostMessage는 채널에 메시지를 전송합니다.
	// ThreadTS가 있으면 스레드 답글로 전송합니다.
	PostMessage(ctx context.Context, msg domain.OutboundMessage) error

	// OpenView는 trigger ID로 모달을 엽니다.
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error

	// GetUserProfile은 사용자 프로필을 조회합니다.
	// 사용자가 없으면 None을 반환합니다.
	GetUserProfile(ctx context.Context, userID string) (mo.Option[domain.UserProfile], error)
}

// APIError는 Slack API 호출 실패입니다.
// 재시도 없이 호출자에게 그대로 전달됩니다.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s 실패: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// SlackClient는 실제 Slack API 클라이언트를 래핑합니다.
type SlackClient struct {
	api *slack.Client
}

// NewSlackClient는 새로운 SlackClient를 생성합니다.
func NewSlackClient(token string, options ...slack.Option) *SlackClient {
	return &SlackClient{
		api: slack.New(token, options...),
	}
}

// PostMessage는 채널에 텍스트 메시지를 전송합니다.
func (c *SlackClient) PostMessage(ctx context.Context, msg domain.OutboundMessage) error {
	options := []slack.MsgOption{
		slack.MsgOptionText(msg.Text, false),
	}

	if msg.ThreadTS != "" {
		options = append(options, slack.MsgOptionTS(msg.ThreadTS))
	}

	if _, _, err := c.api.PostMessageContext(ctx, msg.ChannelID, options...); err != nil {
		return &APIError{Op: "chat.postMessage", Err: err}
	}
	return nil
}

// OpenView는 모달을 엽니다.
func (c *SlackClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return &APIError{Op: "views.open", Err: err}
	}
	return nil
}

// GetUserProfile은 users.profile.get으로 정규화된 이름을 조회합니다.
func (c *SlackClient) GetUserProfile(ctx context.Context, userID string) (mo.Option[domain.UserProfile], error) {
	profile, err := c.api.GetUserProfileContext(ctx, &slack.GetUserProfileParameters{UserID: userID})
	if err != nil {
		var slackErr slack.SlackErrorResponse
		if errors.As(err, &slackErr) && slackErr.Err == "user_not_found" {
			return mo.None[domain.UserProfile](), nil
		}
		return mo.None[domain.UserProfile](), &APIError{Op: "users.profile.get", Err: err}
	}
	if profile == nil {
		return mo.None[domain.UserProfile](), nil
	}

	return mo.Some(domain.UserProfile{
		UserID:      userID,
		DisplayName: profile.DisplayNameNormalized,
		RealName:    profile.RealNameNormalized,
	}), nil
}
