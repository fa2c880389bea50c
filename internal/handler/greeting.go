package handler

import (
	"context"
	"fmt"
	"log"

	"github.com/zime/janushbot/internal/domain"
	"github.com/zime/janushbot/internal/policy"
)

// GreetingReplyFormat은 인사에 대한 답장 형식입니다. %s는 사용자 ID입니다.
const GreetingReplyFormat = "Do roboty, <@%s>! :wat2:"

// GreetingHandler는 인사말이 담긴 멘션에 답장하는 핸들러입니다.
type GreetingHandler struct {
	poster  MessagePoster
	matcher *policy.Matcher
	logger  *log.Logger
}

// GreetingHandlerConfig는 GreetingHandler 설정입니다.
type GreetingHandlerConfig struct {
	Poster  MessagePoster
	Matcher *policy.Matcher
	Logger  *log.Logger
}

// NewGreetingHandler는 새로운 GreetingHandler를 생성합니다.
func NewGreetingHandler(config GreetingHandlerConfig) *GreetingHandler {
	return &GreetingHandler{
		poster:  config.Poster,
		matcher: config.Matcher,
		logger:  config.Logger,
	}
}

// Handle은 app_mention 이벤트에 인사말이 있으면 같은 채널에 답장합니다.
func (h *GreetingHandler) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	mention := event.AppMention
	if mention == nil {
		return nil, nil
	}

	if !h.matcher.MatchesGreeting(mention.Text) {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, slackCallTimeout)
	defer cancel()

	msg := domain.OutboundMessage{
		ChannelID: mention.ChannelID,
		Text:      fmt.Sprintf(GreetingReplyFormat, mention.UserID),
	}
	if err := h.poster.PostMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("인사 답장 전송 실패: %w", err)
	}

	logf(h.logger, "[GREETING] 👋 답장 전송: 채널 %s, 유저 %s\n", mention.ChannelID, mention.UserID)
	return nil, nil
}
