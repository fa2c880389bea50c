package handler

import (
	"context"
	"fmt"
	"log"

	"github.com/zime/janushbot/internal/domain"
	"github.com/zime/janushbot/internal/policy"
)

// ForbiddenWarningFormat은 금지어 경고 형식입니다. 사용자 ID와 금지어 순입니다.
const ForbiddenWarningFormat = ":warning: <@%s>, watch your language! \"%s\" is not welcome here."

// ForbiddenWordHandler는 금지어가 담긴 메시지에 경고를 보내는 핸들러입니다.
type ForbiddenWordHandler struct {
	poster  MessagePoster
	matcher *policy.Matcher
	logger  *log.Logger
}

// ForbiddenWordHandlerConfig는 ForbiddenWordHandler 설정입니다.
type ForbiddenWordHandlerConfig struct {
	Poster  MessagePoster
	Matcher *policy.Matcher
	Logger  *log.Logger
}

// NewForbiddenWordHandler는 새로운 ForbiddenWordHandler를 생성합니다.
func NewForbiddenWordHandler(config ForbiddenWordHandlerConfig) *ForbiddenWordHandler {
	return &ForbiddenWordHandler{
		poster:  config.Poster,
		matcher: config.Matcher,
		logger:  config.Logger,
	}
}

// Handle은 메시지에서 첫 번째 금지어를 찾아 스레드에 경고합니다.
func (h *ForbiddenWordHandler) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	message := event.Message
	if message == nil {
		return nil, nil
	}

	word, found := h.matcher.FirstForbiddenWord(message.Text).Get()
	if !found {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, slackCallTimeout)
	defer cancel()

	msg := domain.OutboundMessage{
		ChannelID: message.ChannelID,
		Text:      fmt.Sprintf(ForbiddenWarningFormat, message.UserID, word),
		ThreadTS:  message.TS,
	}
	if err := h.poster.PostMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("금지어 경고 전송 실패: %w", err)
	}

	logf(h.logger, "[FORBIDDEN] 🚫 경고 전송: 채널 %s, 유저 %s, 단어 %q\n", message.ChannelID, message.UserID, word)
	return nil, nil
}
