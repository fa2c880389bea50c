package handler

import (
	"context"
	"fmt"
	"log"

	"github.com/zime/janushbot/internal/domain"
)

// LogHandler는 이벤트를 로그로 출력하는 핸들러입니다.
// Chain 앞단에 두어 디버그 시 수신 내용을 확인합니다.
type LogHandler struct {
	logger *log.Logger
}

// NewLogHandler는 새로운 LogHandler를 생성합니다.
func NewLogHandler(logger *log.Logger) *LogHandler {
	return &LogHandler{
		logger: logger,
	}
}

// Handle은 이벤트를 로그로 출력합니다. 응답은 만들지 않습니다.
func (h *LogHandler) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	switch event.Kind {
	case domain.KindMessage:
		msg := event.Message
		logf(h.logger, "[EVENT] 📨 메시지: 채널 %s, 유저 %s, 내용 %s\n", msg.ChannelID, msg.UserID, truncateText(msg.Text, 100))
	case domain.KindAppMention:
		mention := event.AppMention
		logf(h.logger, "[EVENT] 📣 멘션: 채널 %s, 유저 %s, 내용 %s\n", mention.ChannelID, mention.UserID, truncateText(mention.Text, 100))
	case domain.KindSlashCommand:
		cmd := event.SlashCommand
		logf(h.logger, "[EVENT] ⌨️ 커맨드: %s, 유저 %s\n", cmd.CommandName, cmd.UserID)
	case domain.KindViewSubmission:
		sub := event.ViewSubmission
		logf(h.logger, "[EVENT] 📝 모달 제출: %s, 유저 %s, 필드 %d개\n", sub.CallbackID, sub.UserID, len(sub.FieldValues))
	default:
		logf(h.logger, "[WARN] ⚠️ 알 수 없는 이벤트 타입: %s\n", event.Kind)
	}
	return nil, nil
}

// truncateText는 텍스트를 지정된 길이로 자릅니다.
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return fmt.Sprintf("%s...", string(runes[:maxLen]))
}
