package handler

import (
	"context"
	"log"
	"time"

	"github.com/samber/mo"
	"github.com/slack-go/slack"
	"github.com/zime/janushbot/internal/domain"
)

// slackCallTimeout은 핸들러 하나가 Slack API 호출에 쓰는 최대 시간입니다.
const slackCallTimeout = 10 * time.Second

// MessagePoster는 Slack 메시지 전송 인터페이스입니다.
// 테스트 시 모킹이 가능하도록 인터페이스로 정의합니다.
type MessagePoster interface {
	PostMessage(ctx context.Context, msg domain.OutboundMessage) error
}

// ViewOpener는 모달 열기 인터페이스입니다.
type ViewOpener interface {
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
}

// ProfileFinder는 사용자 프로필 조회 인터페이스입니다.
type ProfileFinder interface {
	GetUserProfile(ctx context.Context, userID string) (mo.Option[domain.UserProfile], error)
}

// QuestionLogger는 질문 로그 저장 인터페이스입니다.
type QuestionLogger interface {
	SaveQuestion(ctx context.Context, record domain.QuestionRecord) (int64, error)
}

// logf는 logger가 nil이면 아무것도 하지 않습니다.
func logf(logger *log.Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
