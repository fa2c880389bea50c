package handler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zime/janushbot/internal/domain"
)

// SubmissionHandler는 질문 모달 제출을 채널에 게시하고 질문 로그에 남기는 핸들러입니다.
type SubmissionHandler struct {
	poster    MessagePoster
	profiles  ProfileFinder
	questions QuestionLogger
	channelID string
	logger    *log.Logger
}

// SubmissionHandlerConfig는 SubmissionHandler 설정입니다.
type SubmissionHandlerConfig struct {
	Poster    MessagePoster
	Profiles  ProfileFinder
	Questions QuestionLogger // nil이면 저장하지 않음
	ChannelID string         // 질문을 게시할 채널 (예: #testing)
	Logger    *log.Logger
}

// NewSubmissionHandler는 새로운 SubmissionHandler를 생성합니다.
func NewSubmissionHandler(config SubmissionHandlerConfig) *SubmissionHandler {
	return &SubmissionHandler{
		poster:    config.Poster,
		profiles:  config.Profiles,
		questions: config.Questions,
		channelID: config.ChannelID,
		logger:    config.Logger,
	}
}

// Handle은 질문 모달 제출을 처리합니다.
// 다른 callback ID의 제출은 무시합니다.
func (h *SubmissionHandler) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	submission := event.ViewSubmission
	if submission == nil || submission.CallbackID != QuestionCallbackID {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, slackCallTimeout)
	defer cancel()

	profile, err := resolveProfile(ctx, h.profiles, submission.UserID)
	if err != nil {
		return nil, err
	}

	msg := domain.OutboundMessage{
		ChannelID: h.channelID,
		Text:      FormatQuestion(profile, submission.FieldValues),
	}
	if err := h.poster.PostMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("질문 게시 실패: %w", err)
	}

	logf(h.logger, "[SUBMISSION] ✅ 질문 게시: 유저 %s, 채널 %s\n", submission.UserID, h.channelID)

	h.saveQuestion(ctx, profile, submission.FieldValues)
	return nil, nil
}

// saveQuestion은 질문을 로그에 저장합니다. 실패는 로그만 남깁니다.
func (h *SubmissionHandler) saveQuestion(ctx context.Context, profile domain.UserProfile, values map[string]string) {
	if h.questions == nil {
		return
	}

	id, err := h.questions.SaveQuestion(ctx, domain.QuestionRecord{
		UserID:   profile.UserID,
		Alias:    profile.DisplayName,
		RealName: profile.RealName,
		Category: values[FieldTaskName],
		Question: values[FieldQuestion],
		AskedAt:  time.Now(),
	})
	if err != nil {
		logf(h.logger, "[SUBMISSION] ⚠️ 질문 저장 실패: %v\n", err)
		return
	}
	logf(h.logger, "[SUBMISSION] 💾 질문 저장: #%d\n", id)
}

// FormatQuestion은 제출된 질문을 채널 메시지 텍스트로 만듭니다.
func FormatQuestion(profile domain.UserProfile, values map[string]string) string {
	return fmt.Sprintf(
		"*From:* %s (<@%s>)\n*Task name:* %s\n*Question:* %s\n*Video URL:*\n%s\n*Screenshot URL:*\n%s\n*Frames:* %s",
		profile.DisplayName,
		profile.UserID,
		values[FieldTaskName],
		values[FieldQuestion],
		values[FieldVideoURL],
		values[FieldScreenshotURL],
		values[FieldFramesRange],
	)
}
