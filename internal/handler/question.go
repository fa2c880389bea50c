package handler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zime/janushbot/internal/domain"
	slackclient "github.com/zime/janushbot/internal/slack"
)

// QuestionCallbackID는 질문 모달의 callback ID입니다.
const QuestionCallbackID = "question-modal"

// 질문 모달 필드의 block ID
const (
	FieldTaskName      = "task_name"
	FieldQuestion      = "question"
	FieldVideoURL      = "video_url"
	FieldScreenshotURL = "screenshot_url"
	FieldFramesRange   = "frames_range"
)

// ErrProfileNotFound는 사용자 프로필을 찾지 못했을 때 반환됩니다.
var ErrProfileNotFound = errors.New("사용자 프로필 없음")

// QuestionForm은 질문 모달 선언입니다.
// 모달 생성과 제출 값 추출 양쪽에서 사용합니다.
var QuestionForm = domain.Form{
	CallbackID:  QuestionCallbackID,
	Title:       "Your Question",
	SubmitLabel: "Submit",
	Fields: []domain.FormField{
		{BlockID: FieldTaskName, ActionID: "task_name_input", Label: "Task name:"},
		{BlockID: FieldQuestion, ActionID: "question_input", Label: "Question:", Multiline: true},
		{BlockID: FieldVideoURL, ActionID: "video_url_input", Label: "Video URL:", Multiline: true},
		{BlockID: FieldScreenshotURL, ActionID: "screenshot_url_input", Label: "Screenshot URL:", Multiline: true},
		{BlockID: FieldFramesRange, ActionID: "frames_range_input", Label: "Frames:"},
	},
}

// QuestionCommandHandler는 질문 슬래시 커맨드로 질문 모달을 여는 핸들러입니다.
type QuestionCommandHandler struct {
	command  string
	opener   ViewOpener
	profiles ProfileFinder
	logger   *log.Logger
}

// QuestionCommandHandlerConfig는 QuestionCommandHandler 설정입니다.
type QuestionCommandHandlerConfig struct {
	Command  string // 처리할 커맨드 이름 (예: /question)
	Opener   ViewOpener
	Profiles ProfileFinder
	Logger   *log.Logger
}

// NewQuestionCommandHandler는 새로운 QuestionCommandHandler를 생성합니다.
func NewQuestionCommandHandler(config QuestionCommandHandlerConfig) *QuestionCommandHandler {
	return &QuestionCommandHandler{
		command:  config.Command,
		opener:   config.Opener,
		profiles: config.Profiles,
		logger:   config.Logger,
	}
}

// Handle은 사용자 프로필을 확인한 뒤 질문 모달을 엽니다.
// 성공하면 빈 응답(nil)을 반환합니다.
func (h *QuestionCommandHandler) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	cmd := event.SlashCommand
	if cmd == nil {
		return nil, nil
	}

	if cmd.CommandName != h.command {
		logf(h.logger, "[QUESTION] ⏭️ 알 수 없는 커맨드: %s\n", cmd.CommandName)
		return &domain.Reply{Text: fmt.Sprintf("Sorry, I don't know the command %s. Try %s.", cmd.CommandName, h.command)}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, slackCallTimeout)
	defer cancel()

	if _, err := resolveProfile(ctx, h.profiles, cmd.UserID); err != nil {
		return nil, err
	}

	if err := h.opener.OpenView(ctx, cmd.TriggerID, slackclient.BuildModal(QuestionForm)); err != nil {
		return nil, fmt.Errorf("질문 모달 열기 실패: %w", err)
	}

	logf(h.logger, "[QUESTION] 📝 질문 모달 열림: 유저 %s\n", cmd.UserID)
	return nil, nil
}

// resolveProfile은 프로필을 조회하고 없으면 ErrProfileNotFound를 반환합니다.
func resolveProfile(ctx context.Context, profiles ProfileFinder, userID string) (domain.UserProfile, error) {
	profile, err := profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("프로필 조회 실패 (%s): %w", userID, err)
	}
	found, ok := profile.Get()
	if !ok {
		return domain.UserProfile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}
	return found, nil
}
